package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/repository"
)

// founding dates are generated backwards from this date so the catalog never drifts
var referenceDate = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

type clubSeed struct {
	id          string
	name        string
	description string
}

var catalog = map[string][]clubSeed{
	"Technology": {
		{"coding_club", "Coding Club", "Weekly hack nights, pair programming and interview prep."},
		{"game_dev_osu", "Game Development Club", "Build and ship small games every term."},
		{"cyber_security_club", "Cyber Security Club", "Capture-the-flag practice and security talks."},
		{"ai_ml_society", "AI & Machine Learning Society", "Reading groups and applied ML projects."},
		{"open_source_club", "Open Source Club", "Contribute to real open source projects together."},
	},
	"Engineering": {
		{"robotics_club", "Robotics Club", "Design, build and compete with autonomous robots."},
		{"formula_racing", "Formula Racing Team", "Student-built race car for the collegiate series."},
		{"solar_vehicle_team", "Solar Vehicle Team", "Engineering an ultra-efficient solar car."},
		{"engineers_without_borders", "Engineers Without Borders", "Sustainable engineering projects with partner communities."},
	},
	"Arts": {
		{"dance_club", "Dance Club", "Open-level classes from hip hop to contemporary."},
		{"theatre_troupe", "Theatre Troupe", "Two main-stage productions and a one-act festival each year."},
		{"a_cappella_group", "A Cappella Group", "Auditioned vocal ensemble performing across campus."},
		{"film_society", "Film Society", "Screenings, discussions and a short-film showcase."},
	},
	"Creative": {
		{"photography_club", "Photography Club", "Photo walks, darkroom access and critiques."},
		{"creative_writing_circle", "Creative Writing Circle", "Workshops for fiction, poetry and screenwriting."},
		{"design_collective", "Design Collective", "Graphic and product design critique sessions."},
	},
	"Science": {
		{"astronomy_club", "Astronomy Club", "Observatory nights and astrophotography."},
		{"chemistry_society", "Chemistry Society", "Lab demos, outreach and research talks."},
		{"biology_club", "Biology Club", "Field trips, seminars and research networking."},
		{"physics_society", "Physics Society", "Problem-solving sessions and colloquium visits."},
	},
	"Sports": {
		{"climbing_club", "Climbing Club", "Bouldering sessions and outdoor trips."},
		{"ultimate_frisbee", "Ultimate Frisbee", "Competitive and casual ultimate teams."},
		{"running_club", "Running Club", "Group runs for every pace, plus race training."},
		{"esports_club", "Esports Club", "Collegiate league teams and community game nights."},
	},
	"Service": {
		{"volunteer_corps", "Volunteer Corps", "Weekly volunteering with local organisations."},
		{"habitat_for_humanity", "Habitat for Humanity", "Build days and housing advocacy."},
		{"tutoring_network", "Peer Tutoring Network", "Free tutoring for intro courses."},
	},
}

// category order is fixed so the seeded catalog is identical on every run
var categoryOrder = []string{"Technology", "Engineering", "Arts", "Creative", "Science", "Sports", "Service"}

// Setup seeds the club catalog when it is empty. Existing catalogs are left untouched.
func Setup(ctx context.Context, store repository.Store, logger *zap.Logger) error {
	logger = logger.Named("seed")

	count, err := store.CountClubs(ctx)
	if err != nil {
		return fmt.Errorf("count clubs: %w", err)
	}
	if count > 0 {
		logger.Info("catalog already seeded", zap.Int("clubs", count))
		return nil
	}

	clubs := Clubs()
	logger.Info("inserting clubs", zap.Int("clubs", len(clubs)))
	if err := store.InsertClubs(ctx, clubs); err != nil {
		return fmt.Errorf("seed clubs: %w", err)
	}

	logger.Info("seeding complete")
	return nil
}

// Clubs builds the deterministic seed catalog.
func Clubs() []domain.Club {
	rng := rand.New(rand.NewSource(42))

	var clubs []domain.Club
	for _, category := range categoryOrder {
		for _, seed := range catalog[category] {
			clubs = append(clubs, domain.Club{
				ID:          seed.id,
				Name:        seed.name,
				Category:    category,
				Description: seed.description,
				MemberCount: memberCount(rng),
				FoundedAt:   referenceDate.AddDate(0, 0, -(365 + rng.Intn(365*25))),
			})
		}
	}
	return clubs
}

// memberCount follows a power law: a few large clubs and a long tail of small ones.
func memberCount(rng *rand.Rand) int {
	u := rng.Float64()
	if u == 0 {
		u = 0.001
	}
	raw := math.Pow(u, 2.0)
	return 15 + int(math.Round(raw*285))
}
