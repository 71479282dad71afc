package model

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

const (
	popularityWeight = 0.40
	affinityWeight   = 0.35
	recencyWeight    = 0.15
	interestWeight   = 0.10

	// affinity for a category none of the user's favorites belong to
	defaultAffinity = 0.1
)

type Client struct {
	now func() time.Time
}

func NewClient() *Client {
	return &Client{now: time.Now}
}

type ScoreInput struct {
	Candidates          []domain.Club
	FavoriteClubs       []domain.Club
	RequestedCategories []string
	MaxMemberCount      int
	Limit               int
}

// Score ranks candidates by match score (desc, ties by name) and keeps the top Limit.
func (c *Client) Score(input ScoreInput) []domain.ScoredClub {
	prefs := calculateCategoryPreferenceWeights(input.FavoriteClubs)
	requested := make(map[string]bool, len(input.RequestedCategories))
	for _, cat := range input.RequestedCategories {
		requested[strings.ToLower(cat)] = true
	}

	now := c.now()
	scored := make([]domain.ScoredClub, 0, len(input.Candidates))
	for _, club := range input.Candidates {
		score := computeFinalScore(club, prefs, requested, input.MaxMemberCount, now)
		scored = append(scored, domain.ScoredClub{
			ClubID:      club.ID,
			ClubName:    club.Name,
			Category:    club.Category,
			Description: club.Description,
			MemberCount: club.MemberCount,
			MatchScore:  math.Round(score*1000) / 1000, // 3 decimal places
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].MatchScore != scored[j].MatchScore {
			return scored[i].MatchScore > scored[j].MatchScore
		}
		return scored[i].ClubName < scored[j].ClubName
	})

	if input.Limit > 0 && len(scored) > input.Limit {
		scored = scored[:input.Limit]
	}
	return scored
}

// share of favorites per lower-cased category
func calculateCategoryPreferenceWeights(favorites []domain.Club) map[string]float64 {
	counts := make(map[string]int)
	for _, club := range favorites {
		counts[strings.ToLower(club.Category)]++
	}

	prefs := make(map[string]float64, len(counts))
	total := float64(len(favorites))
	if total == 0 {
		return prefs
	}
	for category, count := range counts {
		prefs[category] = float64(count) / total
	}
	return prefs
}

func calculateRecencyFactor(foundedAt, now time.Time) float64 {
	years := now.Sub(foundedAt).Hours() / 24.0 / 365.0
	if years < 0 {
		years = 0
	}
	return 1.0 / (1.0 + years)
}

func calculatePopularity(memberCount, maxMemberCount int) float64 {
	if maxMemberCount <= 0 || memberCount <= 0 {
		return 0
	}
	return math.Min(float64(memberCount)/float64(maxMemberCount), 1)
}

func computeFinalScore(club domain.Club, prefs map[string]float64, requested map[string]bool, maxMemberCount int, now time.Time) float64 {
	category := strings.ToLower(club.Category)

	popularityComponent := calculatePopularity(club.MemberCount, maxMemberCount) * popularityWeight

	affinity, ok := prefs[category]
	if !ok {
		affinity = defaultAffinity
	}
	affinityComponent := affinity * affinityWeight

	recencyComponent := calculateRecencyFactor(club.FoundedAt, now) * recencyWeight

	interestComponent := 0.0
	if requested[category] {
		interestComponent = interestWeight
	}

	return popularityComponent + affinityComponent + recencyComponent + interestComponent
}
