package checker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClub struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

var fakeCatalog = []fakeClub{
	{"coding_club", "Coding Club", "Technology"},
	{"game_dev_osu", "Game Development Club", "Technology"},
	{"cyber_security_club", "Cyber Security Club", "Technology"},
	{"robotics_club", "Robotics Club", "Engineering"},
	{"formula_racing", "Formula Racing Team", "Engineering"},
}

// favoritesService is an in-memory service whose favorites handling can be
// broken one way at a time.
type favoritesService struct {
	// ignoreStored makes /recommendations exclude request favorites only.
	ignoreStored bool
	// sticky clubs stay excluded for a user once they have been favorited.
	sticky []string
	// maxResults caps every recommendation list when positive.
	maxResults int

	mu      sync.Mutex
	stored  map[string][]string
	everFav map[string]map[string]bool
}

func newFavoritesService() *favoritesService {
	return &favoritesService{
		stored:  make(map[string][]string),
		everFav: make(map[string]map[string]bool),
	}
}

func (f *favoritesService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"fake","status":"running","endpoints":["/"]}`))
	})
	mux.HandleFunc("GET /category/{name}", func(w http.ResponseWriter, r *http.Request) {
		clubs := []fakeClub{}
		for _, c := range fakeCatalog {
			if strings.EqualFold(c.Category, r.PathValue("name")) {
				clubs = append(clubs, c)
			}
		}
		_ = json.NewEncoder(w).Encode(clubs)
	})
	mux.HandleFunc("POST /recommendations", func(w http.ResponseWriter, r *http.Request) {
		var p RecommendationPayload
		_ = json.NewDecoder(r.Body).Decode(&p)

		f.mu.Lock()
		excluded := append([]string{}, p.Favorites...)
		if !f.ignoreStored {
			excluded = append(excluded, f.stored[p.UserID]...)
		}
		f.mu.Unlock()
		f.writeRecommendations(w, p, excluded)
	})
	mux.HandleFunc("POST /favorites/update", func(w http.ResponseWriter, r *http.Request) {
		var p RecommendationPayload
		_ = json.NewDecoder(r.Body).Decode(&p)

		f.mu.Lock()
		f.stored[p.UserID] = p.Favorites
		if f.everFav[p.UserID] == nil {
			f.everFav[p.UserID] = make(map[string]bool)
		}
		for _, id := range p.Favorites {
			f.everFav[p.UserID][id] = true
		}
		f.mu.Unlock()
		f.writeRecommendations(w, p, p.Favorites)
	})
	return mux
}

func (f *favoritesService) writeRecommendations(w http.ResponseWriter, p RecommendationPayload, excluded []string) {
	f.mu.Lock()
	skip := make(map[string]bool)
	for _, id := range excluded {
		skip[id] = true
	}
	for _, id := range f.sticky {
		if f.everFav[p.UserID][id] {
			skip[id] = true
		}
	}
	f.mu.Unlock()

	limit := p.Limit
	if limit == 0 {
		limit = 10
	}
	if f.maxResults > 0 && f.maxResults < limit {
		limit = f.maxResults
	}

	type rec struct {
		ClubID     string  `json:"club_id"`
		ClubName   string  `json:"club_name"`
		MatchScore float64 `json:"match_score"`
	}
	recs := []rec{}
	for _, c := range fakeCatalog {
		if len(recs) == limit {
			break
		}
		inCategory := len(p.Categories) == 0
		for _, cat := range p.Categories {
			inCategory = inCategory || strings.EqualFold(cat, c.Category)
		}
		if inCategory && !skip[c.ID] {
			recs = append(recs, rec{ClubID: c.ID, ClubName: c.Name, MatchScore: 0.5})
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"user_id": p.UserID, "recommendations": recs})
}

func runFavoritesChain(t *testing.T, f *favoritesService) map[string]Result {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	report, err := newTestChecker(srv.URL, WithScenarios(favoritesScenario())).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 4)

	byStep := make(map[string]Result)
	for _, r := range report.Results {
		byStep[r.Step] = r
	}
	return byStep
}

func TestFavoritesChain(t *testing.T) {
	t.Run("ConformingService", func(t *testing.T) {
		for step, res := range runFavoritesChain(t, newFavoritesService()) {
			assert.True(t, res.Passed(), "%s: %v", step, res.Err)
		}
	})

	t.Run("StoredFavoritesIgnored", func(t *testing.T) {
		f := newFavoritesService()
		f.ignoreStored = true
		steps := runFavoritesChain(t, f)

		assert.True(t, steps["add favorites"].Passed())

		var cerr *ContractError
		require.ErrorAs(t, steps["stored favorites are excluded from later recommendations"].Err, &cerr)
		assert.Equal(t, "POST /recommendations", cerr.Endpoint)
		assert.Equal(t, "recommendations.0", cerr.Field)
		assert.Contains(t, cerr.Reason, `"coding_club"`)

		assert.True(t, steps["remove favorites"].Skipped)
		assert.True(t, steps["removed favorites are eligible again"].Skipped)
	})

	t.Run("RemovedFavoriteNeverReturns", func(t *testing.T) {
		f := newFavoritesService()
		f.sticky = []string{"robotics_club"}
		steps := runFavoritesChain(t, f)

		assert.True(t, steps["remove favorites"].Passed())

		var cerr *ContractError
		require.ErrorAs(t, steps["removed favorites are eligible again"].Err, &cerr)
		assert.Equal(t, "recommendations", cerr.Field)
		assert.Contains(t, cerr.Reason, `"robotics_club"`)
	})

	t.Run("CappedListsAreInconclusive", func(t *testing.T) {
		f := newFavoritesService()
		f.maxResults = 2
		for step, res := range runFavoritesChain(t, f) {
			assert.True(t, res.Passed(), "%s: %v", step, res.Err)
		}
	})
}
