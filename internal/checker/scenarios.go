package checker

import (
	"context"
	"fmt"
)

// maxRecommendations is the largest limit a conforming service accepts.
const maxRecommendations = 50

// Step is one request plus the assertions on its response.
type Step struct {
	Name string
	Run  func(ctx context.Context, c *Client) error
}

// Scenario groups steps that run in order against one service.
type Scenario struct {
	Name string
	// StopOnFailure skips the remaining steps once one fails, for chains where
	// later steps depend on earlier side effects.
	StopOnFailure bool
	Steps         []Step
}

// DefaultScenarios is the full battery, in the order it runs.
func DefaultScenarios() []Scenario {
	return []Scenario{
		recommendationScenario(),
		categoryScenario(),
		favoritesScenario(),
		errorHandlingScenario(),
		journeyScenario(),
	}
}

func recommendationScenario() Scenario {
	requests := []struct {
		name    string
		payload RecommendationPayload
	}{
		{"new user interested in Technology", RecommendationPayload{
			UserID: "osu_12345", Favorites: []string{}, Categories: []string{"Technology"},
		}},
		{"user with coding and robotics favorites", RecommendationPayload{
			UserID: "osu_12345", Favorites: []string{"coding_club", "robotics_club"}, Categories: []string{"Technology", "Engineering"},
		}},
		{"user interested in Arts", RecommendationPayload{
			UserID: "osu_67890", Favorites: []string{"dance_club"}, Categories: []string{"Arts", "Creative"},
		}},
		{"user with diverse interests", RecommendationPayload{
			UserID: "osu_99999", Favorites: []string{"astronomy_club"}, Categories: []string{"Science", "Technology", "Arts"},
		}},
	}

	s := Scenario{Name: "POST /recommendations"}
	for _, r := range requests {
		s.Steps = append(s.Steps, Step{
			Name: r.name,
			Run: func(ctx context.Context, c *Client) error {
				resp, err := c.Recommend(ctx, r.payload)
				if err != nil {
					return err
				}
				recs, err := checkRecommendations(resp)
				if err != nil {
					return err
				}
				return expectExcluded(resp, recs, r.payload.Favorites...)
			},
		})
	}
	return s
}

func categoryScenario() Scenario {
	s := Scenario{Name: "GET /category/{name}"}
	for _, category := range []string{"Technology", "Engineering", "Arts", "Science"} {
		s.Steps = append(s.Steps, Step{
			Name: "list " + category + " clubs",
			Run: func(ctx context.Context, c *Client) error {
				resp, err := c.Category(ctx, category)
				if err != nil {
					return err
				}
				_, err = checkClubList(resp)
				return err
			},
		})
	}
	return s
}

func favoritesScenario() Scenario {
	const userID = "osu_12345"
	categories := []string{"Technology", "Engineering"}
	added := []string{"coding_club", "robotics_club", "game_dev_osu"}
	kept := []string{"coding_club"}
	removed := []string{"robotics_club", "game_dev_osu"}

	return Scenario{
		Name:          "POST /favorites/update",
		StopOnFailure: true,
		Steps: []Step{
			{
				Name: "add favorites",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.UpdateFavorites(ctx, RecommendationPayload{UserID: userID, Favorites: added, Categories: categories})
					if err != nil {
						return err
					}
					recs, err := checkRecommendations(resp)
					if err != nil {
						return err
					}
					return expectExcluded(resp, recs, added...)
				},
			},
			{
				Name: "stored favorites are excluded from later recommendations",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.Recommend(ctx, RecommendationPayload{UserID: userID, Categories: categories})
					if err != nil {
						return err
					}
					recs, err := checkRecommendations(resp)
					if err != nil {
						return err
					}
					return expectExcluded(resp, recs, added...)
				},
			},
			{
				Name: "remove favorites",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.UpdateFavorites(ctx, RecommendationPayload{UserID: userID, Favorites: kept, Categories: categories})
					if err != nil {
						return err
					}
					recs, err := checkRecommendations(resp)
					if err != nil {
						return err
					}
					return expectExcluded(resp, recs, kept...)
				},
			},
			{
				Name: "removed favorites are eligible again",
				Run: func(ctx context.Context, c *Client) error {
					return checkEligibleAgain(ctx, c, userID, categories, kept, removed)
				},
			},
		},
	}
}

// checkEligibleAgain requires the removed clubs to be recommended again. A missing
// club only counts as a violation when the service returns the whole category
// catalog to a user without favorites; a service that caps its lists below that
// may have dropped the club for length.
func checkEligibleAgain(ctx context.Context, c *Client, userID string, categories, kept, removed []string) error {
	inCatalog := make(map[string]bool)
	for _, category := range categories {
		resp, err := c.Category(ctx, category)
		if err != nil {
			return err
		}
		clubs, err := checkClubList(resp)
		if err != nil {
			return err
		}
		for _, club := range clubs {
			if club.ID != "" {
				inCatalog[club.ID] = true
			}
		}
	}

	resp, err := c.Recommend(ctx, RecommendationPayload{
		UserID:     userID,
		Favorites:  kept,
		Categories: categories,
		Limit:      maxRecommendations,
	})
	if err != nil {
		return err
	}
	recs, err := checkRecommendations(resp)
	if err != nil {
		return err
	}
	if err := expectExcluded(resp, recs, kept...); err != nil {
		return err
	}

	returned := make(map[string]bool, len(recs))
	for _, rec := range recs {
		returned[rec.ID] = true
	}
	var missing []string
	for _, id := range removed {
		if inCatalog[id] && !returned[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	capped, err := capsBelowCatalog(ctx, c, userID+"_baseline", categories, len(inCatalog))
	if err != nil || capped {
		return err
	}
	return contractErr(resp.Endpoint, "recommendations",
		"club %q was removed from favorites but is still excluded", missing[0])
}

// capsBelowCatalog reports whether a user with no favorites gets fewer than
// catalogSize recommendations for categories.
func capsBelowCatalog(ctx context.Context, c *Client, userID string, categories []string, catalogSize int) (bool, error) {
	resp, err := c.Recommend(ctx, RecommendationPayload{
		UserID:     userID,
		Favorites:  []string{},
		Categories: categories,
		Limit:      maxRecommendations,
	})
	if err != nil {
		return false, err
	}
	recs, err := checkRecommendations(resp)
	if err != nil {
		return false, err
	}
	return len(recs) < catalogSize, nil
}

func errorHandlingScenario() Scenario {
	return Scenario{
		Name: "error handling",
		Steps: []Step{
			{
				Name: "missing user_id is rejected",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.Recommend(ctx, RecommendationPayload{
						Favorites:  []string{"coding_club"},
						Categories: []string{"Technology"},
					})
					if err != nil {
						return err
					}
					return checkErrorDetail(resp)
				},
			},
			{
				Name: "unknown category lists no clubs",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.Category(ctx, "InvalidCategory")
					if err != nil {
						return err
					}
					clubs, err := checkClubList(resp)
					if err != nil {
						return err
					}
					if len(clubs) != 0 {
						return contractErr(resp.Endpoint, "", "expected an empty list for an unknown category, got %d clubs", len(clubs))
					}
					return nil
				},
			},
		},
	}
}

func journeyScenario() Scenario {
	const userID = "osu_demo_user"
	technology := []string{"Technology"}

	return Scenario{
		Name:          "integration journey",
		StopOnFailure: true,
		Steps: []Step{
			{
				Name: "new user gets initial recommendations",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.Recommend(ctx, RecommendationPayload{UserID: userID, Favorites: []string{}, Categories: technology})
					if err != nil {
						return err
					}
					_, err = checkRecommendations(resp)
					return err
				},
			},
			{
				Name: "user adds coding_club to favorites",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.UpdateFavorites(ctx, RecommendationPayload{UserID: userID, Favorites: []string{"coding_club"}, Categories: technology})
					if err != nil {
						return err
					}
					recs, err := checkRecommendations(resp)
					if err != nil {
						return err
					}
					return expectExcluded(resp, recs, "coding_club")
				},
			},
			{
				Name: "re-fetched recommendations exclude the favorite",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.Recommend(ctx, RecommendationPayload{UserID: userID, Favorites: []string{}, Categories: technology})
					if err != nil {
						return err
					}
					recs, err := checkRecommendations(resp)
					if err != nil {
						return err
					}
					return expectExcluded(resp, recs, "coding_club")
				},
			},
			{
				Name: "user browses Engineering clubs",
				Run: func(ctx context.Context, c *Client) error {
					resp, err := c.Category(ctx, "Engineering")
					if err != nil {
						return err
					}
					_, err = checkClubList(resp)
					return err
				},
			},
		},
	}
}

// checkLiveness runs GET / and wraps every failure in ErrServiceUnreachable.
func checkLiveness(ctx context.Context, c *Client) (*ServiceInfo, error) {
	resp, err := c.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnreachable, err)
	}
	info, err := checkServiceInfo(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnreachable, err)
	}
	return info, nil
}
