package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/cache"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/metrics"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/model"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/repository"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/validation"
)

const (
	ServiceName = "CampusConnect Recommendation Service"
	Version     = "1.0.0"

	defaultLimit     = 10
	maxLimit         = 50
	batchConcurrency = 10
	batchRecLimit    = 10
)

// Endpoints is what GET / advertises.
var Endpoints = []string{
	"GET /",
	"GET /health",
	"POST /recommendations",
	"GET /recommendations/batch",
	"GET /category/{name}",
	"POST /favorites/update",
	"GET /favorites/{user_id}",
}

type Service struct {
	repo        repository.Store
	cache       cache.Cache
	modelClient *model.Client
	logger      *zap.Logger
	now         func() time.Time
}

func NewService(repo repository.Store, cache cache.Cache, modelClient *model.Client, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		cache:       cache,
		modelClient: modelClient,
		logger:      logger.Named("service"),
		now:         time.Now,
	}
}

func (s *Service) Info() domain.ServiceInfo {
	endpoints := make([]string, len(Endpoints))
	copy(endpoints, Endpoints)
	return domain.ServiceInfo{
		Service:   ServiceName,
		Status:    "running",
		Version:   Version,
		Endpoints: endpoints,
	}
}

// GetRecommendations ranks clubs for req without persisting anything. Clubs in
// req.Favorites or in the user's stored favorites are never returned.
//
// The cache key digests the full exclusion set, so an entry written from a
// profile that has since changed is never served for the new profile.
func (s *Service) GetRecommendations(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, verr
	}
	limit := normalizeLimit(req.Limit)

	excluded, err := s.exclusions(ctx, req.UserID, req.Favorites)
	if err != nil {
		return nil, err
	}
	query := cache.QueryKey(req.Categories, excluded, limit)

	// Check Cache
	cached, found, err := s.cache.Get(ctx, req.UserID, query)
	metrics.RecordCacheLookup(found, err)
	if err != nil {
		s.logger.Warn("cache get failed", zap.String("user_id", req.UserID), zap.Error(err))
	}

	// Use recommendations from cache if available
	if found {
		metrics.RecommendationsServed.Observe(float64(len(cached)))
		return &domain.RecommendationResult{
			UserID:          req.UserID,
			Recommendations: cached,
			CacheHit:        true,
		}, nil
	}

	// Cache miss -> generate recommendations
	recs, err := s.generateRecommendations(ctx, excluded, req.Categories, limit)
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, req.UserID, query, recs); cacheErr != nil {
		s.logger.Warn("cache set failed", zap.String("user_id", req.UserID), zap.Error(cacheErr))
	}

	metrics.RecommendationsServed.Observe(float64(len(recs)))
	return &domain.RecommendationResult{
		UserID:          req.UserID,
		Recommendations: recs,
		CacheHit:        false,
	}, nil
}

// UpdateFavorites replaces the user's stored favorites and categories, drops the
// user's cached results and returns freshly computed recommendations.
func (s *Service) UpdateFavorites(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, verr
	}

	profile := &domain.UserProfile{
		UserID:     req.UserID,
		Favorites:  nonNil(req.Favorites),
		Categories: nonNil(req.Categories),
		UpdatedAt:  s.now().UTC(),
	}
	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save favorites: %w", err)
	}
	metrics.FavoritesUpdates.Inc()

	if err := s.cache.ClearUserCache(ctx, req.UserID); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("user_id", req.UserID), zap.Error(err))
	}

	// the saved profile replaces the old one, so its favorites are the whole exclusion set
	excluded := mergeIDs(profile.Favorites, nil)
	limit := normalizeLimit(req.Limit)
	recs, err := s.generateRecommendations(ctx, excluded, req.Categories, limit)
	if err != nil {
		return nil, err
	}

	query := cache.QueryKey(req.Categories, excluded, limit)
	if cacheErr := s.cache.Set(ctx, req.UserID, query, recs); cacheErr != nil {
		s.logger.Warn("cache set failed", zap.String("user_id", req.UserID), zap.Error(cacheErr))
	}

	s.logger.Info("favorites updated",
		zap.String("user_id", req.UserID),
		zap.Int("favorites", len(profile.Favorites)),
		zap.Strings("categories", profile.Categories),
	)
	metrics.RecommendationsServed.Observe(float64(len(recs)))
	return &domain.RecommendationResult{UserID: req.UserID, Recommendations: recs}, nil
}

// exclusions merges the request favorites with the user's stored favorites.
// Unknown users have none stored.
func (s *Service) exclusions(ctx context.Context, userID string, favorites []string) ([]string, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return mergeIDs(favorites, nil), nil
	case err != nil:
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return mergeIDs(favorites, profile.Favorites), nil
}

func (s *Service) GetFavorites(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	return profile, nil
}

// ClubsByCategory never returns nil, so unknown categories encode as [].
func (s *Service) ClubsByCategory(ctx context.Context, category string) ([]domain.Club, error) {
	clubs, err := s.repo.ClubsByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("fetch category: %w", err)
	}
	if clubs == nil {
		clubs = []domain.Club{}
	}
	return clubs, nil
}

// Health pings storage and cache; the map holds one status per component.
func (s *Service) Health(ctx context.Context) (map[string]string, error) {
	status := map[string]string{"storage": "ok", "cache": "ok"}
	var errs []error

	if err := s.repo.Ping(ctx); err != nil {
		status["storage"] = "unavailable"
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}
	if err := s.cache.Ping(ctx); err != nil {
		status["cache"] = "unavailable"
		errs = append(errs, fmt.Errorf("cache: %w", err))
	}
	return status, errors.Join(errs...)
}

// generateRecommendations scores every candidate outside excluded. The result
// depends only on its arguments and the catalog.
func (s *Service) generateRecommendations(ctx context.Context, excluded, categories []string, limit int) ([]domain.ScoredClub, error) {
	var (
		candidates    []domain.Club
		favoriteClubs []domain.Club
		maxMembers    int
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		var err error
		if candidates, err = s.repo.CandidateClubs(ctx, categories); err != nil {
			return fmt.Errorf("fetch candidates: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		if favoriteClubs, err = s.repo.ClubsByIDs(ctx, excluded); err != nil {
			return fmt.Errorf("fetch favorite clubs: %w", err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		if maxMembers, err = s.repo.MaxMemberCount(ctx); err != nil {
			return fmt.Errorf("fetch catalog stats: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, id := range excluded {
		skip[id] = struct{}{}
	}
	eligible := make([]domain.Club, 0, len(candidates))
	for _, club := range candidates {
		if _, ok := skip[club.ID]; !ok {
			eligible = append(eligible, club)
		}
	}

	return s.modelClient.Score(model.ScoreInput{
		Candidates:          eligible,
		FavoriteClubs:       favoriteClubs,
		RequestedCategories: categories,
		MaxMemberCount:      maxMembers,
		Limit:               limit,
	}), nil
}

// GetBatchRecommendations computes recommendations for one page of stored users.
func (s *Service) GetBatchRecommendations(ctx context.Context, page, limit int) (*domain.BatchResponse, error) {
	start := time.Now()

	userIDs, err := s.repo.ListProfileUserIDs(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch user ids: %w", err)
	}

	totalUsers, err := s.repo.CountProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	results := make([]domain.BatchUserResult, len(userIDs))
	p := pool.New().WithMaxGoroutines(batchConcurrency)
	for i, userID := range userIDs {
		p.Go(func() {
			results[i] = s.processUserForBatch(ctx, userID)
		})
	}
	p.Wait()

	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Page:       page,
		Limit:      limit,
		TotalUsers: totalUsers,
		Results:    results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: s.now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// Generates recommendations for a single stored user, capturing errors.
func (s *Service) processUserForBatch(ctx context.Context, userID string) domain.BatchUserResult {
	result, err := s.recommendForStoredUser(ctx, userID)
	if err != nil {
		s.logger.Warn("batch: recommendation failed", zap.String("user_id", userID), zap.Error(err))
		code, msg := categorizeError(err)
		return domain.BatchUserResult{
			UserID:  userID,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchUserResult{
		UserID:          userID,
		Recommendations: result.Recommendations,
		Status:          domain.StatusSuccess,
	}
}

func (s *Service) recommendForStoredUser(ctx context.Context, userID string) (*domain.RecommendationResult, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.GetRecommendations(ctx, domain.RecommendationRequest{
		UserID:     userID,
		Categories: profile.Categories,
		Limit:      batchRecLimit,
	})
}

// Handle response error
func categorizeError(err error) (string, string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found", "user not found"
	case errors.As(err, &verr):
		return "validation_error", verr.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "request_timeout", "request timed out"
	default:
		return "internal_error", "an unexpected error occurred"
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// mergeIDs returns the union of a and b, first occurrence order, never nil.
func mergeIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, ids := range [][]string{a, b} {
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				merged = append(merged, id)
			}
		}
	}
	return merged
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
