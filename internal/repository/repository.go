package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/config"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

// Store is the persistence boundary for the club catalog and user profiles.
// Category lookups are case-insensitive.
type Store interface {
	ClubsByCategory(ctx context.Context, category string) ([]domain.Club, error)
	// CandidateClubs returns clubs in any of categories, or the whole catalog when empty.
	CandidateClubs(ctx context.Context, categories []string) ([]domain.Club, error)
	ClubsByIDs(ctx context.Context, ids []string) ([]domain.Club, error)
	MaxMemberCount(ctx context.Context) (int, error)
	CountClubs(ctx context.Context) (int, error)
	InsertClubs(ctx context.Context, clubs []domain.Club) error

	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	SaveProfile(ctx context.Context, profile *domain.UserProfile) error
	ListProfileUserIDs(ctx context.Context, page, limit int) ([]string, error)
	CountProfiles(ctx context.Context) (int, error)

	MigrateUp(ctx context.Context) error
	MigrateDown(ctx context.Context) error
	Ping(ctx context.Context) error
	Close()
}

// New opens the backend selected by cfg.StorageType.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageType {
	case config.StorageTypePostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL, cfg.DBPoolSize)
	case config.StorageTypeSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.StorageType)
	}
}

// WaitForDB retries Ping once a second until the database answers or attempts run out.
func WaitForDB(ctx context.Context, store Store, attempts int, onRetry func(attempt int)) error {
	for i := 0; i < attempts; i++ {
		if err := store.Ping(ctx); err == nil {
			return nil
		}
		if onRetry != nil {
			onRetry(i + 1)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("database connection timeout after %ds", attempts)
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// uniqueStrings keeps the first occurrence of each value, preserving order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
