package cache

import (
	"context"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

// Noop is used when no REDIS_URL is configured; every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string, string) ([]domain.ScoredClub, bool, error) {
	return nil, false, nil
}

func (Noop) Set(context.Context, string, string, []domain.ScoredClub) error { return nil }
func (Noop) ClearUserCache(context.Context, string) error                 { return nil }
func (Noop) Ping(context.Context) error                                   { return nil }
func (Noop) Close() error                                                 { return nil }
