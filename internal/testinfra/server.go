// Package testinfra assembles a seeded, in-process recommendation service for
// end-to-end tests.
package testinfra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/cache"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/handler"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/model"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/repository"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/router"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/service"
	"github.com/actuallystonmai/campusconnect-recommendation/seeds"
)

// NewHandler wires a SQLite-backed service with the seed catalog behind the real router.
func NewHandler(t testing.TB, opts router.Options) http.Handler {
	t.Helper()

	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "recommendations.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(store.Close)

	ctx := context.Background()
	if err := store.MigrateUp(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := seeds.Setup(ctx, store, zap.NewNop()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	logger := zap.NewNop()
	svc := service.NewService(store, cache.Noop{}, model.NewClient(), logger)
	return router.Setup(handler.NewHandler(svc, logger), opts, logger)
}

// NewServer starts an httptest server around NewHandler without rate limiting.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewHandler(t, router.Options{}))
	t.Cleanup(srv.Close)
	return srv
}
