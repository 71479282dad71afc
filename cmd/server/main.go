package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/cache"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/config"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/handler"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/logging"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/model"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/repository"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/router"
	"github.com/actuallystonmai/campusconnect-recommendation/internal/service"
	"github.com/actuallystonmai/campusconnect-recommendation/seeds"
)

const dbWaitAttempts = 30

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger("info").Fatal("failed to load config", zap.Error(err))
	}

	logger := logging.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// ------------ Storage ---------------
	store, err := repository.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := repository.WaitForDB(ctx, store, dbWaitAttempts, func(attempt int) {
		logger.Info("waiting for database", zap.Int("attempt", attempt), zap.Int("max", dbWaitAttempts))
	}); err != nil {
		return err
	}
	logger.Info("connected to storage", zap.String("type", cfg.StorageType))

	// ------------ Run Migrations ---------------
	// for migrate-down using CLI command
	if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
		if err := store.MigrateDown(ctx); err != nil {
			return err
		}
		logger.Info("migrations dropped")
		return nil
	}

	if err := store.MigrateUp(ctx); err != nil {
		return err
	}
	logger.Info("migrations applied")

	// ------------ Setup Seed Data ---------------
	if cfg.SeedOnStart {
		if err := seeds.Setup(ctx, store, logger); err != nil {
			return err
		}
	}

	// ------------ Cache ---------------
	var recCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCacheFromURL(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			return err
		}
		recCache = redisCache
		logger.Info("connected to redis", zap.Duration("ttl", cfg.CacheTTL))
	} else {
		logger.Info("REDIS_URL not set, recommendation caching disabled")
	}
	defer recCache.Close()

	// ---------------- Server --------------------
	svc := service.NewService(store, recCache, model.NewClient(), logger)
	h := handler.NewHandler(svc, logger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(h, router.OptionsFromConfig(cfg), logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", zap.Error(err))
	}
	logger.Info("server exited")
	return nil
}
