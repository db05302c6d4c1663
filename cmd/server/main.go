package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/folio/backend/internal/repositories"
	"github.com/anonto42/folio/backend/internal/router"
	"github.com/anonto42/folio/backend/internal/services"
	"github.com/anonto42/folio/backend/pkg/config"
	"github.com/anonto42/folio/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := config.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize database", "storage", cfg.Storage, "error", err)
		os.Exit(1)
	}
	defer db.CloseDB()

	repo := newRepository(cfg, db)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("failed to migrate storage", "storage", cfg.Storage, "error", err)
		db.CloseDB()
		os.Exit(1)
	}

	counterService := services.NewCounterService(repo,
		services.WithLikeLimit(cfg.LikeLimit),
		services.WithLogger(logger),
	)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg, logger)
	router.SetupRoutes(e, counterService, router.Options{AdminJWTSecret: cfg.AdminJWTSecret})

	go func() {
		logger.Info("starting server", "port", cfg.Port, "storage", cfg.Storage, "like_limit", cfg.LikeLimit)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func newRepository(cfg *config.Config, db *config.DB) repositories.CounterRepository {
	switch cfg.Storage {
	case config.StoragePostgres:
		return repositories.NewPostgresCounterRepository(db.Postgres)
	case config.StorageMongo:
		return repositories.NewMongoCounterRepository(db.Mongo.Database(cfg.MongoDatabase))
	default:
		return repositories.NewMemoryCounterRepository()
	}
}
