package router

import (
	"log/slog"

	"github.com/anonto42/folio/backend/internal/handlers"
	"github.com/anonto42/folio/backend/internal/middleware"
	"github.com/anonto42/folio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// Options controls the optional parts of the route table
type Options struct {
	// AdminJWTSecret enables /api/admin when non-empty
	AdminJWTSecret string
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, counterService *services.CounterService, opts Options) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	api := e.Group("/api")

	likeHandler := handlers.NewLikeHandler(counterService)
	likeHandler.RegisterLikeRoutes(api)

	viewHandler := handlers.NewViewHandler(counterService)
	viewHandler.RegisterViewRoutes(api)
	slog.Debug("counter routes configured")

	if opts.AdminJWTSecret == "" {
		slog.Info("ADMIN_JWT_SECRET not set, admin routes disabled")
		return
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(opts.AdminJWTSecret))
	statsHandler := handlers.NewStatsHandler(counterService)
	statsHandler.RegisterStatsRoutes(admin)
	slog.Debug("admin routes configured")
}
