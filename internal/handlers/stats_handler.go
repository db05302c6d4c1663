package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/folio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// StatsHandler serves the counter overview for the site owner
type StatsHandler struct {
	counterService *services.CounterService
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(counterService *services.CounterService) *StatsHandler {
	return &StatsHandler{counterService: counterService}
}

// RegisterStatsRoutes registers stats routes on an authenticated group
func (h *StatsHandler) RegisterStatsRoutes(g *echo.Group) {
	g.GET("/posts", h.ListPosts)
}

// ListPosts returns posts ordered by views with their like counts
func (h *StatsHandler) ListPosts(c echo.Context) error {
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	stats, err := h.counterService.ListStats(c.Request().Context(), skip, limit)
	if err != nil {
		return counterError(err)
	}

	return c.JSON(http.StatusOK, stats)
}
