package handlers

import (
	"net/http"

	"github.com/anonto42/folio/backend/internal/models"
	"github.com/anonto42/folio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ViewHandler handles HTTP requests related to page views
type ViewHandler struct {
	counterService *services.CounterService
}

// NewViewHandler creates a new ViewHandler
func NewViewHandler(counterService *services.CounterService) *ViewHandler {
	return &ViewHandler{counterService: counterService}
}

// RegisterViewRoutes registers view-related routes
func (h *ViewHandler) RegisterViewRoutes(g *echo.Group) {
	g.PUT("/views", h.RecordView)
	g.GET("/views", h.GetViews)
}

// RecordView counts a view and returns the post's counters
func (h *ViewHandler) RecordView(c echo.Context) error {
	var req models.RecordViewRequest
	if err := bindJSONBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	counts, err := h.counterService.RecordView(c.Request().Context(), req.Slug)
	if err != nil {
		return counterError(err)
	}

	return c.JSON(http.StatusCreated, models.ViewsResponse{Views: counts.Views, Likes: counts.Likes})
}

// GetViews returns the post's counters without counting a view
func (h *ViewHandler) GetViews(c echo.Context) error {
	var q models.ViewsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	counts, err := h.counterService.GetViews(c.Request().Context(), q.Slug)
	if err != nil {
		return counterError(err)
	}

	return c.JSON(http.StatusOK, models.ViewsResponse{Views: counts.Views, Likes: counts.Likes})
}
