package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/folio/backend/internal/models"
	"github.com/anonto42/folio/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LimitReachedMessage is the body message sent with 403 when an address has used up its likes
const LimitReachedMessage = "Limits Reached!"

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	counterService *services.CounterService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(counterService *services.CounterService) *LikeHandler {
	return &LikeHandler{counterService: counterService}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/like", h.LikePost)
	g.GET("/like", h.GetLikes)
}

// LikePost records a like from the visitor. The body may carry the visitor's ip;
// otherwise the request address is used.
func (h *LikeHandler) LikePost(c echo.Context) error {
	var req models.CreateLikeRequest
	if err := bindJSONBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ip := req.IP
	if ip == "" {
		ip = c.RealIP()
	}

	like, err := h.counterService.RecordLike(c.Request().Context(), req.Slug, ip)
	if err != nil {
		return counterError(err)
	}

	return c.JSON(http.StatusCreated, models.LikeResponse{Like: like})
}

// GetLikes returns the like count of a post and the visitor's own likes
func (h *LikeHandler) GetLikes(c echo.Context) error {
	var q models.LikesQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	ip := q.IP
	if ip == "" {
		ip = c.RealIP()
	}

	counts, err := h.counterService.GetCounts(c.Request().Context(), q.Slug, ip)
	if err != nil {
		return counterError(err)
	}

	return c.JSON(http.StatusOK, models.LikesResponse{Likes: counts.Likes, MyLikes: counts.MyLikes})
}

// counterError maps service errors to HTTP errors; store failures become 500
func counterError(err error) error {
	switch {
	case errors.Is(err, services.ErrLimitReached):
		return echo.NewHTTPError(http.StatusForbidden, LimitReachedMessage)
	case errors.Is(err, services.ErrInvalidSlug):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update counters").SetInternal(err)
	}
}

// bindJSONBody binds a JSON body even when the client sent no Content-Type or text/plain,
// as a plain fetch with a string body does. Other content types go through c.Bind.
func bindJSONBody(c echo.Context, i interface{}) error {
	req := c.Request()
	ctype := req.Header.Get(echo.HeaderContentType)
	if ctype != "" && !strings.HasPrefix(ctype, echo.MIMETextPlain) {
		return c.Bind(i)
	}
	if req.ContentLength == 0 {
		return nil
	}
	return c.Echo().JSONSerializer.Deserialize(c, i)
}
