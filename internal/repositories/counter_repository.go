package repositories

import (
	"context"

	"github.com/anonto42/folio/backend/internal/models"
)

// CounterRepository defines the interface for view and like data operations.
// Like counts are always derived from stored like rows.
type CounterRepository interface {
	// IncrementViews creates the post with one view if absent, otherwise adds one view.
	// It returns the post as stored after the increment.
	IncrementViews(ctx context.Context, slug string) (*models.Post, error)
	// GetPost returns nil and no error when the post does not exist.
	GetPost(ctx context.Context, slug string) (*models.Post, error)
	// EnsurePost creates the post with zero views if it does not exist yet.
	EnsurePost(ctx context.Context, slug string) error
	CreateLike(ctx context.Context, like *models.Like) error
	CountLikes(ctx context.Context, slug string) (int64, error)
	CountLikesByIP(ctx context.Context, slug, ip string) (int64, error)
	// ListPostStats returns posts ordered by views, most viewed first.
	ListPostStats(ctx context.Context, skip, limit int) ([]models.PostStats, error)
	Migrate(ctx context.Context) error
}
