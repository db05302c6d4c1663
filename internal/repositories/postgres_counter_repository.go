package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/folio/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresCounterRepository implements CounterRepository for PostgreSQL
type PostgresCounterRepository struct {
	db *gorm.DB
}

// NewPostgresCounterRepository creates a new PostgresCounterRepository
func NewPostgresCounterRepository(db *gorm.DB) *PostgresCounterRepository {
	return &PostgresCounterRepository{db: db}
}

// Migrate creates or updates the posts and likes tables
func (r *PostgresCounterRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&models.Post{}, &models.Like{}); err != nil {
		return fmt.Errorf("auto migrate counters: %w", err)
	}
	return nil
}

// IncrementViews upserts the post in a single statement so concurrent views never get lost
func (r *PostgresCounterRepository) IncrementViews(ctx context.Context, slug string) (*models.Post, error) {
	post := &models.Post{Slug: slug, Views: 1}
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "slug"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"views":      gorm.Expr("posts.views + 1"),
					"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
				}),
			},
			clause.Returning{},
		).
		Create(post).Error
	if err != nil {
		return nil, fmt.Errorf("increment views for %q: %w", slug, err)
	}
	return post, nil
}

// GetPost retrieves a post by slug
func (r *PostgresCounterRepository) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get post %q: %w", slug, err)
	}
	return &post, nil
}

// EnsurePost inserts an empty post row unless one exists
func (r *PostgresCounterRepository) EnsurePost(ctx context.Context, slug string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
		Create(&models.Post{Slug: slug}).Error
	if err != nil {
		return fmt.Errorf("ensure post %q: %w", slug, err)
	}
	return nil
}

// CreateLike creates a new like in PostgreSQL
func (r *PostgresCounterRepository) CreateLike(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Omit("Post").Create(like).Error; err != nil {
		return fmt.Errorf("create like on %q: %w", like.PostSlug, err)
	}
	return nil
}

// CountLikes retrieves the count of likes for a post
func (r *PostgresCounterRepository) CountLikes(ctx context.Context, slug string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_slug = ?", slug).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count likes on %q: %w", slug, err)
	}
	return count, nil
}

// CountLikesByIP retrieves the count of likes a visitor address left on a post
func (r *PostgresCounterRepository) CountLikesByIP(ctx context.Context, slug, ip string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_slug = ? AND user_ip = ?", slug, ip).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count likes on %q from %s: %w", slug, ip, err)
	}
	return count, nil
}

// ListPostStats retrieves posts with their like counts, paginated
func (r *PostgresCounterRepository) ListPostStats(ctx context.Context, skip, limit int) ([]models.PostStats, error) {
	var stats []models.PostStats
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.slug, posts.views, COUNT(likes.id) AS likes").
		Joins("LEFT JOIN likes ON likes.post_slug = posts.slug").
		Group("posts.slug, posts.views").
		Order("posts.views DESC, posts.slug ASC").
		Offset(skip).
		Limit(limit).
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("list post stats: %w", err)
	}
	return stats, nil
}
