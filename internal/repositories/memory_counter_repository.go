package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anonto42/folio/backend/internal/models"
)

// MemoryCounterRepository keeps counters in process memory. Used for local runs and tests.
type MemoryCounterRepository struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
	likes map[string][]*models.Like
}

// NewMemoryCounterRepository creates an empty MemoryCounterRepository
func NewMemoryCounterRepository() *MemoryCounterRepository {
	return &MemoryCounterRepository{
		posts: make(map[string]*models.Post),
		likes: make(map[string][]*models.Like),
	}
}

// Migrate is a no-op; the maps are ready on construction
func (r *MemoryCounterRepository) Migrate(ctx context.Context) error {
	return nil
}

// IncrementViews adds one view, creating the post on first sight
func (r *MemoryCounterRepository) IncrementViews(ctx context.Context, slug string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	post, ok := r.posts[slug]
	if !ok {
		post = &models.Post{Slug: slug, CreatedAt: now}
		r.posts[slug] = post
	}
	post.Views++
	post.UpdatedAt = now

	cp := *post
	return &cp, nil
}

// GetPost returns a copy of the post, or nil if it was never seen
func (r *MemoryCounterRepository) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[slug]
	if !ok {
		return nil, nil
	}
	cp := *post
	return &cp, nil
}

// EnsurePost creates the post with zero views if missing
func (r *MemoryCounterRepository) EnsurePost(ctx context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[slug]; !ok {
		now := time.Now().UTC()
		r.posts[slug] = &models.Post{Slug: slug, CreatedAt: now, UpdatedAt: now}
	}
	return nil
}

// CreateLike stores a copy of the like
func (r *MemoryCounterRepository) CreateLike(ctx context.Context, like *models.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now().UTC()
	}
	cp := *like
	r.likes[like.PostSlug] = append(r.likes[like.PostSlug], &cp)
	return nil
}

// CountLikes counts all likes of a post
func (r *MemoryCounterRepository) CountLikes(ctx context.Context, slug string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.likes[slug])), nil
}

// CountLikesByIP counts likes given to a post from one address
func (r *MemoryCounterRepository) CountLikesByIP(ctx context.Context, slug, ip string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, like := range r.likes[slug] {
		if like.UserIP == ip {
			count++
		}
	}
	return count, nil
}

// ListPostStats returns posts by views descending, then slug
func (r *MemoryCounterRepository) ListPostStats(ctx context.Context, skip, limit int) ([]models.PostStats, error) {
	r.mu.RLock()
	stats := make([]models.PostStats, 0, len(r.posts))
	for slug, post := range r.posts {
		stats = append(stats, models.PostStats{
			Slug:  slug,
			Views: post.Views,
			Likes: int64(len(r.likes[slug])),
		})
	}
	r.mu.RUnlock()

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Views != stats[j].Views {
			return stats[i].Views > stats[j].Views
		}
		return stats[i].Slug < stats[j].Slug
	})

	if skip >= len(stats) {
		return []models.PostStats{}, nil
	}
	end := skip + limit
	if end > len(stats) {
		end = len(stats)
	}
	return stats[skip:end], nil
}
