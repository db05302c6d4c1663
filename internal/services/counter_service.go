// Package services holds the view and like counting rules that sit between
// the HTTP handlers and the counter repository.
package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anonto42/folio/backend/internal/models"
	"github.com/anonto42/folio/backend/internal/repositories"
	"github.com/google/uuid"
)

// DefaultLikeLimit is the number of likes one address may leave on one post.
const DefaultLikeLimit = 5

const (
	defaultStatsLimit = 10
	maxStatsLimit     = 100
)

var (
	// ErrLimitReached is returned when an address has used up its likes on a post.
	ErrLimitReached = errors.New("like limit reached")
	// ErrInvalidSlug is returned for an empty slug.
	ErrInvalidSlug = errors.New("slug is required")
)

// PostCounts is the view count and derived like count of a post
type PostCounts struct {
	Views int64
	Likes int64
}

// LikeCounts is the total like count of a post and the share left by one address
type LikeCounts struct {
	Likes   int64
	MyLikes int64
}

// CounterService records and reads post views and likes.
// It keeps no state of its own; every call goes to the repository.
type CounterService struct {
	repo      repositories.CounterRepository
	likeLimit int64
	logger    *slog.Logger
	newID     func() string
}

// Option configures a CounterService
type Option func(*CounterService)

// WithLikeLimit sets the per-address like limit. Zero or less disables the limit.
func WithLikeLimit(limit int) Option {
	return func(s *CounterService) {
		s.likeLimit = int64(limit)
	}
}

// WithLogger sets the logger used for limit rejections
func WithLogger(logger *slog.Logger) Option {
	return func(s *CounterService) {
		s.logger = logger
	}
}

// NewCounterService creates a new CounterService
func NewCounterService(repo repositories.CounterRepository, opts ...Option) *CounterService {
	s := &CounterService{
		repo:      repo,
		likeLimit: DefaultLikeLimit,
		logger:    slog.Default(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LikeLimit returns the active per-address limit, zero when disabled
func (s *CounterService) LikeLimit() int64 {
	if s.likeLimit < 0 {
		return 0
	}
	return s.likeLimit
}

// RecordView counts one view of the post and returns its counters
func (s *CounterService) RecordView(ctx context.Context, slug string) (PostCounts, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return PostCounts{}, err
	}

	post, err := s.repo.IncrementViews(ctx, slug)
	if err != nil {
		return PostCounts{}, err
	}
	likes, err := s.repo.CountLikes(ctx, slug)
	if err != nil {
		return PostCounts{}, err
	}
	return PostCounts{Views: post.Views, Likes: likes}, nil
}

// GetViews returns the counters of a post without counting a view.
// Unknown posts report zero for both.
func (s *CounterService) GetViews(ctx context.Context, slug string) (PostCounts, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return PostCounts{}, err
	}

	post, err := s.repo.GetPost(ctx, slug)
	if err != nil {
		return PostCounts{}, err
	}
	if post == nil {
		return PostCounts{}, nil
	}
	likes, err := s.repo.CountLikes(ctx, slug)
	if err != nil {
		return PostCounts{}, err
	}
	return PostCounts{Views: post.Views, Likes: likes}, nil
}

// RecordLike stores a like from ip on the post, creating the post if needed.
// It returns ErrLimitReached without writing anything once ip has used up its likes.
func (s *CounterService) RecordLike(ctx context.Context, slug, ip string) (*models.Like, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return nil, err
	}

	if limit := s.LikeLimit(); limit > 0 {
		mine, err := s.repo.CountLikesByIP(ctx, slug, ip)
		if err != nil {
			return nil, err
		}
		if mine >= limit {
			s.logger.InfoContext(ctx, "like limit reached", "slug", slug, "ip", ip, "likes", mine)
			return nil, ErrLimitReached
		}
	}

	if err := s.repo.EnsurePost(ctx, slug); err != nil {
		return nil, err
	}

	like := &models.Like{
		ID:       s.newID(),
		UserIP:   ip,
		PostSlug: slug,
	}
	if err := s.repo.CreateLike(ctx, like); err != nil {
		return nil, err
	}
	return like, nil
}

// GetCounts returns the like count of a post and how many of those came from ip
func (s *CounterService) GetCounts(ctx context.Context, slug, ip string) (LikeCounts, error) {
	slug, err := normalizeSlug(slug)
	if err != nil {
		return LikeCounts{}, err
	}

	likes, err := s.repo.CountLikes(ctx, slug)
	if err != nil {
		return LikeCounts{}, err
	}
	if ip == "" {
		return LikeCounts{Likes: likes}, nil
	}
	mine, err := s.repo.CountLikesByIP(ctx, slug, ip)
	if err != nil {
		return LikeCounts{}, err
	}
	return LikeCounts{Likes: likes, MyLikes: mine}, nil
}

// ListStats returns a page of posts ordered by views
func (s *CounterService) ListStats(ctx context.Context, skip, limit int) ([]models.PostStats, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultStatsLimit
	}
	if limit > maxStatsLimit {
		limit = maxStatsLimit
	}
	return s.repo.ListPostStats(ctx, skip, limit)
}

func normalizeSlug(slug string) (string, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return "", ErrInvalidSlug
	}
	return slug, nil
}
