package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/anonto42/folio/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCounterRepositoryTests checks the behaviour every CounterRepository must share.
// Slugs are made unique per run so backends may be reused between subtests.
func runCounterRepositoryTests(t *testing.T, repo CounterRepository) {
	ctx := context.Background()
	require.NoError(t, repo.Migrate(ctx))

	newSlug := func(prefix string) string {
		return prefix + "-" + uuid.NewString()[:8]
	}
	newLike := func(slug, ip string) *models.Like {
		return &models.Like{ID: uuid.NewString(), PostSlug: slug, UserIP: ip}
	}

	t.Run("IncrementViews creates then increments", func(t *testing.T) {
		slug := newSlug("views")

		post, err := repo.IncrementViews(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, slug, post.Slug)
		assert.Equal(t, int64(1), post.Views)

		post, err = repo.IncrementViews(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, int64(2), post.Views)

		stored, err := repo.GetPost(ctx, slug)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, int64(2), stored.Views)
	})

	t.Run("IncrementViews is atomic", func(t *testing.T) {
		slug := newSlug("concurrent")
		const n = 20

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.IncrementViews(ctx, slug)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		stored, err := repo.GetPost(ctx, slug)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, int64(n), stored.Views)
	})

	t.Run("GetPost Not Found", func(t *testing.T) {
		post, err := repo.GetPost(ctx, newSlug("missing"))
		assert.NoError(t, err)
		assert.Nil(t, post)
	})

	t.Run("EnsurePost keeps existing views", func(t *testing.T) {
		slug := newSlug("ensure")
		require.NoError(t, repo.EnsurePost(ctx, slug))

		post, err := repo.GetPost(ctx, slug)
		require.NoError(t, err)
		require.NotNil(t, post)
		assert.Equal(t, int64(0), post.Views)

		_, err = repo.IncrementViews(ctx, slug)
		require.NoError(t, err)
		require.NoError(t, repo.EnsurePost(ctx, slug))

		post, err = repo.GetPost(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, int64(1), post.Views)
	})

	t.Run("CreateLike and counts", func(t *testing.T) {
		slug := newSlug("likes")
		require.NoError(t, repo.EnsurePost(ctx, slug))

		for i := 0; i < 3; i++ {
			require.NoError(t, repo.CreateLike(ctx, newLike(slug, "1.2.3.4")))
		}
		require.NoError(t, repo.CreateLike(ctx, newLike(slug, "5.6.7.8")))

		total, err := repo.CountLikes(ctx, slug)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)

		mine, err := repo.CountLikesByIP(ctx, slug, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, int64(3), mine)

		none, err := repo.CountLikesByIP(ctx, slug, "9.9.9.9")
		require.NoError(t, err)
		assert.Equal(t, int64(0), none)
	})

	t.Run("ListPostStats orders by views", func(t *testing.T) {
		top := newSlug("top")
		for i := 0; i < 3; i++ {
			_, err := repo.IncrementViews(ctx, top)
			require.NoError(t, err)
		}
		require.NoError(t, repo.CreateLike(ctx, newLike(top, "1.2.3.4")))

		stats, err := repo.ListPostStats(ctx, 0, 1000)
		require.NoError(t, err)

		var found *models.PostStats
		for i := range stats {
			if stats[i].Slug == top {
				found = &stats[i]
			}
			if i > 0 {
				assert.GreaterOrEqual(t, stats[i-1].Views, stats[i].Views)
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, int64(3), found.Views)
		assert.Equal(t, int64(1), found.Likes)

		page, err := repo.ListPostStats(ctx, 0, 1)
		require.NoError(t, err)
		assert.Len(t, page, 1)
	})
}
