package likeclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/folio/backend/internal/handlers"
	"github.com/anonto42/folio/backend/internal/repositories"
	"github.com/anonto42/folio/backend/internal/services"
	"github.com/anonto42/folio/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLiker blocks each Like until a result is sent on release.
// When countsRelease is set, Counts also blocks until it is closed.
type fakeLiker struct {
	mu      sync.Mutex
	started chan struct{}
	release chan error
	counts  Counts
	calls   int

	countsStarted chan struct{}
	countsRelease chan struct{}
}

func newFakeLiker() *fakeLiker {
	return &fakeLiker{started: make(chan struct{}, 1), release: make(chan error)}
}

func (f *fakeLiker) Like(ctx context.Context, slug, ip string) (*Like, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	f.started <- struct{}{}
	if err := <-f.release; err != nil {
		return nil, err
	}
	return &Like{ID: "x", PostSlug: slug, UserIP: ip}, nil
}

func (f *fakeLiker) Counts(ctx context.Context, slug, ip string) (Counts, error) {
	f.mu.Lock()
	counts := f.counts
	f.mu.Unlock()
	if f.countsRelease != nil {
		f.countsStarted <- struct{}{}
		<-f.countsRelease
	}
	return counts, nil
}

func clickAsync(w *Widget) <-chan error {
	done := make(chan error, 1)
	go func() { done <- w.Click(context.Background()) }()
	return done
}

func TestWidgetOptimisticSuccess(t *testing.T) {
	liker := newFakeLiker()
	w := NewWidget(liker, "hello-world", "1.2.3.4", 10)

	done := clickAsync(w)
	<-liker.started

	assert.Equal(t, int64(11), w.Likes())
	assert.Equal(t, int64(1), w.MyLikes())
	assert.True(t, w.Pending())
	assert.True(t, w.Disabled())

	liker.release <- nil
	require.NoError(t, <-done)
	assert.False(t, w.Pending())
	assert.True(t, w.Stale())

	liker.counts = Counts{Likes: 12, MyLikes: 1}
	require.NoError(t, w.Refresh(context.Background()))
	assert.Equal(t, int64(12), w.Likes())
	assert.False(t, w.Stale())
}

func TestWidgetRollbackOnFailure(t *testing.T) {
	liker := newFakeLiker()
	w := NewWidget(liker, "hello-world", "1.2.3.4", 10, WithMyLikes(2))
	w.stale = false

	done := clickAsync(w)
	<-liker.started
	assert.Equal(t, int64(11), w.Likes())

	boom := errors.New("network down")
	liker.release <- boom
	assert.ErrorIs(t, <-done, boom)

	assert.Equal(t, int64(10), w.Likes())
	assert.Equal(t, int64(2), w.MyLikes())
	assert.False(t, w.Pending())
	assert.False(t, w.Stale(), "a failed like must not invalidate the counts")
}

func TestWidgetRefusesWhileBusy(t *testing.T) {
	liker := newFakeLiker()
	w := NewWidget(liker, "hello-world", "1.2.3.4", 0)

	done := clickAsync(w)
	<-liker.started

	assert.ErrorIs(t, w.Click(context.Background()), ErrBusy)
	assert.Equal(t, int64(1), w.Likes())

	liker.release <- nil
	require.NoError(t, <-done)
	assert.Equal(t, 1, liker.calls)
}

func TestWidgetCap(t *testing.T) {
	liker := newFakeLiker()
	w := NewWidget(liker, "hello-world", "1.2.3.4", 4, WithMyLikes(DefaultCap))

	assert.True(t, w.Disabled())
	assert.ErrorIs(t, w.Click(context.Background()), ErrCapReached)
	assert.Equal(t, int64(4), w.Likes())
	assert.Equal(t, 0, liker.calls)

	uncapped := NewWidget(liker, "hello-world", "1.2.3.4", 4, WithCap(0), WithMyLikes(50))
	assert.False(t, uncapped.Disabled())
}

func TestWidgetLoadDuringClickIsDropped(t *testing.T) {
	liker := newFakeLiker()
	liker.counts = Counts{Likes: 99, MyLikes: 0}
	w := NewWidget(liker, "hello-world", "1.2.3.4", 10)

	done := clickAsync(w)
	<-liker.started

	require.NoError(t, w.Load(context.Background()))
	assert.Equal(t, int64(11), w.Likes())

	liker.release <- nil
	require.NoError(t, <-done)
}

func TestWidgetLoadStartedBeforeClickIsDropped(t *testing.T) {
	liker := newFakeLiker()
	liker.counts = Counts{Likes: 3, MyLikes: 0}
	liker.countsStarted = make(chan struct{}, 1)
	liker.countsRelease = make(chan struct{})
	w := NewWidget(liker, "hello-world", "1.2.3.4", 3, WithMyLikes(0))
	ctx := context.Background()

	loadDone := make(chan error, 1)
	go func() { loadDone <- w.Load(ctx) }()
	<-liker.countsStarted

	clickDone := clickAsync(w)
	<-liker.started
	liker.release <- nil
	require.NoError(t, <-clickDone)

	close(liker.countsRelease)
	require.NoError(t, <-loadDone)

	assert.Equal(t, int64(4), w.Likes())
	assert.Equal(t, int64(1), w.MyLikes())
	assert.True(t, w.Stale(), "the click must keep the counts stale")

	liker.mu.Lock()
	liker.counts = Counts{Likes: 4, MyLikes: 1}
	liker.mu.Unlock()
	require.NoError(t, w.Refresh(ctx))
	<-liker.countsStarted
	assert.Equal(t, int64(4), w.Likes())
	assert.Equal(t, int64(1), w.MyLikes())
	assert.False(t, w.Stale())
}

func TestWidgetAgainstServer(t *testing.T) {
	svc := services.NewCounterService(repositories.NewMemoryCounterRepository())
	e := echo.New()
	e.Validator = validators.NewValidator()
	handlers.NewLikeHandler(svc).RegisterLikeRoutes(e.Group("/api"))
	srv := httptest.NewServer(e)
	defer srv.Close()

	client := NewClient(srv.URL, WithHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	w := NewWidget(client, "hello-world", "5.6.7.8", 0)
	ctx := context.Background()

	require.NoError(t, w.Refresh(ctx))
	assert.Equal(t, int64(0), w.Likes())

	for i := 0; i < DefaultCap; i++ {
		require.NoError(t, w.Click(ctx))
		require.NoError(t, w.Refresh(ctx))
	}
	assert.Equal(t, int64(DefaultCap), w.Likes())
	assert.Equal(t, int64(DefaultCap), w.MyLikes())
	assert.ErrorIs(t, w.Click(ctx), ErrCapReached)

	// the server enforces the same limit for a widget with no local cap
	uncapped := NewWidget(client, "hello-world", "5.6.7.8", 0, WithCap(0))
	require.NoError(t, uncapped.Load(ctx))
	assert.ErrorIs(t, uncapped.Click(ctx), ErrLimitReached)
	assert.Equal(t, int64(DefaultCap), uncapped.Likes())
}
