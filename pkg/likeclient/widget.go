package likeclient

import (
	"context"
	"errors"
	"sync"
)

// DefaultCap is how many likes one visitor may give a post from the widget
const DefaultCap = 5

var (
	// ErrBusy is returned by Click while a previous like is still in flight.
	ErrBusy = errors.New("likeclient: like already in flight")
	// ErrCapReached is returned by Click once the visitor's likes reach the cap.
	ErrCapReached = errors.New("likeclient: like cap reached")
)

// Liker is the part of Client the widget needs
type Liker interface {
	Like(ctx context.Context, slug, ip string) (*Like, error)
	Counts(ctx context.Context, slug, ip string) (Counts, error)
}

// Widget is the like button of one post for one visitor.
//
// A click bumps the displayed counts right away and sends the like. While the
// request is out further clicks are refused. On success the counts are marked
// stale so the next Refresh reads them from the server; on failure they go back
// to exactly what they were before the click.
type Widget struct {
	client Liker
	slug   string
	ip     string
	cap    int64

	mu      sync.Mutex
	likes   int64
	myLikes int64
	pending bool
	stale   bool
	// gen changes on every click so loads started earlier can tell their result is old
	gen uint64
}

// WidgetOption configures a Widget
type WidgetOption func(*Widget)

// WithCap sets the per-visitor cap. Zero or less disables it.
func WithCap(n int) WidgetOption {
	return func(w *Widget) {
		w.cap = int64(n)
	}
}

// WithMyLikes seeds the visitor's own like count, e.g. from server-rendered data
func WithMyLikes(n int64) WidgetOption {
	return func(w *Widget) {
		w.myLikes = n
	}
}

// NewWidget creates a widget showing initialLikes until the first Refresh
func NewWidget(client Liker, slug, ip string, initialLikes int64, opts ...WidgetOption) *Widget {
	w := &Widget{
		client: client,
		slug:   slug,
		ip:     ip,
		cap:    DefaultCap,
		likes:  initialLikes,
		stale:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Likes is the displayed like count
func (w *Widget) Likes() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.likes
}

// MyLikes is the displayed count of the visitor's own likes
func (w *Widget) MyLikes() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.myLikes
}

// Pending reports whether a like request is in flight; the button is disabled meanwhile
func (w *Widget) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Stale reports whether the displayed counts need a Refresh
func (w *Widget) Stale() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stale
}

// Disabled reports whether a click would currently be ignored
func (w *Widget) Disabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending || w.capped()
}

// Click likes the post optimistically. It returns ErrBusy or ErrCapReached
// without side effects, or the error of the like request after rolling back.
func (w *Widget) Click(ctx context.Context) error {
	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.capped() {
		w.mu.Unlock()
		return ErrCapReached
	}
	prevLikes, prevMine := w.likes, w.myLikes
	w.likes++
	w.myLikes++
	w.pending = true
	w.gen++
	w.mu.Unlock()

	_, err := w.client.Like(ctx, w.slug, w.ip)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = false
	if err != nil {
		w.likes, w.myLikes = prevLikes, prevMine
		return err
	}
	w.stale = true
	return nil
}

// Refresh reloads the counts from the server if they are stale
func (w *Widget) Refresh(ctx context.Context) error {
	if !w.Stale() {
		return nil
	}
	return w.Load(ctx)
}

// Load reads the counts from the server unconditionally.
// A result is dropped if a click was made after the read started or is still in flight.
func (w *Widget) Load(ctx context.Context) error {
	w.mu.Lock()
	gen := w.gen
	w.mu.Unlock()

	counts, err := w.client.Counts(ctx, w.slug, w.ip)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending || w.gen != gen {
		return nil
	}
	w.likes = counts.Likes
	w.myLikes = counts.MyLikes
	w.stale = false
	return nil
}

func (w *Widget) capped() bool {
	return w.cap > 0 && w.myLikes >= w.cap
}
