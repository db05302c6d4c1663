// Package likeclient talks to the counter API from Go and provides the
// optimistic like button state used by the site's widget.
package likeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrLimitReached is returned when the server refuses a like with 403.
var ErrLimitReached = errors.New("likeclient: like limit reached")

// APIError is any other non-2xx answer from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("likeclient: %d %s", e.StatusCode, e.Message)
}

// Like mirrors the like record returned by POST /api/like
type Like struct {
	ID        string    `json:"id"`
	UserIP    string    `json:"userIp"`
	PostSlug  string    `json:"postSlug"`
	CreatedAt time.Time `json:"createdAt"`
}

// Counts is the answer of GET /api/like
type Counts struct {
	Likes   int64 `json:"likes"`
	MyLikes int64 `json:"myLikes"`
}

// Views is the answer of both views endpoints
type Views struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}

// Client calls the counter API rooted at baseURL
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Client for the API at baseURL, e.g. "https://example.com"
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Like records a like on slug. An empty ip lets the server use the request address.
func (c *Client) Like(ctx context.Context, slug, ip string) (*Like, error) {
	body := map[string]string{"slug": slug}
	if ip != "" {
		body["ip"] = ip
	}
	var out struct {
		Like *Like `json:"like"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/like", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Like, nil
}

// Counts reads the like count of slug and the likes left by ip
func (c *Client) Counts(ctx context.Context, slug, ip string) (Counts, error) {
	q := url.Values{"slug": {slug}}
	if ip != "" {
		q.Set("ip", ip)
	}
	var out Counts
	err := c.do(ctx, http.MethodGet, "/api/like", q, nil, &out)
	return out, err
}

// RecordView counts a view of slug
func (c *Client) RecordView(ctx context.Context, slug string) (Views, error) {
	var out Views
	err := c.do(ctx, http.MethodPut, "/api/views", nil, map[string]string{"slug": slug}, &out)
	return out, err
}

// Views reads the counters of slug without counting a view
func (c *Client) Views(ctx context.Context, slug string) (Views, error) {
	var out Views
	err := c.do(ctx, http.MethodGet, "/api/views", url.Values{"slug": {slug}}, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("likeclient: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("likeclient: build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("likeclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return ErrLimitReached
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &APIError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("likeclient: decode %s %s: %w", method, path, err)
	}
	return nil
}
