// Package external talks to the third-party sites the dashboard enriches its
// data with: Wikipedia, Wikidata, Transfermarkt, NewsAPI and Mistral.
package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/matchload/internal/adapters/cache"
	"github.com/okian/matchload/pkg/metrics"
)

var (
	// ErrUpstream wraps failed upstream calls.
	ErrUpstream = errors.New("upstream failure")
	// ErrNotFound is returned when the upstream has no such entity.
	ErrNotFound = errors.New("not found")
	// ErrNoAPIKey is returned by clients that need a key when none is set.
	ErrNoAPIKey = errors.New("api key not configured")
)

// BrowserUserAgent is sent to sites that refuse non-browser clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const maxBody = 8 << 20

// Option configures a client.
type Option func(*base)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *base) {
		if c != nil {
			b.client = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *base) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(b *base) {
		if ua != "" {
			b.userAgent = ua
		}
	}
}

// WithBaseURL points the client at another host, for tests and mirrors.
func WithBaseURL(u string) Option {
	return func(b *base) {
		if u != "" {
			b.baseURL = u
		}
	}
}

// WithCacheTTL sets how long responses are reused. 0 disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(b *base) {
		if d >= 0 {
			b.ttl = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *base) {
		if now != nil {
			b.now = now
		}
	}
}

// base holds what every client shares.
type base struct {
	upstream  string
	client    *http.Client
	timeout   time.Duration
	userAgent string
	baseURL   string
	ttl       time.Duration
	now       func() time.Time
}

func newBase(upstream, baseURL string, ttl time.Duration, opts []Option) base {
	b := base{
		upstream:  upstream,
		client:    http.DefaultClient,
		timeout:   15 * time.Second,
		userAgent: "matchload/1.0",
		baseURL:   baseURL,
		ttl:       ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// newCache returns a response cache, or nil when caching is off.
func newCache[V any](b base) *cache.Cache[V] {
	if b.ttl == 0 {
		return nil
	}
	return cache.New[V](cache.WithName(b.upstream), cache.WithTTL(b.ttl), cache.WithMaxEntries(512))
}

// cached runs load through c unless c is nil.
func cached[V any](ctx context.Context, c *cache.Cache[V], key string, load func(context.Context) (V, error)) (V, error) {
	if c == nil {
		return load(ctx)
	}
	return c.GetOrLoad(ctx, key, load)
}

// get fetches url and returns the body of a 2xx response.
func (b base) get(ctx context.Context, url string, header http.Header) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordUpstream(b.upstream, float64(time.Since(start).Milliseconds()), err)
	}()

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.do(ctx, http.MethodGet, url, header, nil)
}

func (b base) do(ctx context.Context, method, url string, header http.Header, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", b.upstream, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", b.userAgent)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", b.upstream, ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: read body: %v", b.upstream, ErrUpstream, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", b.upstream, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%s: %w: status %d: %s", b.upstream, ErrUpstream, resp.StatusCode, abbreviate(raw))
	}
	return raw, nil
}

func abbreviate(b []byte) string {
	const n = 200
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
