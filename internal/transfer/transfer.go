package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultRetryDelay = 2 * time.Second
	defaultMaxRetries = 3
	defaultTimeout    = 10 * time.Minute
	partSuffix        = ".part"
)

// Error definitions for the transfer package.
var (
	ErrUnsupportedScheme = errors.New("no transferer registered for url scheme")
)

// Transferer downloads a single URL to a destination path.
// Implementations must not leave a file at dest unless the transfer completed.
type Transferer interface {
	Fetch(ctx context.Context, rawURL, dest string) error
}

// Options configures retry behavior shared by transferers.
type Options struct {
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 1 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = defaultRetryDelay
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}

	return o
}

// StatusError is returned when a server answers with an unexpected status code.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 408 || e.StatusCode == 429
}

// Registry dispatches transfers by URL scheme.
type Registry struct {
	transferers map[string]Transferer
	mu          sync.RWMutex
}

// NewRegistry creates an empty transfer registry.
func NewRegistry() *Registry {
	return &Registry{
		transferers: make(map[string]Transferer),
	}
}

// NewDefaultRegistry returns a registry serving http, https and file URLs.
func NewDefaultRegistry(opts Options) *Registry {
	r := NewRegistry()

	h := NewHTTPTransferer(opts)
	r.Register("http", h)
	r.Register("https", h)
	r.Register("file", NewFileTransferer())

	return r
}

// Register associates a transferer with a URL scheme.
func (r *Registry) Register(scheme string, t Transferer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transferers[strings.ToLower(scheme)] = t
}

// Get returns the transferer registered for scheme.
func (r *Registry) Get(scheme string) (Transferer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.transferers[strings.ToLower(scheme)]
	return t, ok
}

// Fetch downloads rawURL to dest using the transferer for its scheme.
func (r *Registry) Fetch(ctx context.Context, rawURL, dest string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	t, ok := r.Get(u.Scheme)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	return t.Fetch(ctx, rawURL, dest)
}
