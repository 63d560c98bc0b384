package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const (
	defaultTimeout = 2 * time.Second
	indexPath      = "/simple/"
)

// Error definitions for the probe package.
var (
	ErrNoServer = errors.New("no package server candidate responded")
)

// Prober resolves the package server address by probing candidate hosts.
// Each candidate has its own circuit breaker, so a long-lived process
// stops probing hosts that keep failing.
type Prober struct {
	client   *http.Client
	breakers map[string]*gobreaker.CircuitBreaker
	mu       sync.Mutex
}

// NewProber creates a prober with the given per-request timeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Prober{
		client:   &http.Client{Timeout: timeout},
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Resolve returns the first candidate whose package index answers 200 OK.
// Candidates are host[:port] addresses; they are tried in order.
func (p *Prober) Resolve(ctx context.Context, candidates []string) (string, error) {
	var errs []error

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		_, err := p.breaker(candidate).Execute(func() (any, error) {
			return nil, p.check(ctx, candidate)
		})
		if err == nil {
			slog.Info("Package server resolved", "server", candidate)
			return candidate, nil
		}

		slog.Debug("Package server candidate unavailable", "server", candidate, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", candidate, err))
	}

	if len(errs) == 0 {
		return "", ErrNoServer
	}

	return "", fmt.Errorf("%w: %w", ErrNoServer, errors.Join(errs...))
}

// IndexURL returns the package index URL for a candidate address.
func IndexURL(candidate string) string {
	if strings.Contains(candidate, "://") {
		return strings.TrimRight(candidate, "/") + indexPath
	}

	return "http://" + strings.TrimRight(candidate, "/") + indexPath
}

func (p *Prober) check(ctx context.Context, candidate string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, IndexURL(candidate), http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return nil
}

func (p *Prober) breaker(candidate string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cb, ok := p.breakers[candidate]; ok {
		return cb
	}

	cb := newCircuitBreaker(candidate)
	p.breakers[candidate] = cb
	return cb
}

// newCircuitBreaker returns a gobreaker configured to trip after 3 consecutive
// failures and reset after 30 seconds in the open state.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// Cancellation says nothing about the candidate's health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}
