// Package httpfetch provides the HTTP implementation of the "fetch"
// capability, with client-side rate limiting so adapters sharing an upstream
// cannot stampede it.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/everstacklabs/chassis/internal/adapters"
	"github.com/everstacklabs/chassis/internal/capability"
	"github.com/everstacklabs/chassis/internal/registry"
	"github.com/everstacklabs/chassis/internal/resolve"
)

// ModulePath is the canonical resolution path for this adapter.
const ModulePath = "chassis/adapters/httpfetch"

var configuredRPS float64 = 10 // set via Configure before resolution

func init() {
	resolve.Provide(ModulePath, func(ctx context.Context) (any, error) {
		return New(WithRateLimit(configuredRPS)), nil
	})
	adapters.Announce(registry.Metadata{
		Identity:     "fetch.http",
		Capabilities: []string{capability.Fetch},
		Version:      registry.Version{Major: 1, Minor: 1, Patch: 0},
		Compat: registry.CompatRange{
			Min: registry.Version{Major: 1},
			Max: registry.Version{Major: 1, Minor: 99},
		},
		Priority:   10,
		ModulePath: ModulePath,
	})
}

// Configure sets requests per second for instances created after this call.
func Configure(rps float64) { configuredRPS = rps }

// Fetcher performs rate-limited HTTP GETs.
type Fetcher struct {
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures the Fetcher.
type Option func(*Fetcher)

// WithRateLimit sets requests per second; rps <= 0 disables limiting.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.http.Timeout = d }
}

// New creates a Fetcher.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch performs an HTTP GET and returns the response body. Status codes of
// 400 and above are errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	slog.Debug("fetched", "url", url, "bytes", len(body))
	return body, nil
}

// Close lets the registry release idle connections on reset.
func (f *Fetcher) Close() error {
	f.http.CloseIdleConnections()
	return nil
}
