package oracle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// FetchResult records one source attempt. A failed attempt carries Err and a
// zero price; both outcomes carry the observed latency.
type FetchResult struct {
	Source  string
	Price   float64
	Weight  float64
	Latency time.Duration
	Err     error
}

// OK reports whether the attempt produced a usable price.
func (r FetchResult) OK() bool {
	return r.Err == nil
}

// Fetcher retrieves one price reading from a configured source.
type Fetcher interface {
	Fetch(ctx context.Context, src Source, defaultTimeout time.Duration) FetchResult
}

// HTTPFetcher performs ticker requests over plain HTTP GET. Each source gets
// its own circuit breaker so a flapping feed stops consuming its timeout
// budget after repeated failures.
type HTTPFetcher struct {
	client   *http.Client
	logger   zerolog.Logger
	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewHTTPFetcher constructs the HTTP source fetcher.
func NewHTTPFetcher(logger zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:   &http.Client{},
		logger:   logger.With().Str("component", "oracle_fetcher").Logger(),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// Fetch requests the source URL, parses its payload, and returns the result.
// Failures are returned, never raised: the aggregator decides what a failure
// means.
func (f *HTTPFetcher) Fetch(ctx context.Context, src Source, defaultTimeout time.Duration) FetchResult {
	timeout := src.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	start := time.Now()
	value, err := f.breaker(src.Name).Execute(func() (any, error) {
		return f.request(ctx, src, timeout)
	})
	result := FetchResult{
		Source:  src.Name,
		Weight:  src.Weight,
		Latency: time.Since(start),
	}
	if err != nil {
		result.Err = err
		f.logger.Warn().Err(err).Str("source", src.Name).Msg("source fetch failed")
		return result
	}

	result.Price = value.(float64)
	return result
}

func (f *HTTPFetcher) request(ctx context.Context, src Source, timeout time.Duration) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%s returned status %d", src.Name, resp.StatusCode)
	}

	return ParsePrice(src.Name, payload)
}

func (f *HTTPFetcher) breaker(name string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := f.breakers[name]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).Msg("source breaker state changed")
		},
	})
	f.breakers[name] = cb
	return cb
}
