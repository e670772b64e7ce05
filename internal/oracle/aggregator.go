package oracle

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrNoUsablePrice is returned when every source, including the fallback,
// failed to yield a parseable price. It is fatal for the epoch run.
var ErrNoUsablePrice = errors.New("oracle: no usable price from any source")

// Health carries one epoch's fetch telemetry. It is recomputed fresh on every
// run and never persisted.
type Health struct {
	SuccessCount     int     `json:"successCount"`
	FailureCount     int     `json:"failureCount"`
	AvgLatencyMs     float64 `json:"avgLatencyMs"`
	P95LatencyMs     float64 `json:"p95LatencyMs"`
	SignalEfficiency float64 `json:"signalEfficiency"`
}

// Consensus is the aggregation outcome for one epoch.
type Consensus struct {
	Price   float64
	Sources []string
	Health  Health
}

// Aggregator turns a set of partially-reliable sources into one consensus
// price. The median is used rather than the mean so a single manipulated or
// broken source cannot drag the truth value.
type Aggregator struct {
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewAggregator constructs an Aggregator over the given fetcher.
func NewAggregator(fetcher Fetcher, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger.With().Str("component", "oracle_aggregator").Logger(),
	}
}

// Consensus fetches every enabled primary source concurrently, applies the
// quorum fallback rule, and returns the median price with health telemetry.
func (a *Aggregator) Consensus(ctx context.Context, target *Target, policy FallbackPolicy) (Consensus, error) {
	defaultTimeout := policy.DefaultTimeout()

	primaries := make([]Source, 0, len(target.Sources))
	var fallback *Source
	for i := range target.Sources {
		src := target.Sources[i]
		if src.Fallback {
			if fallback == nil {
				fallback = &target.Sources[i]
			}
			continue
		}
		if src.IsEnabled() {
			primaries = append(primaries, src)
		}
	}

	results := make([]FetchResult, len(primaries))
	var wg sync.WaitGroup
	for i, src := range primaries {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i] = a.fetcher.Fetch(ctx, src, defaultTimeout)
		}(i, src)
	}
	wg.Wait()

	if countOK(results) < policy.Quorum() && fallback != nil && fallback.IsEnabled() {
		a.logger.Info().Str("source", fallback.Name).Int("quorum", policy.Quorum()).Msg("below quorum, trying fallback source")
		results = append(results, a.fetcher.Fetch(ctx, *fallback, defaultTimeout))
	}

	return Resolve(target.Symbol, results, a.logger)
}

// Resolve applies the aggregation policy over already-fetched results. It is
// a pure function of the result set, independent of transport.
func Resolve(symbol string, results []FetchResult, logger zerolog.Logger) (Consensus, error) {
	prices := make([]float64, 0, len(results))
	names := make([]string, 0, len(results))
	for _, r := range results {
		if r.OK() {
			prices = append(prices, r.Price)
			names = append(names, r.Source)
		}
	}

	health := computeHealth(results, prices)
	if len(prices) == 0 {
		return Consensus{Health: health}, ErrNoUsablePrice
	}

	price := median(prices)
	logger.Info().
		Str("symbol", symbol).
		Float64("median", price).
		Int("sources_ok", len(prices)).
		Int("sources_failed", health.FailureCount).
		Msg("oracle consensus established")

	return Consensus{Price: price, Sources: names, Health: health}, nil
}

func countOK(results []FetchResult) int {
	n := 0
	for _, r := range results {
		if r.OK() {
			n++
		}
	}
	return n
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// computeHealth derives fetch telemetry: latency covers every attempt, while
// signal efficiency reflects how tightly the successful prices agree.
func computeHealth(results []FetchResult, prices []float64) Health {
	h := Health{}
	latencies := make([]float64, 0, len(results))
	for _, r := range results {
		latencies = append(latencies, float64(r.Latency)/float64(time.Millisecond))
		if r.OK() {
			h.SuccessCount++
		} else {
			h.FailureCount++
		}
	}

	if len(latencies) > 0 {
		sum := 0.0
		for _, l := range latencies {
			sum += l
		}
		h.AvgLatencyMs = sum / float64(len(latencies))
		h.P95LatencyMs = percentile(latencies, 0.95)
	}

	h.SignalEfficiency = signalEfficiency(prices)
	return h
}

func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// signalEfficiency maps the coefficient of variation of the successful prices
// onto (0,1]: tight agreement scores near 1, wide dispersion decays toward 0.
// A degenerate mean of zero yields the neutral 0.5.
func signalEfficiency(prices []float64) float64 {
	if len(prices) == 0 {
		return 0.5
	}

	mean := 0.0
	for _, p := range prices {
		mean += p
	}
	mean /= float64(len(prices))
	if mean == 0 {
		return 0.5
	}

	variance := 0.0
	for _, p := range prices {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(prices))

	cv := math.Sqrt(variance) / math.Abs(mean)
	return 1 / (1 + 20*cv)
}
