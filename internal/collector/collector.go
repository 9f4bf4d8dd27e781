package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"PriceSentinel/internal/metrics"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/pipeline"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series map[string][]model.Observation
	Err    error

	mu    sync.Mutex
	calls int
}

// Calls returns how many fetches were made.
func (m *MockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailySeries(_ context.Context, symbol string, days int) ([]model.Observation, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	obs, ok := m.Series[symbol]
	if !ok {
		return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoData)
	}
	if days > 0 && len(obs) > days {
		obs = obs[len(obs)-days:]
	}
	return obs, nil
}

// Snapshot is one fetched and processed series.
type Snapshot struct {
	Symbol    string
	Source    string
	FetchedAt time.Time
	Result    *pipeline.Result
}

// Collector orchestrates data fetching and the quality pipeline.
type Collector struct {
	Fetcher Fetcher
	Days    int
	Options pipeline.Options
	Metrics *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, days int, opts pipeline.Options, m *metrics.Metrics) *Collector {
	return &Collector{Fetcher: fetcher, Days: days, Options: opts, Metrics: m}
}

// Collect fetches the raw series for symbol and runs it through the pipeline.
// Only transport failures are errors; an unusable series is a Snapshot whose
// Result is in the no_data state.
func (c *Collector) Collect(ctx context.Context, symbol string) (*Snapshot, error) {
	start := time.Now()
	obs, err := c.Fetcher.FetchDailySeries(ctx, symbol, c.Days)
	if err != nil {
		c.Metrics.ObserveFetchError(symbol, c.Fetcher.Name())
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}

	series := model.Series{Symbol: symbol, Observations: obs, FetchedAt: time.Now()}
	res := pipeline.Run(series, c.Options)

	c.Metrics.ObserveRun(symbol, string(res.State), res.Diagnostics, res.Repair.Stats, res.Health.Verdict, time.Since(start))

	stats := res.Repair.Stats
	evt := log.Info()
	if res.State != pipeline.StateRenderable {
		evt = log.Warn()
	}
	evt.Str("symbol", symbol).
		Str("source", c.Fetcher.Name()).
		Str("state", string(res.State)).
		Str("verdict", string(res.Health.Verdict)).
		Int("raw", stats.Raw).
		Int("fixed", stats.Fixed).
		Int("dropped", stats.Dropped).
		Msg("series processed")

	return &Snapshot{
		Symbol:    symbol,
		Source:    c.Fetcher.Name(),
		FetchedAt: series.FetchedAt,
		Result:    res,
	}, nil
}
