package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"PriceSentinel/internal/model"
)

// GuardedFetcher throttles an upstream Fetcher and stops calling it while it
// keeps failing.
type GuardedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuardedFetcher wraps next with a token bucket of ratePerSecond/burst and
// a breaker that opens after three consecutive failures. A non-positive rate
// disables throttling.
func NewGuardedFetcher(next Fetcher, ratePerSecond float64, burst int) *GuardedFetcher {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	st := gobreaker.Settings{Name: next.Name()}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	st.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrNoData) || errors.Is(err, context.Canceled)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("source", name).Str("from", from.String()).Str("to", to.String()).Msg("fetch breaker state change")
	}

	return &GuardedFetcher{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
		breaker: gobreaker.NewCircuitBreaker(st),
	}
}

func (g *GuardedFetcher) Name() string { return g.next.Name() }

// State exposes the breaker state for status reporting.
func (g *GuardedFetcher) State() gobreaker.State { return g.breaker.State() }

func (g *GuardedFetcher) FetchDailySeries(ctx context.Context, symbol string, days int) ([]model.Observation, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.FetchDailySeries(ctx, symbol, days)
	})
	if err != nil {
		return nil, err
	}
	return out.([]model.Observation), nil
}
