package collector

import (
	"context"
	"errors"

	"PriceSentinel/internal/model"
)

// ErrNoData is returned when a source answers but has no bars for the symbol.
var ErrNoData = errors.New("no data returned")

// Fetcher defines the interface for fetching raw daily observations.
// Implementations must not clean the data: defects are the pipeline's concern.
type Fetcher interface {
	FetchDailySeries(ctx context.Context, symbol string, days int) ([]model.Observation, error)
	Name() string
}
