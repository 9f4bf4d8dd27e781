package calculator

import (
	"errors"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
// Each price is scaled before summing so prices near math.MaxFloat64 stay finite.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	n := float64(period)
	mean := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		mean += prices[i] / n
	}
	return mean, nil
}
