package calculator

import "errors"

// CalculateEMA returns the exponential moving average of prices, one value
// per input price.
//
// A series shorter than period yields the first price everywhere. Otherwise
// the value at period-1 is seeded with the SMA of the first period prices and
// later values follow EMA = (price - prev) * k + prev with k = 2/(period+1).
// Indices before the seed carry the raw price.
func CalculateEMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out, nil
	}
	if len(prices) < period {
		for i := range out {
			out[i] = prices[0]
		}
		return out, nil
	}

	seed, err := CalculateSMA(prices[:period], period)
	if err != nil {
		return nil, err
	}
	copy(out[:period-1], prices[:period-1])
	out[period-1] = seed

	k := 2.0 / float64(period+1)
	prev := seed
	for i := period; i < len(prices); i++ {
		prev = (prices[i]-prev)*k + prev
		out[i] = prev
	}
	return out, nil
}
