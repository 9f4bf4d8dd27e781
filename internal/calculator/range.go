package calculator

import (
	"math"
)

// CloseRange returns the lowest and highest finite price. ok is false when
// no price is finite.
func CloseRange(prices []float64) (low, high float64, ok bool) {
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		ok = true
		if p < low {
			low = p
		}
		if p > high {
			high = p
		}
	}
	if !ok {
		return 0, 0, false
	}
	return low, high, true
}

// VariationPercent is (high-low)/low*100, or 0 when low is not positive.
// A ratio too large to represent saturates at math.MaxFloat64.
func VariationPercent(low, high float64) float64 {
	if low <= 0 {
		return 0
	}
	v := (high - low) / low * 100
	if math.IsInf(v, 1) || math.IsNaN(v) {
		return math.MaxFloat64
	}
	return v
}
