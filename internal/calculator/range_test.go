package calculator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloseRange_SkipsNonFinite(t *testing.T) {
	low, high, ok := CloseRange([]float64{math.NaN(), 12, math.Inf(1), 8, 10})
	assert.True(t, ok)
	assert.Equal(t, 8.0, low)
	assert.Equal(t, 12.0, high)
}

func TestCloseRange_NoFinitePrice(t *testing.T) {
	_, _, ok := CloseRange([]float64{math.NaN()})
	assert.False(t, ok)
	_, _, ok = CloseRange(nil)
	assert.False(t, ok)
}

func TestVariationPercent(t *testing.T) {
	assert.InDelta(t, 50.0, VariationPercent(100, 150), 1e-9)
	assert.Equal(t, 0.0, VariationPercent(0, 10))
	assert.Equal(t, 0.0, VariationPercent(-5, 10))
}

func TestVariationPercent_SaturatesOnOverflow(t *testing.T) {
	v := VariationPercent(1e-310, 1e300)
	assert.False(t, math.IsInf(v, 0))
	assert.Equal(t, math.MaxFloat64, v)
}
