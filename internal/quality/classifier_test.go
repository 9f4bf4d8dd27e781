package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSentinel/internal/model"
)

var nan = math.NaN()

func obs(date string, o, h, l, c float64) model.Observation {
	return model.Observation{Date: date, Open: o, High: h, Low: l, Close: c}
}

func TestClassify_Empty(t *testing.T) {
	d := Classify(nil)
	assert.Equal(t, model.Diagnostics{Trend: model.TrendNeutral}, d)
	assert.False(t, d.HasPriceRange)
}

func TestClassify_DefectCounts(t *testing.T) {
	series := []model.Observation{
		obs("2024-01-01", 10, 12, 9, 11),  // valid, up
		obs("2024-01-02", nan, 12, 9, 11), // NaN
		obs("2024-01-03", 5, 3, 8, 4),     // inverted, down
		obs("2024-01-04", 5, 6, -1, 5),    // non-positive low
		obs("", 10, 10, 10, 10),           // flat, missing date, still valid
		obs("2024-01-06", 1, nan, -2, 2),  // NaN and non-positive
	}
	d := Classify(series)

	assert.Equal(t, 6, d.Total)
	assert.Equal(t, 2, d.NaN)
	assert.Equal(t, 1, d.Inverted)
	assert.Equal(t, 2, d.NonPositive)
	assert.Equal(t, 1, d.MissingDate)
	assert.Equal(t, 1, d.Flat)
	assert.Equal(t, 2, d.Valid)
	assert.Equal(t, 6, d.FiniteCloses)
}

func TestClassify_InvertedRangeNeedsBothFinite(t *testing.T) {
	d := Classify([]model.Observation{obs("2024-01-01", 5, nan, 8, 4)})
	assert.Equal(t, 0, d.Inverted)
	assert.Equal(t, 1, d.NaN)
	assert.Equal(t, 0, d.Valid)
}

func TestClassify_Variation(t *testing.T) {
	d := Classify([]model.Observation{
		obs("2024-01-01", 100, 101, 99, 100),
		obs("2024-01-02", 100, 121, 99, 120),
		obs("2024-01-03", 100, 101, 99, nan),
	})
	assert.True(t, d.HasPriceRange)
	assert.Equal(t, 100.0, d.MinClose)
	assert.Equal(t, 120.0, d.MaxClose)
	assert.InDelta(t, 20.0, d.VariationPct, 1e-9)
	assert.False(t, d.LowVariation)
}

func TestClassify_LowVariationWarning(t *testing.T) {
	d := Classify([]model.Observation{
		obs("2024-01-01", 100, 101, 99, 100),
		obs("2024-01-02", 100, 101, 99, 100.2),
	})
	assert.InDelta(t, 0.2, d.VariationPct, 1e-9)
	assert.True(t, d.LowVariation)
}

func TestClassify_NoFiniteCloseHasZeroVariation(t *testing.T) {
	d := Classify([]model.Observation{obs("2024-01-01", 1, 2, 1, nan)})
	assert.False(t, d.HasPriceRange)
	assert.Equal(t, 0.0, d.VariationPct)
	assert.False(t, d.LowVariation)
}

func TestClassify_Trend(t *testing.T) {
	up := obs("2024-01-01", 10, 12, 9, 11)
	down := obs("2024-01-01", 11, 12, 9, 10)
	flat := obs("2024-01-01", 10, 12, 9, 10)

	tests := []struct {
		name   string
		series []model.Observation
		want   model.Trend
	}{
		{"all up", []model.Observation{up, up, up}, model.TrendBullish},
		{"all down", []model.Observation{down, down}, model.TrendBearish},
		{"exactly 60 percent up", []model.Observation{up, up, up, down, flat}, model.TrendNeutral},
		{"exactly 40 percent up", []model.Observation{up, up, down, down, flat}, model.TrendNeutral},
		{"mostly flat", []model.Observation{flat, flat, flat, up}, model.TrendBearish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.series).Trend)
		})
	}

	d := Classify([]model.Observation{up, down, flat, obs("2024-01-01", nan, 1, 1, 1)})
	assert.Equal(t, 1, d.UpDays)
	assert.Equal(t, 1, d.DownDays)
	assert.Equal(t, 2, d.FlatDays)
}

func TestInspect(t *testing.T) {
	f := Inspect(obs("2024-01-01", 1, math.Inf(1), 0, 1))
	assert.True(t, f.HasNaN)
	assert.False(t, f.InvertedRange)
	assert.True(t, f.NonPositive)
	assert.False(t, f.MissingDate)

	f = Inspect(obs("01/02/2024", 1, 2, 1, 1))
	assert.True(t, f.MissingDate)
	assert.False(t, f.Any())
}

func TestPolicyClassify_UsesPolicyThreshold(t *testing.T) {
	series := []model.Observation{
		obs("2024-01-01", 100, 101, 99, 100),
		obs("2024-01-02", 100, 101, 99, 100.8),
	}
	assert.False(t, Classify(series).LowVariation)
	assert.True(t, Policy{VariationWarnPct: 1}.Classify(series).LowVariation)
}

func TestClassify_ExtremeRangeStaysFinite(t *testing.T) {
	d := Classify([]model.Observation{
		obs("2024-01-01", 1e-310, 1e-310, 1e-310, 1e-310),
		obs("2024-01-02", 1e300, 1e300, 1e300, 1e300),
	})
	require.True(t, d.HasPriceRange)
	assert.False(t, math.IsInf(d.VariationPct, 0))
	assert.Equal(t, math.MaxFloat64, d.VariationPct)
}
