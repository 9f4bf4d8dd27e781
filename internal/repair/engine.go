// Package repair turns a raw observation sequence into one where every
// retained point satisfies the OHLC invariants.
package repair

import (
	"math"

	"PriceSentinel/internal/model"
	"PriceSentinel/internal/quality"
)

const (
	// PriceFloor replaces non-positive lows.
	PriceFloor = 0.01

	highBuffer = 1.001
	lowBuffer  = 0.999
)

// FallbackPrice derives a stable placeholder close from the instrument id:
// the sum of its character codes modulo 90, plus 10.
func FallbackPrice(instrumentID string) float64 {
	sum := 0
	for _, r := range instrumentID {
		sum += int(r)
	}
	return float64(sum%90 + 10)
}

// Repair applies the ordered fix sequence to every observation and drops the
// points that still violate an invariant. The input slice is not modified.
// The result depends only on obs and instrumentID.
func Repair(obs []model.Observation, instrumentID string) model.RepairResult {
	res := model.RepairResult{
		Observations: make([]model.Observation, 0, len(obs)),
		Fixed:        make([]bool, 0, len(obs)),
		Stats:        model.RepairStats{Raw: len(obs)},
	}

	fallback := FallbackPrice(instrumentID)
	prevClose := math.NaN()
	for i := range obs {
		fixed, changed := repairPoint(obs, i, prevClose, fallback)
		prevClose = fixed.Close
		if changed {
			res.Stats.Fixed++
		}
		if !Usable(fixed) {
			res.Stats.Dropped++
			continue
		}
		res.Observations = append(res.Observations, fixed)
		res.Fixed = append(res.Fixed, changed)
	}
	res.Stats.Repaired = len(res.Observations)
	return res
}

// repairPoint runs the eight steps on obs[i]. prevClose is the repaired close
// of obs[i-1], or NaN at the first index.
func repairPoint(obs []model.Observation, i int, prevClose, fallback float64) (model.Observation, bool) {
	o := obs[i]
	changed := false

	// 1. close imputation
	if !quality.Finite(o.Close) {
		switch {
		case i > 0 && quality.Finite(prevClose):
			o.Close = prevClose
		case i+1 < len(obs) && quality.Finite(obs[i+1].Close):
			o.Close = obs[i+1].Close
		case quality.Finite(o.Open):
			o.Close = o.Open
		default:
			o.Close = fallback
		}
		changed = true
	}

	// 2-4. open, high, low imputation
	if !quality.Finite(o.Open) {
		o.Open = o.Close
		changed = true
	}
	if !quality.Finite(o.High) {
		o.High = math.Max(o.Open, o.Close)
		changed = true
	}
	if !quality.Finite(o.Low) {
		o.Low = math.Min(o.Open, o.Close)
		changed = true
	}

	// 5-6. body sufficiency
	if top := math.Max(o.Open, o.Close); o.High < top {
		o.High = top * highBuffer
		changed = true
	}
	if bottom := math.Min(o.Open, o.Close); o.Low > bottom {
		o.Low = bottom * lowBuffer
		changed = true
	}

	// 7. positivity
	if o.Low <= 0 {
		o.Low = PriceFloor
		if o.Open <= PriceFloor {
			o.Open = PriceFloor * 1.1
		}
		if o.Close <= PriceFloor {
			o.Close = PriceFloor * 1.2
		}
		if top := math.Max(o.Open, o.Close); o.High <= PriceFloor || o.High < top {
			o.High = top * 1.05
		}
		changed = true
	}

	// 8. range ordering
	if o.High < o.Low {
		o.High, o.Low = o.Low, o.High
		changed = true
	}

	return o, changed
}

// Usable reports whether an observation may be emitted: finite positive
// prices, a high/low envelope around the body, and a present date.
func Usable(o model.Observation) bool {
	for _, v := range []float64{o.Open, o.High, o.Low, o.Close} {
		if !quality.Finite(v) || v <= 0 {
			return false
		}
	}
	if o.High < o.Low {
		return false
	}
	if o.High < math.Max(o.Open, o.Close) || o.Low > math.Min(o.Open, o.Close) {
		return false
	}
	return o.HasDate()
}
