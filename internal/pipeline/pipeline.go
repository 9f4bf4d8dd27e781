// Package pipeline chains classification, repair, smoothing and health
// reporting for one instrument's series.
package pipeline

import (
	"fmt"

	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/quality"
	"PriceSentinel/internal/repair"
)

// State is the rendering decision for a processed series.
type State string

const (
	StateRenderable State = "renderable"
	StateDegraded   State = "degraded" // points were dropped, chart still drawable
	StateNoData     State = "no_data"
)

// Default overlay periods.
const (
	DefaultFastPeriod = 20
	DefaultSlowPeriod = 50
)

// Options configures a run. Zero values fall back to the defaults.
type Options struct {
	FastPeriod int
	SlowPeriod int
	Policy     *quality.Policy
}

func (o Options) withDefaults() Options {
	if o.FastPeriod <= 0 {
		o.FastPeriod = DefaultFastPeriod
	}
	if o.SlowPeriod <= 0 {
		o.SlowPeriod = DefaultSlowPeriod
	}
	if o.Policy == nil {
		p := quality.DefaultPolicy
		o.Policy = &p
	}
	return o
}

// Result is everything the renderer needs, plus pre-repair telemetry.
type Result struct {
	Symbol      string
	Diagnostics model.Diagnostics // pre-repair
	Repair      model.RepairResult
	Overlay     model.Overlay
	Health      model.HealthReport
	State       State
}

// Renderable reports whether the repaired series has at least one point.
func (r *Result) Renderable() bool {
	return r.State != StateNoData
}

// Run processes a raw series. It performs no I/O and shares no state, so
// concurrent calls on different series need no coordination.
func Run(s model.Series, opts Options) *Result {
	opts = opts.withDefaults()

	res := &Result{Symbol: s.Symbol}
	res.Diagnostics = opts.Policy.Classify(s.Observations)
	res.Repair = repair.Repair(s.Observations, s.Symbol)

	closes := model.Closes(res.Repair.Observations)
	res.Overlay = model.Overlay{
		FastPeriod: opts.FastPeriod,
		SlowPeriod: opts.SlowPeriod,
		Fast:       mustEMA(closes, opts.FastPeriod),
		Slow:       mustEMA(closes, opts.SlowPeriod),
	}

	stats := res.Repair.Stats
	res.Health = opts.Policy.Assess(res.Diagnostics, stats.Repaired, stats.Raw)

	switch {
	case stats.Repaired == 0:
		res.State = StateNoData
	case stats.Dropped > 0:
		res.State = StateDegraded
	default:
		res.State = StateRenderable
	}
	return res
}

// mustEMA only fails on a non-positive period, which withDefaults rules out.
func mustEMA(closes []float64, period int) []float64 {
	ema, err := calculator.CalculateEMA(closes, period)
	if err != nil {
		panic(fmt.Sprintf("ema period %d: %v", period, err))
	}
	return ema
}
