package quality

import (
	"PriceSentinel/internal/calculator"
	"PriceSentinel/internal/model"
)

// Trend thresholds on the share of up days.
const (
	BullishShare = 0.6
	BearishShare = 0.4
)

// Classify scans a raw series with DefaultPolicy. An empty series yields a
// zero summary with HasPriceRange false, which callers must read as "no data".
func Classify(obs []model.Observation) model.Diagnostics {
	return DefaultPolicy.Classify(obs)
}

// Classify summarises the defects, price range and trend of a raw series.
// LowVariation is judged against p.VariationWarnPct.
func (p Policy) Classify(obs []model.Observation) model.Diagnostics {
	d := model.Diagnostics{Total: len(obs), Trend: model.TrendNeutral}
	if len(obs) == 0 {
		return d
	}

	finiteCloses := make([]float64, 0, len(obs))
	for _, o := range obs {
		f := Inspect(o)
		if f.HasNaN {
			d.NaN++
		}
		if f.InvertedRange {
			d.Inverted++
		}
		if f.NonPositive {
			d.NonPositive++
		}
		if f.MissingDate {
			d.MissingDate++
		}
		if IsValid(o) {
			d.Valid++
		}
		if IsFlat(o) {
			d.Flat++
		}
		if Finite(o.Close) {
			finiteCloses = append(finiteCloses, o.Close)
		}

		switch {
		case o.Close > o.Open:
			d.UpDays++
		case o.Close < o.Open:
			d.DownDays++
		default:
			d.FlatDays++
		}
	}

	d.FiniteCloses = len(finiteCloses)
	if low, high, ok := calculator.CloseRange(finiteCloses); ok {
		d.HasPriceRange = true
		d.MinClose = low
		d.MaxClose = high
		d.VariationPct = calculator.VariationPercent(low, high)
		d.LowVariation = d.VariationPct < p.VariationWarnPct
	}
	d.Trend = classifyTrend(d.UpDays, d.Total)
	return d
}

func classifyTrend(up, total int) model.Trend {
	if total == 0 {
		return model.TrendNeutral
	}
	share := float64(up) / float64(total)
	switch {
	case share > BullishShare:
		return model.TrendBullish
	case share < BearishShare:
		return model.TrendBearish
	default:
		return model.TrendNeutral
	}
}
