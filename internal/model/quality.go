package model

// Trend is the up/down day classification of a series.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// Verdict is the qualitative health of a series.
type Verdict string

const (
	VerdictPerfect Verdict = "perfect"
	VerdictFair    Verdict = "fair"
	VerdictPoor    Verdict = "poor"
	VerdictNoData  Verdict = "no_data"
)

// Rank orders verdicts from best (0) to worst.
func (v Verdict) Rank() int {
	switch v {
	case VerdictPerfect:
		return 0
	case VerdictFair:
		return 1
	case VerdictPoor:
		return 2
	default:
		return 3
	}
}

// Diagnostics summarises the defects and price statistics of a raw series.
type Diagnostics struct {
	Total       int `json:"total"`
	NaN         int `json:"nan"`
	Inverted    int `json:"inverted"`
	NonPositive int `json:"non_positive"`
	MissingDate int `json:"missing_date"`
	Flat        int `json:"flat"` // identical open/high/low/close
	Valid       int `json:"valid"`

	FiniteCloses  int     `json:"finite_closes"`
	HasPriceRange bool    `json:"has_price_range"`
	MinClose      float64 `json:"min_close"`
	MaxClose      float64 `json:"max_close"`
	VariationPct  float64 `json:"variation_pct"`
	LowVariation  bool    `json:"low_variation"`

	UpDays   int   `json:"up_days"`
	DownDays int   `json:"down_days"`
	FlatDays int   `json:"flat_days"`
	Trend    Trend `json:"trend"`
}

// RepairStats is the telemetry of one repair pass.
type RepairStats struct {
	Raw      int `json:"raw"`
	Repaired int `json:"repaired"`
	Fixed    int `json:"fixed"` // points that needed at least one correction
	Dropped  int `json:"dropped"`
}

// RepairResult holds the retained observations and a per-point fixed flag
// aligned by index.
type RepairResult struct {
	Observations []Observation
	Fixed        []bool
	Stats        RepairStats
}

// Overlay holds EMA arrays index-aligned with the repaired series.
type Overlay struct {
	FastPeriod int
	SlowPeriod int
	Fast       []float64
	Slow       []float64
}

// HealthReport is the verdict and the ordered human-readable issue list.
type HealthReport struct {
	Verdict Verdict
	Issues  []string
}
