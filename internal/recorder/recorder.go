package recorder

import "time"

// QualityRun is the telemetry of one pipeline run for one instrument.
type QualityRun struct {
	ID           string
	Timestamp    time.Time
	Symbol       string
	Source       string
	State        string
	Verdict      string
	Trend        string
	RawCount     int
	ValidCount   int
	NaNCount     int
	Inverted     int
	NonPositive  int
	MissingDate  int
	FlatCount    int
	FixedCount   int
	DroppedCount int
	Repaired     int
	VariationPct float64
	LastClose    float64
	FastEMA      float64
	SlowEMA      float64
	Issues       []string
}

// FetchFailure records a series that could not be fetched at all.
type FetchFailure struct {
	Symbol string
	Source string
	Error  string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(run *QualityRun) error
	RecordFetchFailure(evt *FetchFailure) error
	RecentRuns(symbol string, limit int) ([]QualityRun, error)
	Close() error
}
