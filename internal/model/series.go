package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar layout used for observation dates.
const DateLayout = "2006-01-02"

// Observation represents one trading day. Price fields that could not be
// parsed as numbers are carried as NaN.
type Observation struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// Series is an ordered sequence of observations for one instrument, ascending by date.
type Series struct {
	Symbol       string
	Observations []Observation
	FetchedAt    time.Time
}

// Closes extracts the close prices in order.
func Closes(obs []Observation) []float64 {
	closes := make([]float64, len(obs))
	for i, o := range obs {
		closes[i] = o.Close
	}
	return closes
}

// HasDate reports whether the date is present and parseable.
func (o Observation) HasDate() bool {
	_, ok := ParseDate(o.Date)
	return ok
}

// ParseDate accepts a plain calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// rawObservation mirrors Observation with loosely typed price fields.
type rawObservation struct {
	Date   json.RawMessage `json:"date"`
	Open   json.RawMessage `json:"open"`
	High   json.RawMessage `json:"high"`
	Low    json.RawMessage `json:"low"`
	Close  json.RawMessage `json:"close"`
	Volume json.RawMessage `json:"volume"`
}

// UnmarshalJSON decodes upstream bars leniently: numbers and numeric strings
// are accepted, null or garbage becomes NaN so the defect is visible downstream.
func (o *Observation) UnmarshalJSON(data []byte) error {
	var raw rawObservation
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Date = decodeDate(raw.Date)
	o.Open = decodePrice(raw.Open)
	o.High = decodePrice(raw.High)
	o.Low = decodePrice(raw.Low)
	o.Close = decodePrice(raw.Close)
	o.Volume = decodePrice(raw.Volume)
	if math.IsNaN(o.Volume) {
		o.Volume = 0
	}
	return nil
}

func decodePrice(msg json.RawMessage) float64 {
	if len(msg) == 0 {
		return math.NaN()
	}
	var v interface{}
	if err := json.Unmarshal(msg, &v); err != nil {
		return math.NaN()
	}
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// decodeDate accepts a date string or a unix timestamp in seconds.
func decodeDate(msg json.RawMessage) string {
	if len(msg) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(msg, &v); err != nil {
		return ""
	}
	switch d := v.(type) {
	case string:
		return strings.TrimSpace(d)
	case float64:
		if d <= 0 {
			return ""
		}
		return time.Unix(int64(d), 0).UTC().Format(DateLayout)
	default:
		return ""
	}
}
