// Package quality classifies raw price observations and derives a health
// verdict from the result. Everything here is a pure function of its input.
package quality

import (
	"math"

	"PriceSentinel/internal/model"
)

// Flags is the set of defects found on a single observation.
type Flags struct {
	HasNaN        bool
	InvertedRange bool
	NonPositive   bool
	MissingDate   bool
}

// Any reports whether any price defect is set. MissingDate is not a price defect.
func (f Flags) Any() bool {
	return f.HasNaN || f.InvertedRange || f.NonPositive
}

// Finite reports whether v is a usable number.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Inspect computes the defect flags of one observation.
func Inspect(o model.Observation) Flags {
	hiOK, loOK := Finite(o.High), Finite(o.Low)
	return Flags{
		HasNaN:        !Finite(o.Open) || !hiOK || !loOK || !Finite(o.Close),
		InvertedRange: hiOK && loOK && o.High < o.Low,
		NonPositive:   (hiOK && o.High <= 0) || (loOK && o.Low <= 0),
		MissingDate:   !o.HasDate(),
	}
}

// IsValid is the combined predicate: no price defect, high >= low and both positive.
func IsValid(o model.Observation) bool {
	if Inspect(o).Any() {
		return false
	}
	return o.High >= o.Low && o.High > 0 && o.Low > 0
}

// IsFlat reports an observation whose four prices are finite and identical.
func IsFlat(o model.Observation) bool {
	if !Finite(o.Open) {
		return false
	}
	return o.Open == o.High && o.Open == o.Low && o.Open == o.Close
}
