package quality

import (
	"fmt"

	"PriceSentinel/internal/model"
)

// Policy holds the tunable thresholds of the health verdict.
type Policy struct {
	// VariationWarnPct flags a chart whose close range is narrower than this.
	VariationWarnPct float64
	// PoorIssueThreshold is the issue count above which the verdict is poor.
	PoorIssueThreshold int
}

// DefaultPolicy is used by Assess.
var DefaultPolicy = Policy{
	VariationWarnPct:   0.5,
	PoorIssueThreshold: 2,
}

// Assess builds a health report with DefaultPolicy.
func Assess(d model.Diagnostics, repairedCount, rawCount int) model.HealthReport {
	return DefaultPolicy.Assess(d, repairedCount, rawCount)
}

// Assess derives the verdict and issue list from the pre-repair summary and
// the repair counts. The verdict is informational; rendering is gated only
// on repairedCount > 0, so a series whose points were all dropped keeps its
// price verdict and carries a "no renderable data" issue instead.
//
// Only price defects, flat points and low variation count toward
// PoorIssueThreshold. Missing dates, dropped points and the "no renderable
// data" line are reported without being scored.
func (p Policy) Assess(d model.Diagnostics, repairedCount, rawCount int) model.HealthReport {
	issues, scored := p.issues(d, repairedCount, rawCount)

	var verdict model.Verdict
	switch {
	case rawCount == 0:
		verdict = model.VerdictNoData
	case d.Valid == rawCount:
		verdict = model.VerdictPerfect
	case scored > p.PoorIssueThreshold:
		verdict = model.VerdictPoor
	default:
		verdict = model.VerdictFair
	}
	return model.HealthReport{Verdict: verdict, Issues: issues}
}

// issues returns the ordered issue lines and how many of them are scored.
func (p Policy) issues(d model.Diagnostics, repairedCount, rawCount int) ([]string, int) {
	var issues []string
	informational := 0
	if rawCount == 0 {
		return append(issues, "no renderable data: series is empty"), 0
	}
	if repairedCount == 0 {
		issues = append(issues, fmt.Sprintf("no renderable data: all %d points unusable", rawCount))
		informational++
	}
	if d.NaN > 0 {
		issues = append(issues, fmt.Sprintf("%d points with missing or non-numeric prices", d.NaN))
	}
	if d.Inverted > 0 {
		issues = append(issues, fmt.Sprintf("%d points with high below low", d.Inverted))
	}
	if d.NonPositive > 0 {
		issues = append(issues, fmt.Sprintf("%d points with zero or negative high/low", d.NonPositive))
	}
	if d.MissingDate > 0 {
		issues = append(issues, fmt.Sprintf("%d points without a usable date", d.MissingDate))
		informational++
	}
	if d.Flat > 0 {
		issues = append(issues, fmt.Sprintf("%d points with identical open/high/low/close", d.Flat))
	}
	if d.HasPriceRange && d.VariationPct < p.VariationWarnPct {
		issues = append(issues, fmt.Sprintf("price variation %.2f%% below %.2f%%, chart will look flat", d.VariationPct, p.VariationWarnPct))
	}
	if dropped := rawCount - repairedCount; dropped > 0 && repairedCount > 0 {
		issues = append(issues, fmt.Sprintf("%d of %d points dropped as unrepairable", dropped, rawCount))
		informational++
	}
	return issues, len(issues) - informational
}
