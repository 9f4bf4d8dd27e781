package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PriceSentinel/internal/model"
)

func TestAssess_EmptyIsNoData(t *testing.T) {
	r := Assess(Classify(nil), 0, 0)
	assert.Equal(t, model.VerdictNoData, r.Verdict)
	require.Len(t, r.Issues, 1)
	assert.Contains(t, r.Issues[0], "no renderable data")
}

func TestAssess_AllDroppedKeepsPriceVerdict(t *testing.T) {
	d := model.Diagnostics{Total: 3, NaN: 3}
	r := Assess(d, 0, 3)
	assert.Equal(t, model.VerdictFair, r.Verdict)
	assert.Equal(t, []string{
		"no renderable data: all 3 points unusable",
		"3 points with missing or non-numeric prices",
	}, r.Issues)
}

func TestAssess_ValidButDatelessIsPerfectYetUnrenderable(t *testing.T) {
	d := model.Diagnostics{Total: 2, Valid: 2, MissingDate: 2, HasPriceRange: true, VariationPct: 5}
	r := Assess(d, 0, 2)
	assert.Equal(t, model.VerdictPerfect, r.Verdict)
	assert.Equal(t, []string{
		"no renderable data: all 2 points unusable",
		"2 points without a usable date",
	}, r.Issues)
}

func TestAssess_UnscoredLinesDoNotCountTowardPoor(t *testing.T) {
	d := model.Diagnostics{Total: 10, Valid: 8, NaN: 1, Inverted: 1, MissingDate: 1, HasPriceRange: true, VariationPct: 5}
	r := Assess(d, 9, 10)
	require.Len(t, r.Issues, 4)
	assert.Equal(t, model.VerdictFair, r.Verdict)

	d.NonPositive = 1
	r = Assess(d, 9, 10)
	require.Len(t, r.Issues, 5)
	assert.Equal(t, model.VerdictPoor, r.Verdict)
}

func TestAssess_Perfect(t *testing.T) {
	series := []model.Observation{
		obs("2024-01-01", 10, 12, 9, 11),
		obs("2024-01-02", 11, 13, 10, 12),
	}
	r := Assess(Classify(series), 2, 2)
	assert.Equal(t, model.VerdictPerfect, r.Verdict)
	assert.Empty(t, r.Issues)
}

func TestAssess_PerfectIgnoresFurtherConditions(t *testing.T) {
	d := model.Diagnostics{Total: 2, Valid: 2, HasPriceRange: true, VariationPct: 0.1}
	r := Assess(d, 2, 2)
	assert.Equal(t, model.VerdictPerfect, r.Verdict)
	require.Len(t, r.Issues, 1)
	assert.Contains(t, r.Issues[0], "0.10%")
}

func TestAssess_FairAndPoor(t *testing.T) {
	fair := model.Diagnostics{Total: 10, Valid: 8, NaN: 2, HasPriceRange: true, VariationPct: 5}
	r := Assess(fair, 10, 10)
	assert.Equal(t, model.VerdictFair, r.Verdict)
	assert.Equal(t, []string{"2 points with missing or non-numeric prices"}, r.Issues)

	poor := model.Diagnostics{Total: 10, Valid: 5, NaN: 2, Inverted: 1, NonPositive: 1, HasPriceRange: true, VariationPct: 5}
	r = Assess(poor, 9, 10)
	assert.Equal(t, model.VerdictPoor, r.Verdict)
	assert.Equal(t, []string{
		"2 points with missing or non-numeric prices",
		"1 points with high below low",
		"1 points with zero or negative high/low",
		"1 of 10 points dropped as unrepairable",
	}, r.Issues)
}

func TestAssess_IssueOrder(t *testing.T) {
	d := model.Diagnostics{
		Total: 10, NaN: 1, Inverted: 2, NonPositive: 3, MissingDate: 4, Flat: 5,
		HasPriceRange: true, VariationPct: 0.25,
	}
	r := Assess(d, 6, 10)
	require.Len(t, r.Issues, 7)
	assert.Contains(t, r.Issues[0], "1 points")
	assert.Contains(t, r.Issues[1], "2 points")
	assert.Contains(t, r.Issues[2], "3 points")
	assert.Contains(t, r.Issues[3], "4 points")
	assert.Contains(t, r.Issues[4], "5 points")
	assert.Contains(t, r.Issues[5], "0.25%")
	assert.Contains(t, r.Issues[6], "4 of 10")
}

func TestPolicy_Tunable(t *testing.T) {
	p := Policy{VariationWarnPct: 10, PoorIssueThreshold: 0}
	d := model.Diagnostics{Total: 4, Valid: 3, Flat: 1, HasPriceRange: true, VariationPct: 5}
	r := p.Assess(d, 4, 4)
	assert.Equal(t, model.VerdictPoor, r.Verdict)
	assert.Len(t, r.Issues, 2)
}
