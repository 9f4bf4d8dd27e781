package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_RunsRoundTrip(t *testing.T) {
	r := openTemp(t)
	base := time.Date(2024, 5, 1, 22, 30, 0, 0, time.UTC)

	for i, verdict := range []string{"perfect", "fair", "poor"} {
		run := &QualityRun{
			Timestamp:    base.Add(time.Duration(i) * time.Hour),
			Symbol:       "AAA",
			Source:       "mock",
			State:        "renderable",
			Verdict:      verdict,
			RawCount:     10,
			DroppedCount: i,
			VariationPct: 3.5,
			Issues:       []string{"first issue", "second issue"},
		}
		require.NoError(t, r.RecordRun(run))
		assert.NotEmpty(t, run.ID)
	}
	require.NoError(t, r.RecordRun(&QualityRun{Symbol: "BBB", Verdict: "no_data"}))

	runs, err := r.RecentRuns("AAA", 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "poor", runs[0].Verdict)
	assert.Equal(t, "fair", runs[1].Verdict)
	assert.Equal(t, 2, runs[0].DroppedCount)
	assert.Equal(t, []string{"first issue", "second issue"}, runs[0].Issues)
	assert.True(t, runs[0].Timestamp.Equal(base.Add(2*time.Hour)))

	runs, err = r.RecentRuns("BBB", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].Issues)
	assert.False(t, runs[0].Timestamp.IsZero())
}

func TestSQLiteRecorder_FetchFailure(t *testing.T) {
	r := openTemp(t)
	require.NoError(t, r.RecordFetchFailure(&FetchFailure{Symbol: "AAA", Source: "yahoo", Error: "timeout"}))

	var n int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM fetch_failures WHERE symbol = 'AAA'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordRun(&QualityRun{}))
	runs, err := rec.RecentRuns("AAA", 5)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.NoError(t, rec.Close())
}
