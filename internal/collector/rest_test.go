package collector

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorsIsNoData(err error) bool { return errors.Is(err, ErrNoData) }

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bars/daily", r.URL.Path)
		assert.Equal(t, "BTC-USD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"date":"2024-01-01","open":1,"high":2,"low":0.5,"close":1.5},
			{"date":"2024-01-02","open":"NaN?","high":2,"low":1,"close":null}
		]`))
	}))
	defer srv.Close()

	f := NewRESTFetcher(srv.URL, "secret", "")
	obs, err := f.FetchDailySeries(context.Background(), "BTC-USD", 5)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, 1.5, obs[0].Close)
	assert.True(t, math.IsNaN(obs[1].Open))
	assert.True(t, math.IsNaN(obs[1].Close))
}

func TestRESTFetcher_NotFoundIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewRESTFetcher(srv.URL, "", "").FetchDailySeries(context.Background(), "X", 5)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestFileFetcher(t *testing.T) {
	dir := t.TempDir()
	body := `[{"date":"2024-01-01","open":1,"high":2,"low":1,"close":2},
	          {"date":"2024-01-02","open":2,"high":3,"low":2,"close":3},
	          {"date":"2024-01-03","open":3,"high":4,"low":3,"close":4}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AAA.json"), []byte(body), 0o644))

	f := &FileFetcher{Dir: dir}
	obs, err := f.FetchDailySeries(context.Background(), "AAA", 2)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "2024-01-02", obs[0].Date)

	_, err = f.FetchDailySeries(context.Background(), "BBB", 2)
	assert.ErrorIs(t, err, ErrNoData)

	fixed := &FileFetcher{Path: filepath.Join(dir, "AAA.json")}
	obs, err = fixed.FetchDailySeries(context.Background(), "anything", 0)
	require.NoError(t, err)
	assert.Len(t, obs, 3)
}

func TestFileFetcher_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"date":1}`), 0o644))

	_, err := (&FileFetcher{Path: path}).FetchDailySeries(context.Background(), "X", 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
}
