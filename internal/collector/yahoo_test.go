package collector

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chartBody = `{"chart":{"result":[{
	"timestamp":[1704067200,1704153600,1704240000,1704326400],
	"indicators":{"quote":[{
		"open":  [10, null, null, 12],
		"high":  [12, 13,   null, 13],
		"low":   [9,  10,   null, 11],
		"close": [11, null, null, 12.5],
		"volume":[100, 200, null, null]
	}]}
}],"error":null}}`

func TestYahooFetcher_KeepsDefectsAsNaN(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	obs, err := f.FetchDailySeries(context.Background(), "SPX500", 30)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/^GSPC?interval=1d&range=1mo", gotPath)

	// the all-null holiday row is skipped, partial rows are kept
	require.Len(t, obs, 3)
	assert.Equal(t, "2024-01-01", obs[0].Date)
	assert.Equal(t, 100.0, obs[0].Volume)
	assert.Equal(t, "2024-01-02", obs[1].Date)
	assert.True(t, math.IsNaN(obs[1].Open))
	assert.True(t, math.IsNaN(obs[1].Close))
	assert.Equal(t, 13.0, obs[1].High)
	assert.Equal(t, "2024-01-04", obs[2].Date)
	assert.Zero(t, obs[2].Volume)
}

func TestYahooFetcher_TrimsToDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	obs, err := f.FetchDailySeries(context.Background(), "X", 2)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "2024-01-04", obs[1].Date)
}

func TestYahooFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		noData bool
	}{
		{"http error", http.StatusInternalServerError, "boom", false},
		{"api error", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`, false},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, true},
		{"bad json", http.StatusOK, `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := NewYahooFetcher("")
			f.BaseURL = srv.URL
			_, err := f.FetchDailySeries(context.Background(), "X", 30)
			require.Error(t, err)
			assert.Equal(t, tt.noData, errorsIsNoData(err))
		})
	}
}

func TestYahooRange(t *testing.T) {
	assert.Equal(t, "1mo", yahooRange(10))
	assert.Equal(t, "3mo", yahooRange(90))
	assert.Equal(t, "6mo", yahooRange(180))
	assert.Equal(t, "1y", yahooRange(300))
	assert.Equal(t, "2y", yahooRange(500))
}
