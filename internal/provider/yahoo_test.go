package provider

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "stockcollector/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-06-03 09:00 and 2024-06-04 09:00 KST.
const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "005930.KS", "currency": "KRW", "gmtoffset": 32400},
      "timestamp": [1717372800, 1717459200, 1717545600],
      "indicators": {"quote": [{
        "open":   [75000, 75700, null],
        "high":   [76000, 76500, null],
        "low":    [74500, 75300, null],
        "close":  [75500, 76100, null],
        "volume": [null, 15000000, null]
      }]}
    }],
    "error": null
  }
}`

func newChartServer(t *testing.T, body string, capture *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			*capture = r.URL.String()
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBuildYahooSymbol(t *testing.T) {
	cases := map[Instrument]string{
		{Ticker: "005930"}:                   "005930.KS",
		{Ticker: "005930", Market: "KOSPI"}:  "005930.KS",
		{Ticker: "035720", Market: "kosdaq"}: "035720.KQ",
		{Ticker: "7203.T"}:                   "7203.T",
	}
	for inst, want := range cases {
		assert.Equal(t, want, buildYahooSymbol(inst), "instrument %+v", inst)
	}
}

func TestYahooProvider_FetchDailyBars(t *testing.T) {
	var requested string
	server := newChartServer(t, chartBody, &requested)

	p := &YahooProvider{httpClient: server.Client(), baseURL: server.URL}
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	bars, err := p.FetchDailyBars(context.Background(), Instrument{Ticker: "005930"}, from, to)
	require.NoError(t, err)

	assert.Regexp(t, `^/005930\.KS\?`, requested)
	assert.Contains(t, requested, "interval=1d")
	assert.Contains(t, requested, "period1=1717200000")

	// The third day has no OHLC and is dropped.
	require.Len(t, bars, 2)

	first := bars[0]
	assert.Equal(t, "2024-06-03", first.Date.Format("2006-01-02"))
	assert.Equal(t, 75000.0, first.Open)
	assert.Equal(t, 76000.0, first.High)
	assert.Equal(t, 74500.0, first.Low)
	assert.Equal(t, 75500.0, first.Close)
	assert.True(t, math.IsNaN(first.Volume), "expected NaN volume, got %v", first.Volume)
	assert.Equal(t, 15000000.0, bars[1].Volume)
}

func TestYahooProvider_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    *apperrors.AppError
		contain string
	}{
		{
			name:    "chart error",
			handler: jsonHandler(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`),
			want:    apperrors.ErrNoData,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			want:    apperrors.ErrFetchFailed,
			contain: "429",
		},
		{
			name:    "malformed json",
			handler: jsonHandler(`{"chart":`),
			want:    apperrors.ErrFetchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			p := &YahooProvider{httpClient: server.Client(), baseURL: server.URL}
			_, err := p.FetchDailyBars(context.Background(), Instrument{Ticker: "005930"}, time.Now().AddDate(0, -1, 0), time.Now())
			require.ErrorIs(t, err, tt.want)
			if tt.contain != "" {
				assert.Contains(t, err.Error(), tt.contain)
			}
		})
	}
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestYahooProvider_EmptyResult(t *testing.T) {
	server := newChartServer(t, `{"chart":{"result":[],"error":null}}`, nil)

	p := &YahooProvider{httpClient: server.Client(), baseURL: server.URL}
	bars, err := p.FetchDailyBars(context.Background(), Instrument{Ticker: "005930"}, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooProvider_CancelledContext(t *testing.T) {
	server := newChartServer(t, chartBody, nil)

	p := NewYahooProvider(server.Client(), NewLimiter(1))
	p.baseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchDailyBars(ctx, Instrument{Ticker: "005930"}, time.Now().AddDate(0, -1, 0), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrFetchFailed)
}
