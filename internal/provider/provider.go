// Package provider fetches raw daily bars and quarterly statements for a
// ticker from external market-data sources.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "stockcollector/internal/errors"

	"golang.org/x/time/rate"
)

const (
	userAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
	maxBodyBytes = 8 << 20
)

// Instrument identifies what to fetch.
type Instrument struct {
	Ticker string
	// Market is the listing venue (KRX, KOSPI, KOSDAQ). Empty means KRX.
	Market string
}

// DailyBar is one raw trading day. Missing values are math.NaN().
type DailyBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// StatementRow is one reporting period of a statement table. Period is a
// "YYYY-MM" label; Values is keyed by the provider's field label and holds
// math.NaN() for blank cells.
type StatementRow struct {
	Period string
	Values map[string]float64
}

// StatementTable is a per-ticker quarterly statement, one row per period in
// the order the provider reported them.
type StatementTable struct {
	Columns []string
	Rows    []StatementRow
}

// Len returns the number of periods.
func (t *StatementTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// BarFetcher fetches daily bars within [from, to].
type BarFetcher interface {
	FetchDailyBars(ctx context.Context, inst Instrument, from, to time.Time) ([]DailyBar, error)
}

// StatementFetcher fetches the quarterly statement table.
type StatementFetcher interface {
	FetchStatements(ctx context.Context, inst Instrument) (*StatementTable, error)
}

// Provider fetches both kinds of data for a ticker.
type Provider interface {
	BarFetcher
	StatementFetcher
}

// Source combines a bar fetcher and a statement fetcher into one Provider.
type Source struct {
	Bars       BarFetcher
	Statements StatementFetcher
}

// FetchDailyBars delegates to the bar fetcher.
func (s Source) FetchDailyBars(ctx context.Context, inst Instrument, from, to time.Time) ([]DailyBar, error) {
	return s.Bars.FetchDailyBars(ctx, inst, from, to)
}

// FetchStatements delegates to the statement fetcher.
func (s Source) FetchStatements(ctx context.Context, inst Instrument) (*StatementTable, error) {
	return s.Statements.FetchStatements(ctx, inst)
}

// NewLimiter returns a limiter shared by every request the providers make.
func NewLimiter(requestsPerSecond float64) *rate.Limiter {
	if requestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
}

// fetch performs a throttled GET and returns the body of a 200 response.
func fetch(ctx context.Context, client *http.Client, limiter *rate.Limiter, rawURL string) ([]byte, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrFetchFailed, fmt.Errorf("rate limiter: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFetchFailed, fmt.Errorf("building request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFetchFailed, fmt.Errorf("http request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Wrap(apperrors.ErrFetchFailed, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFetchFailed, fmt.Errorf("reading response: %w", err))
	}
	return body, nil
}
