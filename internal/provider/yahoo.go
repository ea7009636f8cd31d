package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "stockcollector/internal/errors"

	"golang.org/x/time/rate"
)

const yahooChartURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// marketSuffixes maps listing venues to Yahoo Finance ticker suffixes.
var marketSuffixes = map[string]string{
	"":       ".KS",
	"KRX":    ".KS",
	"KOSPI":  ".KS",
	"KOSDAQ": ".KQ",
}

// yahooChartResponse is the v8 chart API response.
type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		Currency  string `json:"currency"`
		GMTOffset int    `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

// yahooQuote holds parallel arrays; JSON null marks a missing value.
type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*float64 `json:"volume"`
}

// YahooProvider fetches daily bars from the Yahoo Finance chart API.
type YahooProvider struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string // overridable for tests
}

// NewYahooProvider creates a new Yahoo Finance bar provider.
func NewYahooProvider(httpClient *http.Client, limiter *rate.Limiter) *YahooProvider {
	return &YahooProvider{httpClient: httpClient, limiter: limiter, baseURL: yahooChartURL}
}

// buildYahooSymbol converts an instrument to a Yahoo ticker. A ticker that
// already carries a suffix is used as is.
func buildYahooSymbol(inst Instrument) string {
	if strings.Contains(inst.Ticker, ".") {
		return inst.Ticker
	}
	return inst.Ticker + marketSuffixes[strings.ToUpper(inst.Market)]
}

// FetchDailyBars fetches daily bars between from and to, oldest first. Days
// where the provider reports no open/high/low/close are dropped; a missing
// volume is kept as NaN.
func (p *YahooProvider) FetchDailyBars(ctx context.Context, inst Instrument, from, to time.Time) ([]DailyBar, error) {
	symbol := buildYahooSymbol(inst)

	q := url.Values{}
	q.Set("period1", strconv.FormatInt(from.Unix(), 10))
	q.Set("period2", strconv.FormatInt(to.Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	rawURL := p.baseURL + "/" + url.PathEscape(symbol) + "?" + q.Encode()

	body, err := fetch(ctx, p.httpClient, p.limiter, rawURL)
	if err != nil {
		return nil, err
	}

	var chart yahooChartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrFetchFailed, fmt.Errorf("decoding response: %w", err))
	}
	if chart.Chart.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrNoData,
			fmt.Errorf("%s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	return chartBars(chart.Chart.Result[0]), nil
}

// chartBars converts the parallel quote arrays into bars dated in the
// exchange's local calendar.
func chartBars(res yahooChartResult) []DailyBar {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	quote := res.Indicators.Quote[0]
	zone := time.FixedZone(res.Meta.Symbol, res.Meta.GMTOffset)

	bars := make([]DailyBar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		bar := DailyBar{
			Open:   valueAt(quote.Open, i),
			High:   valueAt(quote.High, i),
			Low:    valueAt(quote.Low, i),
			Close:  valueAt(quote.Close, i),
			Volume: valueAt(quote.Volume, i),
		}
		if math.IsNaN(bar.Open) || math.IsNaN(bar.High) || math.IsNaN(bar.Low) || math.IsNaN(bar.Close) {
			continue
		}
		y, m, d := time.Unix(ts, 0).In(zone).Date()
		bar.Date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		bars = append(bars, bar)
	}
	return bars
}

func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}
	return *values[i]
}
