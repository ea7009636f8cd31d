// Package collector runs the daily collection: for each target ticker it
// resolves the company, fetches prices and quarterly statements, normalizes
// them, and upserts the results. Failures are contained to the smallest
// unit they affect (one record, one data kind, or one ticker).
package collector

import (
	"context"
	"fmt"
	"time"

	"stockcollector/internal/config"
	apperrors "stockcollector/internal/errors"
	"stockcollector/internal/logger"
	"stockcollector/internal/models"
	"stockcollector/internal/provider"

	"github.com/guregu/null/v6"
	"go.uber.org/zap"
)

// CompanyResolver maps a ticker to its company id.
type CompanyResolver interface {
	Resolve(ctx context.Context, ticker string) (string, error)
}

// RecordWriter stores normalized records.
type RecordWriter interface {
	WritePrices(ctx context.Context, records []models.DailyPrice) BatchResult
	WriteFinancials(ctx context.Context, records []models.FinancialSnapshot) BatchResult
}

// State is the stage a ticker reached.
type State string

const (
	StateStart               State = "start"
	StateResolve             State = "resolve"
	StateFetchPrices         State = "fetch_prices"
	StateNormalizePrices     State = "normalize_prices"
	StateWritePrices         State = "write_prices"
	StateFetchFinancials     State = "fetch_financials"
	StateNormalizeFinancials State = "normalize_financials"
	StateWriteFinancials     State = "write_financials"
	StateSkipped             State = "skipped"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

// TickerResult is the outcome of one ticker.
type TickerResult struct {
	Ticker    string
	Name      string
	CompanyID string
	State     State

	LatestClose null.Float
	Prices      BatchResult
	Financials  BatchResult

	// Err is why the ticker was skipped or failed.
	Err error
	// FinancialsErr is set when statements were not processed; prices are
	// unaffected by it.
	FinancialsErr error
}

// RunResult is the outcome of a collection run.
type RunResult struct {
	From, To time.Time
	Tickers  []TickerResult
	Duration time.Duration
}

// Count returns how many tickers ended in state.
func (r *RunResult) Count(state State) int {
	n := 0
	for _, t := range r.Tickers {
		if t.State == state {
			n++
		}
	}
	return n
}

// Options configures a Collector.
type Options struct {
	Rounding RoundingPolicy
	Logger   *zap.SugaredLogger
	// Now is the clock used for the collection window. Defaults to time.Now.
	Now func() time.Time
}

// Collector drives the per-ticker pipeline.
type Collector struct {
	resolver   CompanyResolver
	provider   provider.Provider
	writer     RecordWriter
	normalizer Normalizer
	log        *zap.SugaredLogger
	now        func() time.Time
}

// New creates a new Collector.
func New(resolver CompanyResolver, prov provider.Provider, writer RecordWriter, opts Options) *Collector {
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Collector{
		resolver:   resolver,
		provider:   prov,
		writer:     writer,
		normalizer: Normalizer{Rounding: opts.Rounding},
		log:        log,
		now:        now,
	}
}

// Run processes every target in document order. Tickers are independent:
// no outcome of one affects another.
func (c *Collector) Run(ctx context.Context, targets *config.Targets) *RunResult {
	start := c.now()
	from, to := targets.Window(start)
	result := &RunResult{From: from, To: to}

	c.log.Infof("Collecting %d stocks, %d months of history", len(targets.Stocks), targets.Config.DataCollectionMonths)
	c.log.Infof("Window: %s ~ %s", from.Format(models.DateLayout), to.Format(models.DateLayout))

	for _, stock := range targets.Stocks {
		c.log.Infof("Processing %s (%s)", stock.Name, stock.Ticker)
		result.Tickers = append(result.Tickers, c.collectTicker(ctx, stock, from, to))
	}

	result.Duration = c.now().Sub(start)
	c.log.Infow("collection complete",
		"done", result.Count(StateDone),
		"skipped", result.Count(StateSkipped),
		"failed", result.Count(StateFailed),
		"duration", result.Duration,
	)
	return result
}

func (c *Collector) collectTicker(ctx context.Context, stock config.Stock, from, to time.Time) (res TickerResult) {
	res = TickerResult{Ticker: stock.Ticker, Name: stock.Name, State: StateStart}

	defer func() {
		if r := recover(); r != nil {
			res.Err = apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("panic in %s: %v", res.State, r))
			res.State = StateFailed
			c.log.Errorf("  %s failed: %v", stock.Ticker, res.Err)
		}
	}()

	res.State = StateResolve
	companyID, err := c.resolver.Resolve(ctx, stock.Ticker)
	if err != nil {
		res.State = StateSkipped
		res.Err = err
		c.log.Warnf("  %s skipped: %v", stock.Ticker, err)
		return res
	}
	res.CompanyID = companyID

	inst := provider.Instrument{Ticker: stock.Ticker, Market: stock.Market}

	res.State = StateFetchPrices
	bars, err := c.provider.FetchDailyBars(ctx, inst, from, to)
	if err != nil {
		res.State = StateFailed
		res.Err = err
		c.log.Errorf("  %s failed: %v", stock.Ticker, err)
		return res
	}

	if len(bars) == 0 {
		c.log.Warn("  no price data")
	} else {
		res.LatestClose = nullFloat(bars[len(bars)-1].Close)
		if res.LatestClose.Valid {
			c.log.Infof("  latest close: %.0f", res.LatestClose.Float64)
		}

		res.State = StateNormalizePrices
		prices, rejected := c.normalizer.Prices(companyID, bars)
		for _, r := range rejected {
			c.log.Warnf("  %s rejected: %v", r.Key, r.Err)
		}

		res.State = StateWritePrices
		res.Prices = c.writer.WritePrices(ctx, prices).withFailures(rejected)
		c.log.Infof("  prices saved: %d/%d", res.Prices.Succeeded, res.Prices.Attempted)
	}

	c.collectFinancials(ctx, inst, &res)

	res.State = StateDone
	return res
}

// collectFinancials never fails the ticker; any error or panic is recorded
// in FinancialsErr.
func (c *Collector) collectFinancials(ctx context.Context, inst provider.Instrument, res *TickerResult) {
	defer func() {
		if r := recover(); r != nil {
			res.FinancialsErr = apperrors.Wrap(apperrors.ErrInternal, fmt.Errorf("panic in %s: %v", res.State, r))
			c.log.Warnf("  financial data failed: %v", res.FinancialsErr)
		}
	}()

	res.State = StateFetchFinancials
	table, err := c.provider.FetchStatements(ctx, inst)
	if err != nil {
		res.FinancialsErr = err
		c.log.Warnf("  financial data failed: %v", err)
		return
	}
	if table.Len() == 0 {
		c.log.Warn("  no financial data")
		return
	}
	c.log.Infof("  statement: %d periods x %d fields", table.Len(), len(table.Columns))

	if err := CheckColumns(table.Columns); err != nil {
		res.FinancialsErr = err
		c.log.Warnf("  financial data failed: %v", err)
		return
	}

	res.State = StateNormalizeFinancials
	snapshots, rejected := c.normalizer.Financials(res.CompanyID, table)
	for _, r := range rejected {
		c.log.Warnf("  %s rejected: %v", r.Key, r.Err)
	}

	res.State = StateWriteFinancials
	res.Financials = c.writer.WriteFinancials(ctx, snapshots).withFailures(rejected)
	c.log.Infof("  financials saved: %d/%d", res.Financials.Succeeded, res.Financials.Attempted)
}
