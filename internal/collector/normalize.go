package collector

import (
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "stockcollector/internal/errors"
	"stockcollector/internal/models"
	"stockcollector/internal/provider"

	"github.com/guregu/null/v6"
)

var periodLayouts = []string{"2006-01", "2006/01", "2006.01", "2006-01-02", "200601"}

// QuarterEnd maps a period label such as "2024-05" to the final calendar
// day of the quarter containing that month (2024-06-30).
func QuarterEnd(label string) (time.Time, error) {
	label = strings.TrimSpace(label)
	for _, layout := range periodLayouts {
		t, err := time.Parse(layout, label)
		if err != nil {
			continue
		}
		endMonth := ((int(t.Month())-1)/3 + 1) * 3
		// Day 0 of the following month is the last day of endMonth.
		return time.Date(t.Year(), time.Month(endMonth)+1, 0, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidPeriod,
		fmt.Sprintf("invalid period label %q", label))
}

// Normalizer turns provider rows into storage records.
type Normalizer struct {
	Rounding RoundingPolicy
}

// Prices converts daily bars into price records. Prices are converted to
// whole units; a missing volume is stored as null. Bars that cannot be
// converted are reported as failures and left out.
func (n Normalizer) Prices(companyID string, bars []provider.DailyBar) ([]models.DailyPrice, []RecordOutcome) {
	if companyID == "" || len(bars) == 0 {
		return nil, nil
	}

	records := make([]models.DailyPrice, 0, len(bars))
	var failures []RecordOutcome
	for _, bar := range bars {
		date := time.Date(bar.Date.Year(), bar.Date.Month(), bar.Date.Day(), 0, 0, 0, 0, time.UTC)
		key := companyID + "@" + date.Format(models.DateLayout)

		open, okOpen := n.Rounding.ToInt(bar.Open)
		high, okHigh := n.Rounding.ToInt(bar.High)
		low, okLow := n.Rounding.ToInt(bar.Low)
		closePrice, okClose := n.Rounding.ToInt(bar.Close)
		if !okOpen || !okHigh || !okLow || !okClose {
			failures = append(failures, RecordOutcome{
				Key: key,
				Err: apperrors.WithMessage(apperrors.ErrInternal, "bar has a missing price"),
			})
			continue
		}

		records = append(records, models.DailyPrice{
			CompanyID:  companyID,
			Date:       date,
			OpenPrice:  open,
			HighPrice:  high,
			LowPrice:   low,
			ClosePrice: closePrice,
			Volume:     n.nullInt(bar.Volume),
		})
	}
	return records, failures
}

// Financials converts a statement table into quarterly snapshots. Each
// row's period label becomes the quarter-end date; absent values are
// stored as null. A row whose period cannot be parsed is reported as a
// failure and left out.
func (n Normalizer) Financials(companyID string, table *provider.StatementTable) ([]models.FinancialSnapshot, []RecordOutcome) {
	if companyID == "" || table.Len() == 0 {
		return nil, nil
	}

	labels := labelsByField()
	records := make([]models.FinancialSnapshot, 0, table.Len())
	var failures []RecordOutcome
	for _, row := range table.Rows {
		quarter, err := QuarterEnd(row.Period)
		if err != nil {
			failures = append(failures, RecordOutcome{Key: companyID + "@" + row.Period, Err: err})
			continue
		}

		value := func(f FinancialField) float64 {
			v, ok := row.Values[labels[f]]
			if !ok {
				return math.NaN()
			}
			return v
		}

		records = append(records, models.FinancialSnapshot{
			CompanyID:       companyID,
			QuarterDate:     quarter,
			Revenue:         n.nullInt(value(FieldRevenue)),
			OperatingIncome: n.nullInt(value(FieldOperatingIncome)),
			NetIncome:       n.nullInt(value(FieldNetIncome)),
			TotalAssets:     n.nullInt(value(FieldTotalAssets)),
			TotalEquity:     n.nullInt(value(FieldTotalEquity)),
			OperatingMargin: nullFloat(value(FieldOperatingMargin)),
			NetMargin:       nullFloat(value(FieldNetMargin)),
			ROE:             nullFloat(value(FieldROE)),
		})
	}
	return records, failures
}

func (n Normalizer) nullInt(v float64) null.Int {
	i, ok := n.Rounding.ToInt(v)
	if !ok {
		return null.Int{}
	}
	return null.IntFrom(i)
}

func nullFloat(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.FloatFrom(v)
}

func labelsByField() map[FinancialField]string {
	out := make(map[FinancialField]string, len(fieldLabels))
	for label, f := range fieldLabels {
		out[f] = label
	}
	return out
}
