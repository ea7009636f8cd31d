package collector

import (
	"math"
	"testing"
	"time"

	apperrors "stockcollector/internal/errors"
	"stockcollector/internal/models"
	"stockcollector/internal/provider"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuarterEnd(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"2024-01", "2024-03-31"},
		{"2024-02", "2024-03-31"},
		{"2024-03", "2024-03-31"},
		{"2024-04", "2024-06-30"},
		{"2024-05", "2024-06-30"},
		{"2024-06", "2024-06-30"},
		{"2024-07", "2024-09-30"},
		{"2024-08", "2024-09-30"},
		{"2024-09", "2024-09-30"},
		{"2024-10", "2024-12-31"},
		{"2024-11", "2024-12-31"},
		{"2024-12", "2024-12-31"},
		{"2023/12", "2023-12-31"},
		{"2024.03", "2024-03-31"},
		{"2024-02-15", "2024-03-31"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := QuarterEnd(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(models.DateLayout))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestQuarterEnd_Invalid(t *testing.T) {
	for _, label := range []string{"", "2024-13", "Q2 2024", "abcd-ef"} {
		_, err := QuarterEnd(label)
		assert.ErrorIs(t, err, apperrors.ErrInvalidPeriod, "label %q", label)
	}
}

func TestNormalizer_Prices(t *testing.T) {
	n := Normalizer{Rounding: Truncate}
	bars := []provider.DailyBar{
		{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Open: 75000, High: 76000, Low: 74500, Close: 75500.9, Volume: math.NaN()},
		{Date: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), Open: 75700, High: 76500, Low: 75300, Close: 76100, Volume: 15000000},
	}

	records, rejected := n.Prices("uuid-1", bars)
	require.Empty(t, rejected)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "uuid-1", first.CompanyID)
	assert.Equal(t, "2024-06-03", first.Date.Format(models.DateLayout))
	assert.Equal(t, int64(75000), first.OpenPrice)
	assert.Equal(t, int64(76000), first.HighPrice)
	assert.Equal(t, int64(74500), first.LowPrice)
	assert.Equal(t, int64(75500), first.ClosePrice)
	assert.False(t, first.Volume.Valid)

	assert.True(t, records[1].Volume.Valid)
	assert.Equal(t, int64(15000000), records[1].Volume.Int64)
}

func TestNormalizer_Prices_RoundPolicy(t *testing.T) {
	n := Normalizer{Rounding: Round}
	records, _ := n.Prices("uuid-1", []provider.DailyBar{
		{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Open: 100.5, High: 101.4, Low: 99.6, Close: 100.49, Volume: 10.5},
	})
	require.Len(t, records, 1)
	assert.Equal(t, int64(101), records[0].OpenPrice)
	assert.Equal(t, int64(101), records[0].HighPrice)
	assert.Equal(t, int64(100), records[0].LowPrice)
	assert.Equal(t, int64(100), records[0].ClosePrice)
	assert.Equal(t, int64(11), records[0].Volume.Int64)
}

func TestNormalizer_Prices_MissingPriceRejected(t *testing.T) {
	n := Normalizer{}
	records, rejected := n.Prices("uuid-1", []provider.DailyBar{
		{Date: time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: 2},
		{Date: time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), Open: 1, High: 2, Low: 1, Close: math.NaN()},
	})
	assert.Len(t, records, 1)
	require.Len(t, rejected, 1)
	assert.Equal(t, "uuid-1@2024-06-04", rejected[0].Key)
}

func TestNormalizer_Prices_EmptyInputs(t *testing.T) {
	n := Normalizer{}
	bar := provider.DailyBar{Date: time.Now(), Open: 1, High: 1, Low: 1, Close: 1}

	records, rejected := n.Prices("", []provider.DailyBar{bar})
	assert.Nil(t, records)
	assert.Nil(t, rejected)

	records, rejected = n.Prices("uuid-1", nil)
	assert.Nil(t, records)
	assert.Nil(t, rejected)
}

func fullStatement(rows ...provider.StatementRow) *provider.StatementTable {
	table := &provider.StatementTable{Rows: rows}
	for label := range fieldLabels {
		table.Columns = append(table.Columns, label)
	}
	return table
}

func TestNormalizer_Financials_NullPropagation(t *testing.T) {
	n := Normalizer{Rounding: Truncate}
	table := fullStatement(provider.StatementRow{
		Period: "2024-05",
		Values: map[string]float64{
			"매출액":    1000000,
			"영업이익":   math.NaN(),
			"ROE(%)": 15.5,
		},
	})

	records, rejected := n.Financials("uuid-1", table)
	require.Empty(t, rejected)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "2024-06-30", got.QuarterDate.Format(models.DateLayout))
	assert.True(t, got.Revenue.Valid)
	assert.Equal(t, int64(1000000), got.Revenue.Int64)
	assert.True(t, got.ROE.Valid)
	assert.Equal(t, 15.5, got.ROE.Float64)

	assert.False(t, got.OperatingIncome.Valid, "NaN becomes null")
	assert.False(t, got.NetIncome.Valid, "absent becomes null")
	assert.False(t, got.TotalAssets.Valid)
	assert.False(t, got.TotalEquity.Valid)
	assert.False(t, got.OperatingMargin.Valid)
	assert.False(t, got.NetMargin.Valid)
}

func TestNormalizer_Financials_MonetaryTruncatedRatiosKept(t *testing.T) {
	n := Normalizer{Rounding: Truncate}
	table := fullStatement(provider.StatementRow{
		Period: "2024-03",
		Values: map[string]float64{
			"당기순이익": 12345.99,
			"영업이익률": 9.19,
			"순이익률":  -3.5,
		},
	})

	records, _ := n.Financials("uuid-1", table)
	require.Len(t, records, 1)
	assert.Equal(t, int64(12345), records[0].NetIncome.Int64)
	assert.Equal(t, 9.19, records[0].OperatingMargin.Float64)
	assert.Equal(t, -3.5, records[0].NetMargin.Float64)
}

func TestNormalizer_Financials_BadPeriodRejected(t *testing.T) {
	n := Normalizer{}
	table := fullStatement(
		provider.StatementRow{Period: "2024-03", Values: map[string]float64{"매출액": 1}},
		provider.StatementRow{Period: "latest", Values: map[string]float64{"매출액": 2}},
	)

	records, rejected := n.Financials("uuid-1", table)
	assert.Len(t, records, 1)
	require.Len(t, rejected, 1)
	assert.Equal(t, "uuid-1@latest", rejected[0].Key)
	assert.ErrorIs(t, rejected[0].Err, apperrors.ErrInvalidPeriod)
}

func TestNormalizer_Financials_EmptyInputs(t *testing.T) {
	n := Normalizer{}
	records, _ := n.Financials("", fullStatement(provider.StatementRow{Period: "2024-03"}))
	assert.Nil(t, records)

	records, _ = n.Financials("uuid-1", nil)
	assert.Nil(t, records)
}
