package collector

import (
	"math"
	"testing"

	apperrors "stockcollector/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFieldMap(t *testing.T) {
	require.NoError(t, ValidateFieldMap())
}

func TestValidateFieldMap_Mismatch(t *testing.T) {
	tests := []struct {
		name   string
		labels map[string]FinancialField
	}{
		{
			name: "missing field",
			labels: map[string]FinancialField{
				"매출액": FieldRevenue,
			},
		},
		{
			name:   "duplicate field",
			labels: withLabel("Revenue", FieldRevenue),
		},
		{
			name:   "unknown field",
			labels: withLabel("Dividend", numFinancialFields),
		},
		{
			name:   "blank label",
			labels: withLabel(" ", FieldRevenue),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFieldMap(tt.labels)
			assert.ErrorIs(t, err, apperrors.ErrFieldMapping)
		})
	}
}

func withLabel(label string, f FinancialField) map[string]FinancialField {
	out := make(map[string]FinancialField, len(fieldLabels)+1)
	for k, v := range fieldLabels {
		out[k] = v
	}
	out[label] = f
	return out
}

func TestCheckColumns(t *testing.T) {
	var columns []string
	for label := range fieldLabels {
		columns = append(columns, label)
	}
	assert.NoError(t, CheckColumns(append(columns, "EPS(원)")))

	err := CheckColumns([]string{"매출액", "영업이익"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFieldMapping)
	assert.Contains(t, err.Error(), "ROE(%)")
}

func TestFinancialField_String(t *testing.T) {
	assert.Equal(t, "revenue", FieldRevenue.String())
	assert.Equal(t, "roe", FieldROE.String())
	assert.Equal(t, "FinancialField(99)", FinancialField(99).String())
	assert.True(t, FieldNetMargin.IsRatio())
	assert.False(t, FieldTotalEquity.IsRatio())
}

func TestRoundingPolicy(t *testing.T) {
	p, err := ParseRoundingPolicy("")
	require.NoError(t, err)
	assert.Equal(t, Truncate, p)

	p, err = ParseRoundingPolicy(" ROUND ")
	require.NoError(t, err)
	assert.Equal(t, Round, p)
	assert.Equal(t, "round", p.String())

	_, err = ParseRoundingPolicy("ceil")
	assert.Error(t, err)

	n, ok := Truncate.ToInt(75500.9)
	assert.True(t, ok)
	assert.Equal(t, int64(75500), n)

	n, _ = Truncate.ToInt(-1.5)
	assert.Equal(t, int64(-1), n)

	n, _ = Round.ToInt(75500.5)
	assert.Equal(t, int64(75501), n)

	n, _ = Round.ToInt(-1.5)
	assert.Equal(t, int64(-2), n)

	_, ok = Truncate.ToInt(math.NaN())
	assert.False(t, ok)
}
