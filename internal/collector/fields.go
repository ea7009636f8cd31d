package collector

import (
	"fmt"
	"sort"
	"strings"

	apperrors "stockcollector/internal/errors"
)

// FinancialField enumerates the statement figures stored per quarter.
type FinancialField int

const (
	FieldRevenue FinancialField = iota
	FieldOperatingIncome
	FieldNetIncome
	FieldTotalAssets
	FieldTotalEquity
	FieldOperatingMargin
	FieldNetMargin
	FieldROE

	numFinancialFields
)

var fieldColumns = [numFinancialFields]string{
	FieldRevenue:         "revenue",
	FieldOperatingIncome: "operating_income",
	FieldNetIncome:       "net_income",
	FieldTotalAssets:     "total_assets",
	FieldTotalEquity:     "total_equity",
	FieldOperatingMargin: "operating_margin",
	FieldNetMargin:       "net_margin",
	FieldROE:             "roe",
}

// String returns the storage column the field is written to.
func (f FinancialField) String() string {
	if f < 0 || f >= numFinancialFields {
		return fmt.Sprintf("FinancialField(%d)", int(f))
	}
	return fieldColumns[f]
}

// IsRatio reports whether the field is a percentage kept at float precision.
func (f FinancialField) IsRatio() bool {
	return f == FieldOperatingMargin || f == FieldNetMargin || f == FieldROE
}

// fieldLabels maps the provider's (Korean) row labels to fields. Labels
// must match exactly; the provider's table is checked against this before
// any row is normalized.
var fieldLabels = map[string]FinancialField{
	"매출액":    FieldRevenue,
	"영업이익":   FieldOperatingIncome,
	"당기순이익":  FieldNetIncome,
	"자산총계":   FieldTotalAssets,
	"자본총계":   FieldTotalEquity,
	"영업이익률":  FieldOperatingMargin,
	"순이익률":   FieldNetMargin,
	"ROE(%)": FieldROE,
}

// ValidateFieldMap checks that every field has exactly one provider label.
func ValidateFieldMap() error {
	return validateFieldMap(fieldLabels)
}

func validateFieldMap(labels map[string]FinancialField) error {
	counts := make(map[FinancialField]int, numFinancialFields)
	for label, field := range labels {
		if strings.TrimSpace(label) == "" {
			return apperrors.WithMessage(apperrors.ErrFieldMapping, "empty label in field map")
		}
		if field < 0 || field >= numFinancialFields {
			return apperrors.WithMessage(apperrors.ErrFieldMapping,
				fmt.Sprintf("label %q maps to unknown field %d", label, int(field)))
		}
		counts[field]++
	}
	for f := FinancialField(0); f < numFinancialFields; f++ {
		switch counts[f] {
		case 1:
		case 0:
			return apperrors.WithMessage(apperrors.ErrFieldMapping, fmt.Sprintf("field %s has no label", f))
		default:
			return apperrors.WithMessage(apperrors.ErrFieldMapping, fmt.Sprintf("field %s has %d labels", f, counts[f]))
		}
	}
	return nil
}

// CheckColumns fails when a mapped label is absent from the provider's
// columns, so an upstream rename surfaces as an error instead of a column
// of nulls.
func CheckColumns(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}

	var missing []string
	for label := range fieldLabels {
		if !present[label] {
			missing = append(missing, label)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return apperrors.WithMessage(apperrors.ErrFieldMapping,
		fmt.Sprintf("statement is missing mapped columns: %s", strings.Join(missing, ", ")))
}
