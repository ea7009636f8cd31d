package collector

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundingPolicy decides how fractional provider values become whole
// currency units.
type RoundingPolicy int

const (
	// Truncate drops the fraction toward zero.
	Truncate RoundingPolicy = iota
	// Round rounds half away from zero.
	Round
)

// ParseRoundingPolicy parses "truncate" or "round". Empty means Truncate.
func ParseRoundingPolicy(s string) (RoundingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truncate":
		return Truncate, nil
	case "round":
		return Round, nil
	default:
		return Truncate, fmt.Errorf("invalid rounding policy %q: must be truncate or round", s)
	}
}

// String returns the policy name.
func (p RoundingPolicy) String() string {
	if p == Round {
		return "round"
	}
	return "truncate"
}

// ToInt converts v to a whole number. ok is false for NaN and infinities.
func (p RoundingPolicy) ToInt(v float64) (n int64, ok bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	d := decimal.NewFromFloat(v)
	if p == Round {
		return d.Round(0).IntPart(), true
	}
	return d.Truncate(0).IntPart(), true
}
