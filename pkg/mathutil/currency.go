// Package mathutil provides common money arithmetic helpers on top of
// shopspring/decimal.
package mathutil

import (
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/shopspring/decimal"
)

// RoundCent rounds a value to two decimals, i.e. to represent real currency.
// Midpoints round away from zero (round-half-up for positive amounts).
func RoundCent(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CentPlaces)
}

// IsCentPrecise reports whether val carries no precision below one cent.
func IsCentPrecise(val decimal.Decimal) bool {
	return val.Equal(val.Truncate(constants.CentPlaces))
}

// Min returns the smaller of two decimal values
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two decimal values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// CeilDiv returns ceil(a/b) for non-negative a and positive b without
// overflowing near the int range.
func CeilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	q := a / b
	if a%b > 0 {
		q++
	}
	return q
}

// Sum adds up a list of values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// FormatCent renders val with exactly two decimals, e.g. "1308.75" or "50.00".
func FormatCent(val decimal.Decimal) string {
	return val.StringFixed(constants.CentPlaces)
}
