package loans

import (
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// AccrueInterest returns flat simple interest over the term:
// principal * monthlyRate * termDays / 30, rounded to the cent once.
func AccrueInterest(principal, monthlyRate decimal.Decimal, termDays int) (decimal.Decimal, error) {
	if monthlyRate.IsNegative() {
		return decimal.Zero, invalid(ErrInvalidRate, "monthlyRate", monthlyRate, "must not be negative")
	}
	if err := ValidateTermDays(termDays); err != nil {
		return decimal.Zero, err
	}

	// Multiply before dividing so the only inexact step is the final division.
	numerator := principal.Mul(monthlyRate).Mul(decimal.NewFromInt(int64(termDays)))
	return mathutil.RoundCent(numerator.Div(decimal.NewFromInt(constants.DaysPerMonth))), nil
}
