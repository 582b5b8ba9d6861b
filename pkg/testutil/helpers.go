// Package testutil provides common fixtures and assertions for testing.
package testutil

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Dec parses a decimal literal and panics on error.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ReferenceFees returns the illustrative fee parameters used across tests:
// base 165, 10% above 1000, capped at 1050; 60 per month capped at 500;
// 15% VAT.
func ReferenceFees() loans.FeeConfig {
	return loans.FeeConfig{
		InitiationBase:      Dec("165"),
		InitiationRate:      Dec("0.10"),
		InitiationThreshold: Dec("1000"),
		InitiationCap:       Dec("1050"),
		ServiceFeePerMonth:  Dec("60"),
		ServiceFeeCap:       Dec("500"),
		VATRate:             Dec("0.15"),
	}
}

// AssertDecimal compares a decimal against a literal by value.
func AssertDecimal(t testing.TB, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, Dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

// AssertSummaryInvariants checks the properties every successful
// calculation must satisfy.
func AssertSummaryInvariants(t testing.TB, terms loans.LoanTerms, fees loans.FeeConfig, summary loans.LoanCostSummary) {
	t.Helper()

	expectedTotal := terms.Principal.
		Add(summary.TotalInterest).
		Add(summary.Fees.InitiationInclVAT).
		Add(summary.Fees.ServiceInclVAT)
	require.True(t, summary.TotalRepayment.Equal(expectedTotal),
		"total repayment %s != components %s", summary.TotalRepayment, expectedTotal)

	require.True(t, summary.ScheduleTotal().Equal(summary.TotalRepayment),
		"schedule sums to %s, total repayment %s", summary.ScheduleTotal(), summary.TotalRepayment)

	require.GreaterOrEqual(t, summary.NumberOfRepayments, 1)
	require.Equal(t, loans.NumberOfRepayments(terms.TermDays), summary.NumberOfRepayments)
	require.Len(t, summary.Schedule, summary.NumberOfRepayments)

	previous := terms.StartDate
	for i, inst := range summary.Schedule {
		require.True(t, inst.DueDate.After(previous),
			"installment %d due %s is not after %s", i, inst.DueDate, previous)
		require.True(t, inst.Amount.IsPositive(), "installment %d amount %s", i, inst.Amount)
		if i < len(summary.Schedule)-1 {
			require.True(t, inst.Amount.Equal(summary.MonthlyRepayment))
		}
		previous = inst.DueDate
	}

	require.True(t, summary.TotalRepayment.GreaterThanOrEqual(terms.Principal))
	require.True(t, summary.Fees.InitiationExclVAT.LessThanOrEqual(fees.InitiationCap))
	require.True(t, summary.Fees.ServiceExclVAT.LessThanOrEqual(fees.ServiceFeeCap))

	dates := make([]civil.Date, 0, len(summary.Schedule))
	for _, inst := range summary.Schedule {
		dates = append(dates, inst.DueDate)
	}
	if loans.Overrun(dates, summary.MaturityDate) {
		require.NotEmpty(t, summary.Warnings)
	} else {
		require.Empty(t, summary.Warnings)
	}
}
