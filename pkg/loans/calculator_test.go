package loans_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/datetime"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/iwvelando/loan-cost/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateWorkedExample(t *testing.T) {
	terms := loans.LoanTerms{
		Principal:   testutil.Dec("1000.00"),
		TermDays:    30,
		StartDate:   datetime.MustParseDate("2025-04-01"),
		MonthlyRate: testutil.Dec("0.05"),
	}

	summary, err := loans.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err)

	testutil.AssertDecimal(t, "50.00", summary.TotalInterest)
	testutil.AssertDecimal(t, "165.00", summary.Fees.InitiationExclVAT)
	testutil.AssertDecimal(t, "189.75", summary.Fees.InitiationInclVAT)
	testutil.AssertDecimal(t, "60.00", summary.Fees.ServiceExclVAT)
	testutil.AssertDecimal(t, "69.00", summary.Fees.ServiceInclVAT)
	testutil.AssertDecimal(t, "1308.75", summary.TotalRepayment)
	testutil.AssertDecimal(t, "1308.75", summary.MonthlyRepayment)
	testutil.AssertDecimal(t, "308.75", summary.CostOfCredit)
	assert.Equal(t, 1, summary.NumberOfRepayments)

	require.Len(t, summary.Schedule, 1)
	assert.Equal(t, terms.StartDate.AddDays(30), summary.Schedule[0].DueDate)
	testutil.AssertDecimal(t, "1308.75", summary.Schedule[0].Amount)
	assert.Equal(t, "2025-05-01", summary.MaturityDate.String())
	assert.Empty(t, summary.Warnings)
}

func TestCalculateShortTermSingleInstallment(t *testing.T) {
	terms := loans.LoanTerms{
		Principal:   testutil.Dec("500"),
		TermDays:    5,
		StartDate:   datetime.MustParseDate("2025-06-10"),
		MonthlyRate: testutil.Dec("0.05"),
	}

	summary, err := loans.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err)

	// 500 * 0.05 * 5/30 = 4.1666.. -> 4.17
	testutil.AssertDecimal(t, "4.17", summary.TotalInterest)
	assert.Equal(t, 1, summary.NumberOfRepayments)
	require.Len(t, summary.Schedule, 1)
	assert.True(t, summary.Schedule[0].Amount.Equal(summary.TotalRepayment))
	assert.Equal(t, "2025-07-10", summary.Schedule[0].DueDate.String())
}

func TestCalculateSplitsRemainderIntoLastInstallment(t *testing.T) {
	terms := loans.LoanTerms{
		Principal:   testutil.Dec("1000"),
		TermDays:    90,
		StartDate:   datetime.MustParseDate("2025-01-31"),
		MonthlyRate: testutil.Dec("0.05"),
	}

	summary, err := loans.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err)

	testutil.AssertDecimal(t, "150.00", summary.TotalInterest)
	testutil.AssertDecimal(t, "207.00", summary.Fees.ServiceInclVAT)
	testutil.AssertDecimal(t, "1546.75", summary.TotalRepayment)
	testutil.AssertDecimal(t, "515.58", summary.MonthlyRepayment)
	assert.Equal(t, 3, summary.NumberOfRepayments)

	require.Len(t, summary.Schedule, 3)
	testutil.AssertDecimal(t, "515.58", summary.Schedule[0].Amount)
	testutil.AssertDecimal(t, "515.58", summary.Schedule[1].Amount)
	testutil.AssertDecimal(t, "515.59", summary.Schedule[2].Amount)

	assert.Equal(t, "2025-02-28", summary.Schedule[0].DueDate.String())
	assert.Equal(t, "2025-03-31", summary.Schedule[1].DueDate.String())
	assert.Equal(t, "2025-04-30", summary.Schedule[2].DueDate.String())
	assert.True(t, summary.ScheduleTotal().Equal(summary.TotalRepayment))
}

func TestCalculateSalaryDayClampsToMonthEnd(t *testing.T) {
	terms := loans.LoanTerms{
		Principal:   testutil.Dec("1000"),
		TermDays:    30,
		StartDate:   datetime.MustParseDate("2025-03-15"),
		MonthlyRate: testutil.Dec("0.05"),
	}.WithSalaryDay(31)

	summary, err := loans.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err)

	require.Len(t, summary.Schedule, 1)
	assert.Equal(t, "2025-04-30", summary.Schedule[0].DueDate.String())
}

func TestCalculateOverrunWarning(t *testing.T) {
	terms := loans.LoanTerms{
		Principal:   testutil.Dec("2000"),
		TermDays:    331,
		StartDate:   datetime.MustParseDate("2025-01-01"),
		MonthlyRate: testutil.Dec("0.03"),
	}

	summary, err := loans.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err)

	assert.Equal(t, 12, summary.NumberOfRepayments)
	assert.Equal(t, "2026-01-01", summary.Schedule[11].DueDate.String())
	assert.Equal(t, "2025-11-28", summary.MaturityDate.String())
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "2026-01-01")
}

func TestCalculateValidation(t *testing.T) {
	valid := loans.LoanTerms{
		Principal:   testutil.Dec("1000"),
		TermDays:    30,
		StartDate:   datetime.MustParseDate("2025-04-01"),
		MonthlyRate: testutil.Dec("0.05"),
	}

	badFees := testutil.ReferenceFees()
	badFees.VATRate = testutil.Dec("-0.15")

	tests := []struct {
		name   string
		mutate func(loans.LoanTerms) loans.LoanTerms
		fees   loans.FeeConfig
		want   error
		field  string
	}{
		{
			name:   "zero principal",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.Principal = decimal.Zero; return t },
			want:   loans.ErrInvalidPrincipal,
			field:  "principal",
		},
		{
			name:   "negative principal",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.Principal = testutil.Dec("-1"); return t },
			want:   loans.ErrInvalidPrincipal,
			field:  "principal",
		},
		{
			name:   "sub-cent principal",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.Principal = testutil.Dec("100.005"); return t },
			want:   loans.ErrInvalidPrincipal,
			field:  "principal",
		},
		{
			name:   "zero term",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.TermDays = 0; return t },
			want:   loans.ErrInvalidTerm,
			field:  "termDays",
		},
		{
			name:   "term above the hard ceiling",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.TermDays = constants.MaxTermDays + 1; return t },
			want:   loans.ErrInvalidTerm,
			field:  "termDays",
		},
		{
			name:   "term near the int range",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.TermDays = math.MaxInt - 1; return t },
			want:   loans.ErrInvalidTerm,
			field:  "termDays",
		},
		{
			name:   "negative rate",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.MonthlyRate = testutil.Dec("-0.01"); return t },
			want:   loans.ErrInvalidRate,
			field:  "monthlyRate",
		},
		{
			name:   "salary day zero",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { return t.WithSalaryDay(0) },
			want:   loans.ErrInvalidSalaryDay,
			field:  "salaryDay",
		},
		{
			name:   "salary day 32",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { return t.WithSalaryDay(32) },
			want:   loans.ErrInvalidSalaryDay,
			field:  "salaryDay",
		},
		{
			name:   "invalid start date",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { t.StartDate.Day = 31; t.StartDate.Month = 2; return t },
			want:   loans.ErrInvalidTerm,
			field:  "startDate",
		},
		{
			name:   "negative VAT",
			mutate: func(t loans.LoanTerms) loans.LoanTerms { return t },
			fees:   badFees,
			want:   loans.ErrInvalidFeeConfig,
			field:  "vatRate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fees := tt.fees
			if fees == (loans.FeeConfig{}) {
				fees = testutil.ReferenceFees()
			}

			summary, err := loans.Calculate(tt.mutate(valid), fees)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)

			var verr *loans.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)

			assert.Empty(t, summary.Schedule)
			assert.Zero(t, summary.NumberOfRepayments)
		})
	}
}

func TestCalculatorLimits(t *testing.T) {
	calc := loans.NewCalculator(nil, loans.Limits{MaxTermDays: 180, MaxMonthlyRate: testutil.Dec("0.05")})
	terms := loans.LoanTerms{
		Principal:   testutil.Dec("1000"),
		TermDays:    180,
		StartDate:   datetime.MustParseDate("2025-04-01"),
		MonthlyRate: testutil.Dec("0.05"),
	}

	_, err := calc.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err, "values at the limits are accepted")

	terms.TermDays = 181
	_, err = calc.Calculate(terms, testutil.ReferenceFees())
	assert.ErrorIs(t, err, loans.ErrInvalidTerm)

	terms.TermDays = 180
	terms.MonthlyRate = testutil.Dec("0.0501")
	_, err = calc.Calculate(terms, testutil.ReferenceFees())
	assert.ErrorIs(t, err, loans.ErrInvalidRate)
}

func TestCalculateLongestTermWithoutLimits(t *testing.T) {
	start := datetime.MustParseDate("2025-04-01")
	summary, err := loans.Calculate(loans.LoanTerms{
		Principal:   testutil.Dec("1000"),
		TermDays:    constants.MaxTermDays,
		StartDate:   start,
		MonthlyRate: decimal.Zero,
	}, testutil.ReferenceFees())
	require.NoError(t, err)

	assert.Equal(t, loans.NumberOfRepayments(constants.MaxTermDays), summary.NumberOfRepayments)
	assert.Len(t, summary.Schedule, summary.NumberOfRepayments)
	assert.True(t, summary.Fees.ServiceExclVAT.IsPositive())
	assert.True(t, summary.TotalRepayment.GreaterThanOrEqual(summary.Principal))
	assert.True(t, summary.MaturityDate.After(start))

	_, err = loans.NewCalculator(nil, loans.Limits{}).Calculate(loans.LoanTerms{
		Principal:   testutil.Dec("1000"),
		TermDays:    constants.MaxTermDays + 1,
		StartDate:   start,
		MonthlyRate: decimal.Zero,
	}, testutil.ReferenceFees())
	assert.ErrorIs(t, err, loans.ErrInvalidTerm, "zero limits still apply the hard ceiling")
}

func TestCalculateIsDeterministic(t *testing.T) {
	terms := loans.LoanTerms{
		Principal:   testutil.Dec("3333.33"),
		TermDays:    97,
		StartDate:   datetime.MustParseDate("2024-01-31"),
		MonthlyRate: testutil.Dec("0.0375"),
	}.WithSalaryDay(25)

	first, err := loans.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err)
	second, err := loans.Calculate(terms, testutil.ReferenceFees())
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)

	assert.Equal(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, first, second)
}

func TestCalculateInvariants(t *testing.T) {
	principals := []string{"0.01", "1", "99.99", "1000", "1000.01", "1234.56", "7777.77", "25000", "100000"}
	termDays := []int{1, 5, 29, 30, 31, 45, 59, 60, 61, 90, 180, 365, 720}
	rates := []string{"0", "0.01", "0.03", "0.05"}
	starts := []string{"2024-01-31", "2024-02-29", "2025-03-31", "2025-12-15"}
	salaryDays := []int{0, 1, 15, 28, 30, 31}

	fees := testutil.ReferenceFees()
	for _, p := range principals {
		for _, days := range termDays {
			for _, r := range rates {
				for _, s := range starts {
					for _, sd := range salaryDays {
						terms := loans.LoanTerms{
							Principal:   testutil.Dec(p),
							TermDays:    days,
							StartDate:   datetime.MustParseDate(s),
							MonthlyRate: testutil.Dec(r),
						}
						if sd > 0 {
							terms = terms.WithSalaryDay(sd)
						}

						summary, err := loans.Calculate(terms, fees)
						require.NoError(t, err, "terms %+v", terms)
						testutil.AssertSummaryInvariants(t, terms, fees, summary)
					}
				}
			}
		}
	}
}

func TestTotalRepaymentMonotonicInPrincipal(t *testing.T) {
	fees := testutil.ReferenceFees()
	previous := decimal.Zero
	for cents := int64(100); cents <= 5_000_000; cents += 7919 {
		terms := loans.LoanTerms{
			Principal:   decimal.New(cents, -2),
			TermDays:    60,
			StartDate:   datetime.MustParseDate("2025-04-01"),
			MonthlyRate: testutil.Dec("0.05"),
		}
		summary, err := loans.Calculate(terms, fees)
		require.NoError(t, err)
		assert.True(t, summary.TotalRepayment.GreaterThanOrEqual(previous),
			"total repayment decreased at principal %s", terms.Principal)
		previous = summary.TotalRepayment
	}
}
