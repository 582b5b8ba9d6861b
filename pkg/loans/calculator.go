package loans

import (
	"fmt"

	"github.com/iwvelando/loan-cost/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Calculator turns loan terms and a fee configuration into a LoanCostSummary.
// It holds only immutable settings and is safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
	limits Limits
}

// NewCalculator creates a calculator that enforces the given limits.
func NewCalculator(logger *zap.Logger, limits Limits) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, limits: limits}
}

// Calculate is a convenience wrapper using no limits and no logging.
func Calculate(terms LoanTerms, fees FeeConfig) (LoanCostSummary, error) {
	return NewCalculator(nil, Limits{}).Calculate(terms, fees)
}

// Validate checks every input up front so a calculation either fully
// succeeds or fails before computing anything.
func (c *Calculator) Validate(terms LoanTerms, fees FeeConfig) error {
	if !terms.Principal.IsPositive() {
		return invalid(ErrInvalidPrincipal, "principal", terms.Principal, "must be greater than zero")
	}
	if !mathutil.IsCentPrecise(terms.Principal) {
		return invalid(ErrInvalidPrincipal, "principal", terms.Principal, "must not have fractions of a cent")
	}
	if err := ValidateTermDays(terms.TermDays); err != nil {
		return err
	}
	if c.limits.MaxTermDays > 0 && terms.TermDays > c.limits.MaxTermDays {
		return invalid(ErrInvalidTerm, "termDays", terms.TermDays,
			fmt.Sprintf("must not exceed %d", c.limits.MaxTermDays))
	}
	if terms.MonthlyRate.IsNegative() {
		return invalid(ErrInvalidRate, "monthlyRate", terms.MonthlyRate, "must not be negative")
	}
	if c.limits.MaxMonthlyRate.IsPositive() && terms.MonthlyRate.GreaterThan(c.limits.MaxMonthlyRate) {
		return invalid(ErrInvalidRate, "monthlyRate", terms.MonthlyRate,
			fmt.Sprintf("must not exceed %s", c.limits.MaxMonthlyRate))
	}
	if !terms.StartDate.IsValid() {
		return invalid(ErrInvalidTerm, "startDate", terms.StartDate, "must be a valid calendar date")
	}
	if err := ValidateSalaryDay(terms.SalaryDay); err != nil {
		return err
	}
	return fees.Validate()
}

// Calculate computes fees, interest, the installment split and due dates.
//
// The base installment is total/n rounded half-up to the cent; every
// installment but the last equals it and the last takes the remainder, so the
// schedule always sums to the total repayment exactly.
func (c *Calculator) Calculate(terms LoanTerms, fees FeeConfig) (LoanCostSummary, error) {
	if err := c.Validate(terms, fees); err != nil {
		c.logger.Debug("rejected loan terms",
			zap.String("op", "loans.Calculate"),
			zap.Error(err),
		)
		return LoanCostSummary{}, err
	}

	breakdown, err := ResolveFees(terms.Principal, terms.TermDays, fees)
	if err != nil {
		return LoanCostSummary{}, err
	}

	interest, err := AccrueInterest(terms.Principal, terms.MonthlyRate, terms.TermDays)
	if err != nil {
		return LoanCostSummary{}, err
	}

	n := NumberOfRepayments(terms.TermDays)
	dates, err := BuildSchedule(terms.StartDate, terms.TermDays, n, terms.SalaryDay)
	if err != nil {
		return LoanCostSummary{}, err
	}

	total := mathutil.Sum(terms.Principal, interest, breakdown.InitiationInclVAT, breakdown.ServiceInclVAT)
	base := mathutil.RoundCent(total.Div(decimal.NewFromInt(int64(n))))
	last := total.Sub(base.Mul(decimal.NewFromInt(int64(n - 1))))

	schedule := make([]Installment, n)
	for i, due := range dates {
		amount := base
		if i == n-1 {
			amount = last
		}
		schedule[i] = Installment{DueDate: due, Amount: amount}
	}

	maturity := MaturityDate(terms.StartDate, terms.TermDays)
	var warnings []string
	if Overrun(dates, maturity) {
		warnings = append(warnings, fmt.Sprintf("last installment on %s falls more than one month after maturity on %s",
			dates[len(dates)-1], maturity))
	}

	c.logger.Debug(fmt.Sprintf("calculated loan cost: principal %s over %d days, total repayment %s in %d installments",
		mathutil.FormatCent(terms.Principal), terms.TermDays, mathutil.FormatCent(total), n),
		zap.String("op", "loans.Calculate"),
	)

	return LoanCostSummary{
		Principal:          terms.Principal,
		TotalInterest:      interest,
		Fees:               breakdown,
		TotalRepayment:     total,
		MonthlyRepayment:   base,
		NumberOfRepayments: n,
		CostOfCredit:       total.Sub(terms.Principal),
		MaturityDate:       maturity,
		Schedule:           schedule,
		Warnings:           warnings,
	}, nil
}
