// Package loans computes the cost of a short-term loan: fees, simple
// interest, total repayment and the dated installment schedule.
//
// All money is held in shopspring/decimal and rounded to the cent at exactly
// two points: VAT application on each fee, and the division of the total
// repayment into installments. Calendar dates are civil.Date values, so no
// time zone or clock reading is involved and the same inputs always produce
// the same summary.
package loans

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// LoanTerms are the borrower-facing inputs of a single calculation.
type LoanTerms struct {
	Principal   decimal.Decimal
	TermDays    int
	StartDate   civil.Date
	MonthlyRate decimal.Decimal
	SalaryDay   *int
}

// WithSalaryDay returns a copy of the terms aligned to the given pay day.
func (t LoanTerms) WithSalaryDay(day int) LoanTerms {
	t.SalaryDay = &day
	return t
}

// FeeConfig holds the regulated fee formula parameters. Values come from
// configuration so a regulatory change never touches calculation code.
type FeeConfig struct {
	InitiationBase      decimal.Decimal `mapstructure:"initiationBase" yaml:"initiationBase" json:"initiationBase"`
	InitiationRate      decimal.Decimal `mapstructure:"initiationRate" yaml:"initiationRate" json:"initiationRate"`
	InitiationThreshold decimal.Decimal `mapstructure:"initiationThreshold" yaml:"initiationThreshold" json:"initiationThreshold"`
	InitiationCap       decimal.Decimal `mapstructure:"initiationCap" yaml:"initiationCap" json:"initiationCap"`
	ServiceFeePerMonth  decimal.Decimal `mapstructure:"serviceFeePerMonth" yaml:"serviceFeePerMonth" json:"serviceFeePerMonth"`
	ServiceFeeCap       decimal.Decimal `mapstructure:"serviceFeeCap" yaml:"serviceFeeCap" json:"serviceFeeCap"`
	VATRate             decimal.Decimal `mapstructure:"vatRate" yaml:"vatRate" json:"vatRate"`
}

// Limits bound the accepted terms. A zero value disables the bound.
type Limits struct {
	MaxTermDays    int
	MaxMonthlyRate decimal.Decimal
}

// FeeBreakdown holds both fees before and after VAT, each rounded to the cent.
type FeeBreakdown struct {
	InitiationExclVAT decimal.Decimal `json:"initiationExclVat"`
	InitiationInclVAT decimal.Decimal `json:"initiationInclVat"`
	ServiceExclVAT    decimal.Decimal `json:"serviceExclVat"`
	ServiceInclVAT    decimal.Decimal `json:"serviceInclVat"`
}

// TotalInclVAT is the sum of both fees including VAT.
func (f FeeBreakdown) TotalInclVAT() decimal.Decimal {
	return f.InitiationInclVAT.Add(f.ServiceInclVAT)
}

// Installment is a single scheduled repayment.
type Installment struct {
	DueDate civil.Date      `json:"dueDate"`
	Amount  decimal.Decimal `json:"amount"`
}

// LoanCostSummary is the complete, immutable result of a calculation.
type LoanCostSummary struct {
	Principal          decimal.Decimal `json:"principal"`
	TotalInterest      decimal.Decimal `json:"totalInterest"`
	Fees               FeeBreakdown    `json:"fees"`
	TotalRepayment     decimal.Decimal `json:"totalRepayment"`
	MonthlyRepayment   decimal.Decimal `json:"monthlyRepayment"`
	NumberOfRepayments int             `json:"numberOfRepayments"`
	CostOfCredit       decimal.Decimal `json:"costOfCredit"`
	MaturityDate       civil.Date      `json:"maturityDate"`
	Schedule           []Installment   `json:"schedule"`
	Warnings           []string        `json:"warnings,omitempty"`
}

// ScheduleTotal adds up every installment amount.
func (s LoanCostSummary) ScheduleTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range s.Schedule {
		total = total.Add(inst.Amount)
	}
	return total
}
