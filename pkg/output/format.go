// Package output provides utilities for formatting and displaying loan cost
// summaries.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/format"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/iwvelando/loan-cost/pkg/mathutil"
)

// View is the wire representation of a LoanCostSummary: money as fixed
// two-decimal strings and dates as YYYY-MM-DD, so every consumer renders
// identical figures.
type View struct {
	Principal          string            `json:"principal"`
	TotalInterest      string            `json:"totalInterest"`
	Fees               FeesView          `json:"fees"`
	TotalRepayment     string            `json:"totalRepayment"`
	MonthlyRepayment   string            `json:"monthlyRepayment"`
	NumberOfRepayments int               `json:"numberOfRepayments"`
	CostOfCredit       string            `json:"costOfCredit"`
	MaturityDate       string            `json:"maturityDate"`
	Schedule           []InstallmentView `json:"schedule"`
	Warnings           []string          `json:"warnings,omitempty"`
}

// FeesView is the wire representation of a FeeBreakdown.
type FeesView struct {
	InitiationExclVAT string `json:"initiationExclVat"`
	InitiationInclVAT string `json:"initiationInclVat"`
	ServiceExclVAT    string `json:"serviceExclVat"`
	ServiceInclVAT    string `json:"serviceInclVat"`
}

// InstallmentView is the wire representation of an Installment.
type InstallmentView struct {
	Number  int    `json:"number"`
	DueDate string `json:"dueDate"`
	Amount  string `json:"amount"`
}

// NewView converts a summary into its wire representation.
func NewView(s loans.LoanCostSummary) View {
	schedule := make([]InstallmentView, len(s.Schedule))
	for i, inst := range s.Schedule {
		schedule[i] = InstallmentView{
			Number:  i + 1,
			DueDate: inst.DueDate.String(),
			Amount:  mathutil.FormatCent(inst.Amount),
		}
	}

	return View{
		Principal:     mathutil.FormatCent(s.Principal),
		TotalInterest: mathutil.FormatCent(s.TotalInterest),
		Fees: FeesView{
			InitiationExclVAT: mathutil.FormatCent(s.Fees.InitiationExclVAT),
			InitiationInclVAT: mathutil.FormatCent(s.Fees.InitiationInclVAT),
			ServiceExclVAT:    mathutil.FormatCent(s.Fees.ServiceExclVAT),
			ServiceInclVAT:    mathutil.FormatCent(s.Fees.ServiceInclVAT),
		},
		TotalRepayment:     mathutil.FormatCent(s.TotalRepayment),
		MonthlyRepayment:   mathutil.FormatCent(s.MonthlyRepayment),
		NumberOfRepayments: s.NumberOfRepayments,
		CostOfCredit:       mathutil.FormatCent(s.CostOfCredit),
		MaturityDate:       s.MaturityDate.String(),
		Schedule:           schedule,
		Warnings:           s.Warnings,
	}
}

// Write renders the summary in the requested format.
func Write(w io.Writer, format string, s loans.LoanCostSummary) error {
	switch format {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, s)
	case constants.OutputFormatCSV:
		return CsvFormat(w, s)
	case constants.OutputFormatJSON:
		return JSONFormat(w, s)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, s loans.LoanCostSummary) error {
	money := format.NumericCurrency

	lines := []string{
		"--- Loan cost summary ---",
		fmt.Sprintf("Principal                 | %s", money(s.Principal)),
		fmt.Sprintf("Total interest            | %s", money(s.TotalInterest)),
		fmt.Sprintf("Initiation fee (excl VAT) | %s", money(s.Fees.InitiationExclVAT)),
		fmt.Sprintf("Initiation fee (incl VAT) | %s", money(s.Fees.InitiationInclVAT)),
		fmt.Sprintf("Service fee (excl VAT)    | %s", money(s.Fees.ServiceExclVAT)),
		fmt.Sprintf("Service fee (incl VAT)    | %s", money(s.Fees.ServiceInclVAT)),
		fmt.Sprintf("Cost of credit            | %s", money(s.CostOfCredit)),
		fmt.Sprintf("Total repayment           | %s", money(s.TotalRepayment)),
		fmt.Sprintf("Monthly repayment         | %s", money(s.MonthlyRepayment)),
		fmt.Sprintf("Number of repayments      | %d", s.NumberOfRepayments),
		fmt.Sprintf("Maturity date             | %s", s.MaturityDate),
		"",
		"#  | Due date   | Amount",
		"__ | __________ | ______",
	}
	for i, inst := range s.Schedule {
		lines = append(lines, fmt.Sprintf("%-2d | %s | %s", i+1, inst.DueDate, money(inst.Amount)))
	}
	for _, warning := range s.Warnings {
		lines = append(lines, "warning: "+warning)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs the installment schedule in comma-separated value format.
func CsvFormat(w io.Writer, s loans.LoanCostSummary) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"number", "due date", "amount"}); err != nil {
		return err
	}
	for i, inst := range s.Schedule {
		record := []string{strconv.Itoa(i + 1), inst.DueDate.String(), mathutil.FormatCent(inst.Amount)}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	// The total row has no due date of its own.
	if err := writer.Write([]string{"total", "", mathutil.FormatCent(s.TotalRepayment)}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// JSONFormat outputs the summary view as indented JSON.
func JSONFormat(w io.Writer, s loans.LoanCostSummary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewView(s))
}
