package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/iwvelando/loan-cost/internal/feestore"
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/datetime"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/iwvelando/loan-cost/pkg/output"
	"github.com/iwvelando/loan-cost/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type calculateOptions struct {
	principal    string
	termDays     int
	start        string
	rate         string
	salaryDay    int
	outputFormat string
}

func calculateCmd(root *rootOptions) *cobra.Command {
	opts := &calculateOptions{}

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Print the cost breakdown and repayment schedule of a loan",
		Long: `Calculate fees, interest, total repayment and the installment schedule.

Examples:
  loan-cost calculate --principal 1000 --term-days 30 --start 2025-04-01 --rate 0.05
  loan-cost calculate --principal 5000 --term-days 90 --rate 0.03 --salary-day 25 --output-format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.principal, "principal", "", "amount borrowed, e.g. 1000 or 1250.50")
	cmd.Flags().IntVar(&opts.termDays, "term-days", 0, "loan term in days")
	cmd.Flags().StringVar(&opts.start, "start", "", "loan start date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&opts.rate, "rate", "", "monthly interest rate as a fraction, e.g. 0.05")
	cmd.Flags().IntVar(&opts.salaryDay, "salary-day", 0, "day of month (1-31) to align repayments with")
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	_ = cmd.MarkFlagRequired("principal")
	_ = cmd.MarkFlagRequired("term-days")
	_ = cmd.MarkFlagRequired("rate")

	return cmd
}

func runCalculate(cmd *cobra.Command, root *rootOptions, opts *calculateOptions) error {
	conf, logger, err := loadConfiguration(root, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if opts.outputFormat != "" {
		outputFormat = opts.outputFormat
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	terms, err := opts.terms(cmd.Flags().Changed("salary-day"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openFeeStore(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	fees := conf.Fees
	sched, err := store.EffectiveAt(ctx, terms.StartDate)
	switch {
	case err == nil:
		fees = sched.Fees
		logger.Debug(fmt.Sprintf("using fee schedule %q effective from %s", sched.Name, sched.EffectiveFrom),
			zap.String("op", "main.runCalculate"),
		)
	case errors.Is(err, feestore.ErrNotFound):
	default:
		return fmt.Errorf("failed to resolve fee schedule: %w", err)
	}

	calc := loans.NewCalculator(logger, conf.CalculatorLimits())
	summary, err := calc.Calculate(terms, fees)
	if err != nil {
		logger.Error("failed to calculate loan cost",
			zap.String("op", "main.runCalculate"),
			zap.Error(err),
		)
		return err
	}

	for _, warning := range summary.Warnings {
		logger.Warn(warning,
			zap.String("op", "main.runCalculate"),
		)
	}

	return output.Write(cmd.OutOrStdout(), outputFormat, summary)
}

// terms converts the flag values into loan terms.
func (o *calculateOptions) terms(salaryDaySet bool) (loans.LoanTerms, error) {
	principal, err := decimal.NewFromString(o.principal)
	if err != nil {
		return loans.LoanTerms{}, fmt.Errorf("invalid --principal %q: %w", o.principal, err)
	}
	rate, err := decimal.NewFromString(o.rate)
	if err != nil {
		return loans.LoanTerms{}, fmt.Errorf("invalid --rate %q: %w", o.rate, err)
	}

	start := civil.DateOf(time.Now())
	if o.start != "" {
		if start, err = datetime.ParseDate(o.start); err != nil {
			return loans.LoanTerms{}, fmt.Errorf("invalid --start: %w", err)
		}
	}

	terms := loans.LoanTerms{
		Principal:   principal,
		TermDays:    o.termDays,
		StartDate:   start,
		MonthlyRate: rate,
	}
	if salaryDaySet {
		terms = terms.WithSalaryDay(o.salaryDay)
	}
	return terms, nil
}
