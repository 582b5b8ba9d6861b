package loans

import (
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Validate rejects fee parameters that would yield negative fees.
func (c FeeConfig) Validate() error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"initiationBase", c.InitiationBase},
		{"initiationRate", c.InitiationRate},
		{"initiationThreshold", c.InitiationThreshold},
		{"initiationCap", c.InitiationCap},
		{"serviceFeePerMonth", c.ServiceFeePerMonth},
		{"serviceFeeCap", c.ServiceFeeCap},
		{"vatRate", c.VATRate},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return invalid(ErrInvalidFeeConfig, f.name, f.value, "must not be negative")
		}
	}
	return nil
}

// InitiationFeeExclVAT applies the capped marginal formula
// min(cap, base + rate * max(0, principal - threshold)). The result is not
// rounded.
func InitiationFeeExclVAT(principal decimal.Decimal, cfg FeeConfig) decimal.Decimal {
	excess := mathutil.Max(decimal.Zero, principal.Sub(cfg.InitiationThreshold))
	fee := cfg.InitiationBase.Add(cfg.InitiationRate.Mul(excess))
	return mathutil.Min(cfg.InitiationCap, fee)
}

// ServiceFeeExclVAT charges the monthly service fee for every started 30-day
// month of the term, capped. The result is not rounded.
func ServiceFeeExclVAT(termDays int, cfg FeeConfig) decimal.Decimal {
	months := decimal.NewFromInt(int64(mathutil.CeilDiv(termDays, constants.DaysPerMonth)))
	return mathutil.Min(cfg.ServiceFeeCap, cfg.ServiceFeePerMonth.Mul(months))
}

// ResolveFees computes the initiation and service fee for a principal and
// term. Each reported figure is rounded to the cent exactly once, from the
// unrounded fee, so the VAT-inclusive values never inherit an earlier rounding.
func ResolveFees(principal decimal.Decimal, termDays int, cfg FeeConfig) (FeeBreakdown, error) {
	if !principal.IsPositive() {
		return FeeBreakdown{}, invalid(ErrInvalidPrincipal, "principal", principal, "must be greater than zero")
	}
	if err := ValidateTermDays(termDays); err != nil {
		return FeeBreakdown{}, err
	}
	if err := cfg.Validate(); err != nil {
		return FeeBreakdown{}, err
	}

	vatFactor := decimal.NewFromInt(1).Add(cfg.VATRate)
	initiation := InitiationFeeExclVAT(principal, cfg)
	service := ServiceFeeExclVAT(termDays, cfg)

	return FeeBreakdown{
		InitiationExclVAT: mathutil.RoundCent(initiation),
		InitiationInclVAT: mathutil.RoundCent(initiation.Mul(vatFactor)),
		ServiceExclVAT:    mathutil.RoundCent(service),
		ServiceInclVAT:    mathutil.RoundCent(service.Mul(vatFactor)),
	}, nil
}
