// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/shopspring/decimal"
)

// ValidateFeeSettings returns warnings for fee parameters that are legal but
// probably a configuration mistake. Hard errors (negative values) are
// reported by the calculator itself.
func ValidateFeeSettings(cfg loans.FeeConfig) []string {
	var warnings []string

	if err := cfg.Validate(); err != nil {
		warnings = append(warnings, err.Error())
	}

	if cfg.VATRate.GreaterThan(decimal.NewFromInt(1)) {
		warnings = append(warnings, fmt.Sprintf("fees.vatRate %s is above 100%%; rates are fractions, e.g. 0.15", cfg.VATRate))
	}
	if cfg.InitiationRate.GreaterThan(decimal.NewFromInt(1)) {
		warnings = append(warnings, fmt.Sprintf("fees.initiationRate %s is above 100%%; rates are fractions, e.g. 0.10", cfg.InitiationRate))
	}
	if cfg.InitiationCap.IsZero() {
		warnings = append(warnings, "fees.initiationCap is zero; no initiation fee will be charged")
	} else if cfg.InitiationBase.GreaterThan(cfg.InitiationCap) {
		warnings = append(warnings, fmt.Sprintf("fees.initiationBase %s exceeds fees.initiationCap %s; the cap always applies",
			cfg.InitiationBase, cfg.InitiationCap))
	}
	if cfg.ServiceFeeCap.IsZero() {
		warnings = append(warnings, "fees.serviceFeeCap is zero; no service fee will be charged")
	} else if cfg.ServiceFeePerMonth.GreaterThan(cfg.ServiceFeeCap) {
		warnings = append(warnings, fmt.Sprintf("fees.serviceFeePerMonth %s exceeds fees.serviceFeeCap %s",
			cfg.ServiceFeePerMonth, cfg.ServiceFeeCap))
	}

	return warnings
}
