// Package quotecache memoises loan cost summaries. A summary depends only on
// the loan terms and the fee configuration, so both are folded into the key
// and an entry never needs invalidating; the TTL only bounds memory.
package quotecache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"go.uber.org/zap"
)

// Cache stores encoded summaries by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Close() error
}

// Key fingerprints the inputs of a calculation. Decimal values are
// normalised so "1000" and "1000.00" share an entry.
func Key(prefix string, terms loans.LoanTerms, fees loans.FeeConfig) string {
	salaryDay := "-"
	if terms.SalaryDay != nil {
		salaryDay = strconv.Itoa(*terms.SalaryDay)
	}

	canonical := strings.Join([]string{
		terms.Principal.String(),
		strconv.Itoa(terms.TermDays),
		terms.StartDate.String(),
		terms.MonthlyRate.String(),
		salaryDay,
		fees.InitiationBase.String(),
		fees.InitiationRate.String(),
		fees.InitiationThreshold.String(),
		fees.InitiationCap.String(),
		fees.ServiceFeePerMonth.String(),
		fees.ServiceFeeCap.String(),
		fees.VATRate.String(),
	}, "|")

	return prefix + strconv.FormatUint(xxhash.Sum64String(canonical), 16)
}

// CachedCalculator consults a Cache before running the calculator. Cache
// failures are logged and never fail a calculation.
type CachedCalculator struct {
	calc   *loans.Calculator
	cache  Cache
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedCalculator wraps calc. A nil cache disables memoisation.
func NewCachedCalculator(logger *zap.Logger, calc *loans.Calculator, cache Cache, prefix string, ttl time.Duration) *CachedCalculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedCalculator{
		calc:   calc,
		cache:  cache,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

// Calculate returns the summary for terms and fees and whether it was
// served from the cache. Invalid inputs are rejected before the cache is
// consulted.
func (c *CachedCalculator) Calculate(ctx context.Context, terms loans.LoanTerms, fees loans.FeeConfig) (loans.LoanCostSummary, bool, error) {
	if c.cache == nil {
		summary, err := c.calc.Calculate(terms, fees)
		return summary, false, err
	}

	if err := c.calc.Validate(terms, fees); err != nil {
		return loans.LoanCostSummary{}, false, err
	}

	key := Key(c.prefix, terms, fees)
	if cached, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("quote cache read failed",
			zap.String("op", "quotecache.Calculate"),
			zap.String("key", key),
			zap.Error(err),
		)
	} else if ok {
		var summary loans.LoanCostSummary
		err := json.Unmarshal([]byte(cached), &summary)
		if err == nil {
			return summary, true, nil
		}
		c.logger.Warn("discarding undecodable cached quote",
			zap.String("op", "quotecache.Calculate"),
			zap.String("key", key),
			zap.Error(err),
		)
	}

	summary, err := c.calc.Calculate(terms, fees)
	if err != nil {
		return loans.LoanCostSummary{}, false, err
	}

	encoded, err := json.Marshal(summary)
	if err != nil {
		return loans.LoanCostSummary{}, false, fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := c.cache.Set(ctx, key, string(encoded), c.ttl); err != nil {
		c.logger.Warn("quote cache write failed",
			zap.String("op", "quotecache.Calculate"),
			zap.String("key", key),
			zap.Error(err),
		)
	}
	return summary, false, nil
}
