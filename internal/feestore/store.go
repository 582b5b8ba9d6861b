// Package feestore keeps effective-dated versions of the regulated fee
// parameters. A regulatory change is recorded as a new version with the date
// it takes effect; quotes use the version in force on the loan start date.
package feestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no version is in force on a date.
	ErrNotFound = errors.New("fee schedule not found")

	// ErrDuplicateEffectiveDate is returned when a version already takes
	// effect on the same date.
	ErrDuplicateEffectiveDate = errors.New("fee schedule already exists for effective date")
)

// Schedule is one version of the fee parameters.
type Schedule struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	EffectiveFrom civil.Date      `json:"effectiveFrom"`
	Fees          loans.FeeConfig `json:"fees"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Store persists fee schedule versions.
type Store interface {
	// Put records a new version, assigning an ID and creation time when empty.
	Put(ctx context.Context, s Schedule) (Schedule, error)
	// EffectiveAt returns the latest version whose EffectiveFrom is on or before date.
	EffectiveAt(ctx context.Context, date civil.Date) (Schedule, error)
	// List returns every version ordered by EffectiveFrom.
	List(ctx context.Context) ([]Schedule, error)
	Close() error
}

// prepare validates s and fills in generated fields.
func prepare(s Schedule, now time.Time) (Schedule, error) {
	if !s.EffectiveFrom.IsValid() {
		return s, fmt.Errorf("invalid effective date %s", s.EffectiveFrom)
	}
	if err := s.Fees.Validate(); err != nil {
		return s, err
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Name == "" {
		s.Name = s.EffectiveFrom.String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now.UTC()
	}
	return s, nil
}

// Seed records fees as the initial version, in force from the earliest
// representable date, unless the store already holds any version.
func Seed(ctx context.Context, logger *zap.Logger, store Store, fees loans.FeeConfig) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list fee schedules: %w", err)
	}
	if len(existing) > 0 {
		logger.Debug(fmt.Sprintf("fee store already holds %d schedules, not seeding", len(existing)),
			zap.String("op", "feestore.Seed"),
		)
		return nil
	}

	seeded, err := store.Put(ctx, Schedule{
		Name:          constants.InitialFeeScheduleName,
		EffectiveFrom: civil.Date{Year: 1, Month: time.January, Day: 1},
		Fees:          fees,
	})
	if err != nil {
		return fmt.Errorf("failed to seed fee schedule: %w", err)
	}
	logger.Info("seeded fee schedule from configuration",
		zap.String("op", "feestore.Seed"),
		zap.String("id", seeded.ID),
	)
	return nil
}
