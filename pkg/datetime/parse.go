// Package datetime provides calendar date utility functions.
package datetime

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/iwvelando/loan-cost/pkg/constants"
)

const (
	// DateLayout is the format expected in config files and is also the output
	// date format.
	DateLayout = constants.DateLayout
)

// ParseDate parses a YYYY-MM-DD string into a civil.Date.
func ParseDate(value string) (civil.Date, error) {
	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q, expected %s: %w", value, DateLayout, err)
	}
	return d, nil
}

// MustParseDate parses a date string and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseDate(value string) civil.Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay returns the date for day in the given month, pulling the day back
// to the month's last day when the month is shorter. It never overflows into
// the following month.
func ClampDay(year int, month time.Month, day int) civil.Date {
	// Normalise month overflow (e.g. month 13) before clamping.
	first := civil.DateOf(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	if last := DaysIn(first.Year, first.Month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return civil.Date{Year: first.Year, Month: first.Month, Day: day}
}

// AddMonthsClamped adds months calendar months to d. When the target month
// has fewer days than d.Day the result is that month's last day, so
// 2025-01-31 plus one month is 2025-02-28 rather than 2025-03-03.
func AddMonthsClamped(d civil.Date, months int) civil.Date {
	return ClampDay(d.Year, d.Month+time.Month(months), d.Day)
}

// NextDayOfMonth returns the first date on or after from whose day-of-month
// is day, clamped to the length of each candidate month.
func NextDayOfMonth(from civil.Date, day int) civil.Date {
	candidate := ClampDay(from.Year, from.Month, day)
	if candidate.Before(from) {
		candidate = ClampDay(from.Year, from.Month+1, day)
	}
	return candidate
}

