package loans

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/datetime"
	"github.com/iwvelando/loan-cost/pkg/mathutil"
)

// NumberOfRepayments is one installment per started 30-day month, minimum one.
func NumberOfRepayments(termDays int) int {
	n := mathutil.CeilDiv(termDays, constants.DaysPerMonth)
	if n < 1 {
		return 1
	}
	return n
}

// MaturityDate is the day the term ends.
func MaturityDate(start civil.Date, termDays int) civil.Date {
	return start.AddDays(termDays)
}

// ValidateTermDays checks the term is positive and within the absolute
// ceiling of constants.MaxTermDays.
func ValidateTermDays(termDays int) error {
	if termDays <= 0 {
		return invalid(ErrInvalidTerm, "termDays", termDays, "must be greater than zero")
	}
	if termDays > constants.MaxTermDays {
		return invalid(ErrInvalidTerm, "termDays", termDays,
			fmt.Sprintf("must not exceed %d", constants.MaxTermDays))
	}
	return nil
}

// ValidateSalaryDay checks an optional pay day.
func ValidateSalaryDay(salaryDay *int) error {
	if salaryDay == nil {
		return nil
	}
	if *salaryDay < 1 || *salaryDay > constants.MaxSalaryDay {
		return invalid(ErrInvalidSalaryDay, "salaryDay", *salaryDay, "must be between 1 and 31")
	}
	return nil
}

// BuildSchedule returns n strictly increasing due dates.
//
// Cadence point k is start plus k calendar months, always counted from start
// so a short month never drags later points backwards. Without a salary day
// the cadence points are the due dates. With one, each due date is the first
// occurrence of that day (clamped to the month length) on or after its
// cadence point and after the previous due date.
func BuildSchedule(start civil.Date, termDays, n int, salaryDay *int) ([]civil.Date, error) {
	if err := ValidateTermDays(termDays); err != nil {
		return nil, err
	}
	if n < 1 || n > NumberOfRepayments(termDays) {
		return nil, invalid(ErrInvalidTerm, "numberOfRepayments", n, "must be between 1 and one per started month of the term")
	}
	if err := ValidateSalaryDay(salaryDay); err != nil {
		return nil, err
	}

	dates := make([]civil.Date, 0, n)
	for k := 1; k <= n; k++ {
		due := datetime.AddMonthsClamped(start, k)
		if salaryDay != nil {
			due = datetime.NextDayOfMonth(due, *salaryDay)
			if len(dates) > 0 && !due.After(dates[len(dates)-1]) {
				prev := dates[len(dates)-1]
				due = datetime.NextDayOfMonth(datetime.ClampDay(prev.Year, prev.Month+1, 1), *salaryDay)
			}
		}
		dates = append(dates, due)
	}
	return dates, nil
}

// Overrun reports whether the last due date falls more than one cadence
// period after maturity.
func Overrun(dates []civil.Date, maturity civil.Date) bool {
	if len(dates) == 0 {
		return false
	}
	return dates[len(dates)-1].DaysSince(maturity) > constants.CadenceDays
}
