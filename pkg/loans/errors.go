package loans

import (
	"errors"
	"fmt"
)

// Sentinel errors, use with errors.Is().
var (
	ErrInvalidPrincipal = errors.New("invalid principal")
	ErrInvalidTerm      = errors.New("invalid term")
	ErrInvalidRate      = errors.New("invalid monthly rate")
	ErrInvalidSalaryDay = errors.New("invalid salary day")
	ErrInvalidFeeConfig = errors.New("invalid fee configuration")
)

// ValidationError describes which input was rejected and why. It unwraps to
// one of the sentinel errors above.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s (got %s)", e.Err, e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(sentinel error, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Value:  fmt.Sprint(value),
		Reason: reason,
		Err:    sentinel,
	}
}
