package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingField is returned when a required snapshot value is absent.
	ErrMissingField = errors.New("required field missing")
	// ErrInvalidDate is returned when a date string is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidWeekday is returned when a timetable day name cannot be parsed.
	ErrInvalidWeekday = errors.New("invalid day of week")
	// ErrUnknownSubject is returned when a subject id is not part of the snapshot.
	ErrUnknownSubject = errors.New("unknown subject")
)

// FieldError identifies the input field that made a calculation impossible.
type FieldError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: %v (got %q)", e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying sentinel.
func (e *FieldError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func missing(field string) error {
	return &FieldError{Field: field, Err: ErrMissingField}
}
