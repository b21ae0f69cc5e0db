package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")

	// ErrConflict is returned when a record is no longer in a state that
	// allows the requested transition, e.g. confirming a dismissed entry.
	ErrConflict = errors.New("conflict")

	// ErrNoContent is returned when a dump has nothing to extract from.
	ErrNoContent = errors.New("no extractable content")

	// ErrCalendarNotLinked is returned by calendar lookups for users
	// without a linked external calendar.
	ErrCalendarNotLinked = errors.New("calendar not linked")

	// ErrCalendarUnavailable is returned when an explicit sync to the
	// external calendar did not produce an entry.
	ErrCalendarUnavailable = errors.New("calendar unavailable")
)

// FieldError is one rejected input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports every rejected field of an input at once.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	names := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		names[i] = fe.Field
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// FieldErrors collects field errors while an input is checked.
type FieldErrors []FieldError

// Add records message against field.
func (f *FieldErrors) Add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

// Check records message against field when bad is true.
func (f *FieldErrors) Check(bad bool, field, message string) {
	if bad {
		f.Add(field, message)
	}
}

// Err returns nil when nothing was recorded.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Errors: f}
}
