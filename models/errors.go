package models

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed or incomplete input. It is surfaced to
// the caller verbatim and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError reports an operation attempted against a phase or race
// that is not ready for it, or has already been processed. The caller needs
// to distinguish "wait for pending results" from "duplicate action", so the
// message carries the specific condition.
type StateConflictError struct {
	Msg string
}

func (e *StateConflictError) Error() string { return e.Msg }

// Conflictf builds a StateConflictError with a formatted message.
func Conflictf(format string, args ...interface{}) error {
	return &StateConflictError{Msg: fmt.Sprintf(format, args...)}
}

// NotEligibleError reports that a single entity fails category, gender or
// boat-class constraints. Batch operations collect these per entity instead
// of aborting.
type NotEligibleError struct {
	EntryID int
	Msg     string
}

func (e *NotEligibleError) Error() string { return e.Msg }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateConflict reports whether err is a StateConflictError.
func IsStateConflict(err error) bool {
	var se *StateConflictError
	return errors.As(err, &se)
}

// IsNotEligible reports whether err is a NotEligibleError.
func IsNotEligible(err error) bool {
	var ne *NotEligibleError
	return errors.As(err, &ne)
}
