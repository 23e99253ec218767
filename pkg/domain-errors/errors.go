// Package domainerrors defines the error taxonomy shared by all features.
//
// Every error crossing a package boundary carries a Code so callers can branch
// on category (validation vs not-found vs unauthorized) without string
// matching, and so the transport layer can map errors to status codes in one
// place.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error into one of the domain categories.
type Code string

const (
	// CodeValidation marks malformed or missing required input. Rejected
	// before any entity construction, never retried.
	CodeValidation Code = "VALIDATION"
	// CodeInvalidInput marks a single field value that failed parsing at a
	// trust boundary.
	CodeInvalidInput Code = "INVALID_INPUT"
	// CodeNotFound marks an unknown business key, document id, or record.
	CodeNotFound Code = "NOT_FOUND"
	// CodeUnauthorized marks an account that does not own the record and
	// holds no extra grant. Distinct from CodeNotFound so the boundary can
	// decide whether to hide existence.
	CodeUnauthorized Code = "UNAUTHORIZED"
	// CodeConflict marks a uniqueness or state conflict.
	CodeConflict Code = "CONFLICT"
	// CodeInternal marks an infrastructure failure (store, queue, payment).
	CodeInternal Code = "INTERNAL"
	// CodeInvariantViolation marks a configuration defect such as a missing
	// type-table entry. Fatal, logged, never retried.
	CodeInvariantViolation Code = "INVARIANT_VIOLATION"
)

// Error is the concrete domain error type.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. The wrapped error
// remains reachable through errors.Unwrap.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or any error it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
