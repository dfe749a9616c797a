// Package errors defines the structured error taxonomy shared by the
// derivation engine, the steady-state segmenter and their collaborators.
// Every failure surfaced to a caller carries a stable code so that tooling
// can classify it without parsing messages.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies a class of data-processing failure.
type Code string

const (
	// CodeUnknownQuantity indicates a quantity name that matches no
	// derivation rule and no name-table entry.
	CodeUnknownQuantity Code = "UNKNOWN_QUANTITY"
	// CodeMissingColumn indicates a name-table entry referencing a raw
	// column absent from the loaded dataset.
	CodeMissingColumn Code = "MISSING_COLUMN"
	// CodeDependencyCycle indicates a cycle in a derivation rule set.
	// Unreachable with the built-in rules; a defensive check for custom ones.
	CodeDependencyCycle Code = "DEPENDENCY_CYCLE"
	// CodeIncompatibleUnits indicates arithmetic or conversion between
	// quantities of different physical dimension.
	CodeIncompatibleUnits Code = "INCOMPATIBLE_UNITS"
	// CodeInvalidThreshold indicates binning thresholds that are not
	// strictly ascending or number fewer than two.
	CodeInvalidThreshold Code = "INVALID_THRESHOLD"
)

// Error is a structured processing error with a stable code, a
// human-readable message and optional details.
type Error struct {
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code, so that
// errors.Is comparisons work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error with the given code and message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewWithDetails creates a new Error with additional details
func NewWithDetails(code Code, message string, details interface{}) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// Wrap creates a new Error wrapping an underlying cause
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Helper constructors for the fixed taxonomy

// UnknownQuantity creates an error for a name not covered by any
// derivation rule or name-table entry.
func UnknownQuantity(name string) *Error {
	return NewWithDetails(CodeUnknownQuantity,
		fmt.Sprintf("unknown quantity %q", name), name)
}

// MissingColumn creates an error for a raw column absent from the dataset.
func MissingColumn(column string) *Error {
	return NewWithDetails(CodeMissingColumn,
		fmt.Sprintf("raw column %q not present in dataset", column), column)
}

// DependencyCycle creates an error describing a cyclic derivation chain.
func DependencyCycle(chain []string) *Error {
	return NewWithDetails(CodeDependencyCycle,
		fmt.Sprintf("derivation cycle: %s", strings.Join(chain, " -> ")), chain)
}

// IncompatibleUnits creates an error for dimensionally incompatible
// unit arithmetic or conversion.
func IncompatibleUnits(from, to string) *Error {
	return New(CodeIncompatibleUnits,
		fmt.Sprintf("units %q and %q have different physical dimensions", from, to))
}

// InvalidThreshold creates an error for malformed binning thresholds.
func InvalidThreshold(message string) *Error {
	return New(CodeInvalidThreshold, message)
}

// IsCode reports whether err (or anything it wraps) is an *Error with
// the given code.
func IsCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// As unwraps err into an *Error if possible.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
