// Package errors provides coded structured errors for the gearbox framework.
//
// Overview:
//   - Responsibility: Classify failures with stable codes and wrap causes
//   - Key Types: Code for classification, E for the structured error value
//   - Concurrency Model: All functions are safe for concurrent use
//   - Error Semantics: Compatible with standard library errors.Is/As wrapping
//   - Performance Notes: Minimal allocations, errors are plain values
//
// Usage:
//
//	err := errors.NotFoundKey("sqlalchemy.url")
//	if errors.IsCode(err, errors.CodeNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Code classifies an error. Codes are part of the public contract: callers
// branch on them instead of matching error strings.
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeFailedSetup     Code = "FAILED_SETUP"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

// E is a structured error carrying a code, the failing operation and an
// optional underlying cause.
type E struct {
	Code Code   // Error classification code
	Op   string // Operation that failed (e.g. "config.delete")
	Err  error  // Underlying error, may be nil
	Msg  string // Human-readable message
}

// Error implements the error interface.
func (e *E) Error() string {
	switch {
	case e.Err != nil && e.Msg != "":
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *E) Unwrap() error {
	return e.Err
}

// New creates an error with the given code and message.
func New(code Code, msg string) error {
	return &E{Code: code, Msg: msg}
}

// Newf creates an error with the given code and formatted message.
func Newf(code Code, format string, args ...any) error {
	return &E{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with a code and the operation that failed.
func Wrap(code Code, op string, err error) error {
	return &E{Code: code, Op: op, Err: err}
}

// Wrapf wraps an existing error with a code, operation and formatted message.
func Wrapf(code Code, op string, err error, format string, args ...any) error {
	return &E{Code: code, Op: op, Err: err, Msg: fmt.Sprintf(format, args...)}
}

// NotFoundKey builds the canonical error for a missing configuration key.
func NotFoundKey(key string) error {
	return &E{Code: CodeNotFound, Msg: fmt.Sprintf("no such configuration key %q", key)}
}

// CodeOf extracts the code from an error, unwrapping as needed.
// Returns the empty code when the error carries none.
func CodeOf(err error) Code {
	var e *E
	if err != nil && errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether the error carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Is reports whether any error in err's chain matches target.
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
