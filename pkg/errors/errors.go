// Package errors provides structured error types with stable error codes.
//
// Every failure that crosses a package boundary is wrapped into an *Error
// carrying an ErrorCode. The HTTP layer maps codes to status codes and the
// CLI maps them to exit codes, so callers switch on codes instead of
// matching message strings.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a class of failure.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates the caller supplied an invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrCodeUnauthorized indicates missing or rejected credentials.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// ErrCodeNotFound indicates the requested resource does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeMethodNotAllowed indicates an unsupported HTTP method.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"

	// ErrCodeRateLimitExceeded indicates the caller is being throttled.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// ErrCodeUnavailable indicates a dependency is temporarily unreachable.
	ErrCodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// ErrCodeTimeout indicates an operation exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error is a structured error with a stable code, an operator-facing
// message, an optional wrapped cause, and optional context key-values.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, enabling errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a structured error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a structured error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a structured error wrapping a cause. A nil cause is allowed
// and behaves like New.
func Wrap(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WrapWithContext creates a structured error wrapping a cause plus context
// key-values surfaced in API error details.
func WrapWithContext(code ErrorCode, message string, err error, ctx map[string]any) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
		Context: ctx,
	}
}

// CodeOf extracts the ErrorCode from err, walking the unwrap chain.
// Unstructured errors report ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers do not need to import both error packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
