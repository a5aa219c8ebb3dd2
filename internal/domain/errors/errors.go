// Package errors provides domain-specific errors for the modelrouter engine.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrUnknownRuleType  = errors.New("unknown rule type")
	ErrMissingRuleParam = errors.New("missing rule parameter")
	ErrInvalidRuleParam = errors.New("invalid rule parameter")
	ErrEmptyLabel       = errors.New("routing entry label is empty")
	ErrEmptyTarget      = errors.New("routing entry target is empty")
	ErrNoRoutes         = errors.New("no routing entries configured")
	ErrWatcherClosed    = errors.New("watcher already closed")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeRule          ErrorCode = "RULE"
	CodeConfiguration ErrorCode = "CONFIG"
)

// RouterError wraps errors with additional context for debugging and handling.
type RouterError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *RouterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *RouterError) Unwrap() error {
	return e.Cause
}

// NewError creates a new RouterError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *RouterError {
	return &RouterError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds a key-value pair to the error's context and returns the error.
// This allows for method chaining when adding multiple context values.
func WithContext(err *RouterError, key string, value interface{}) *RouterError {
	if err.Context == nil {
		err.Context = make(map[string]interface{})
	}
	err.Context[key] = value
	return err
}

// Is reports whether err matches target using errors.Is semantics.
// This is a convenience wrapper around the standard library's errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target and sets target to that error value.
// This is a convenience wrapper around the standard library's errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
