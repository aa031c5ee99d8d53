// internal/core/errors.go
package core

import (
	"fmt"
	"strings"
)

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Ledger errors
	ErrSchema            = &Error{Code: "SCHEMA_ERROR", Message: "ledger is missing required columns"}
	ErrSourceUnavailable = &Error{Code: "SOURCE_UNAVAILABLE", Message: "data source unavailable"}

	// Computation errors
	ErrFieldUnavailable = &Error{Code: "FIELD_UNAVAILABLE", Message: "field could not be computed"}

	// Narrative errors
	ErrNarrativeFailed = &Error{Code: "NARRATIVE_FAILED", Message: "narrative unavailable"}
	ErrLLMFailed       = &Error{Code: "LLM_FAILED", Message: "LLM request failed"}

	// Lookup errors
	ErrNotFound = &Error{Code: "NOT_FOUND", Message: "not found"}

	// Request errors
	ErrBadRequest   = &Error{Code: "BAD_REQUEST", Message: "invalid request"}
	ErrUnauthorized = &Error{Code: "UNAUTHORIZED", Message: "missing or invalid api key"}
	ErrDisabled     = &Error{Code: "DISABLED", Message: "feature not configured"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
)

// SchemaError reports the required ledger columns that are absent.
// It matches ErrSchema with errors.Is.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ErrSchema.Code, ErrSchema.Message, strings.Join(e.Missing, ", "))
}

// Is matches ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
