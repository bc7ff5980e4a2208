package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a namespaced error code for GANDALF framework errors.
type ErrorCode string

// Configuration error codes
const (
	CONFIG_LOAD_FAILED       ErrorCode = "CONFIG_LOAD_FAILED"
	CONFIG_PARSE_FAILED      ErrorCode = "CONFIG_PARSE_FAILED"
	CONFIG_VALIDATION_FAILED ErrorCode = "CONFIG_VALIDATION_FAILED"
	CONFIG_NOT_FOUND         ErrorCode = "CONFIG_NOT_FOUND"
)

// Pipeline error codes. These are the kinds the orchestrator surfaces to
// callers as tagged Error actions rather than as raw Go errors.
const (
	PIPELINE_NO_AVAILABLE_MODEL       ErrorCode = "PIPELINE_NO_AVAILABLE_MODEL"
	PIPELINE_MISSING_TEMPLATE         ErrorCode = "PIPELINE_MISSING_TEMPLATE"
	PIPELINE_SCHEMA_MISMATCH          ErrorCode = "PIPELINE_SCHEMA_MISMATCH"
	PIPELINE_INVALID_ANSWER_REFERENCE ErrorCode = "PIPELINE_INVALID_ANSWER_REFERENCE"
	PIPELINE_STALE_STATE              ErrorCode = "PIPELINE_STALE_STATE"
)

// LLM provider error codes
const (
	LLM_PROVIDER_NOT_FOUND   ErrorCode = "LLM_PROVIDER_NOT_FOUND"
	LLM_PROVIDER_DUPLICATE   ErrorCode = "LLM_PROVIDER_DUPLICATE"
	LLM_COMPLETION_FAILED    ErrorCode = "LLM_COMPLETION_FAILED"
	LLM_RESPONSE_UNPARSEABLE ErrorCode = "LLM_RESPONSE_UNPARSEABLE"
)

// Storage error codes
const (
	STORE_OPEN_FAILED      ErrorCode = "STORE_OPEN_FAILED"
	STORE_MIGRATION_FAILED ErrorCode = "STORE_MIGRATION_FAILED"
	STORE_QUERY_FAILED     ErrorCode = "STORE_QUERY_FAILED"
	STORE_NOT_FOUND        ErrorCode = "STORE_NOT_FOUND"
)

// GandalfError represents a structured error with error code, message, and optional cause.
// It supports error wrapping and retryability hints for error handling logic.
type GandalfError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *GandalfError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
// This enables using errors.Is() and errors.As() with wrapped errors.
func (e *GandalfError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
// Returns true if target is a GandalfError with the same Code.
func (e *GandalfError) Is(target error) bool {
	var gErr *GandalfError
	if errors.As(target, &gErr) {
		return e.Code == gErr.Code
	}
	return false
}

// NewError creates a new non-retryable GandalfError with the given code and message.
func NewError(code ErrorCode, message string) *GandalfError {
	return &GandalfError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     nil,
	}
}

// NewRetryableError creates a new retryable GandalfError with the given code and message.
// Use this for transient errors that may succeed on retry (e.g., network timeouts).
func NewRetryableError(code ErrorCode, message string) *GandalfError {
	return &GandalfError{
		Code:      code,
		Message:   message,
		Retryable: true,
		Cause:     nil,
	}
}

// WrapError creates a new non-retryable GandalfError that wraps an existing error.
// The wrapped error is accessible via Unwrap() for error chain inspection.
func WrapError(code ErrorCode, message string, cause error) *GandalfError {
	return &GandalfError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Cause:     cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns the empty code if err is not a GandalfError.
func CodeOf(err error) ErrorCode {
	var gErr *GandalfError
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	return ""
}
