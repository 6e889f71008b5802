package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error taxonomy. Only these classes produce a failed
// PipelineResult; validation issues are data, not execution failures.
var (
	// ErrNoInput: no image reference was supplied, or the engine produced no
	// usable text after all retries. Terminal.
	ErrNoInput = errors.New("no usable input")

	// ErrEngine: the recognition engine threw or the call exceeded its time
	// budget. Retried up to the configured limit, then promoted terminal.
	ErrEngine = errors.New("recognition engine error")

	// ErrBusy: a second invocation was attempted while one is Running.
	// Immediate and non-retryable; callers are never queued.
	ErrBusy = errors.New("recognition already in progress")

	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
