package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/usestring/schemainfer/internal/store"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeStoreError   = "STORE_ERROR"
	ErrCodeTimeout      = "TIMEOUT"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapStoreError converts a store or pipeline error into a coded error.
func WrapStoreError(err error, entity string) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	switch {
	case errors.As(err, &coded):
		return coded
	case errors.Is(err, store.ErrNotFound):
		return &CodedError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", entity), Cause: err}
	case errors.Is(err, store.ErrInvalidName):
		return &CodedError{Code: ErrCodeInvalidInput, Message: "invalid entity name", Cause: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		coded = &CodedError{Code: ErrCodeTimeout, Message: "request cancelled", Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeStoreError, Message: err.Error(), Cause: err}
	}

	slog.Warn("schema store error",
		slog.String("code", coded.Code),
		slog.String("entity", entity),
		slog.String("message", coded.Message),
	)
	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
