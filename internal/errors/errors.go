package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a dinos error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrInvalidPeriod    ErrorCode = "INVALID_PERIOD"    // 400
	ErrUnknownOperation ErrorCode = "UNKNOWN_OPERATION" // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrTooManyRecords   ErrorCode = "TOO_MANY_RECORDS"  // 413
	ErrCancelled        ErrorCode = "CANCELLED"         // 499
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// DinoError represents a structured error with code, status, and details.
type DinoError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *DinoError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *DinoError {
	return &DinoError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidPeriod creates a 400 error for a period literal that is not
// Triassic, Jurassic or Cretaceous.
func NewInvalidPeriod(period string) *DinoError {
	return &DinoError{
		Code:    ErrInvalidPeriod,
		Status:  400,
		Message: fmt.Sprintf("unknown period %q (want Triassic, Jurassic or Cretaceous)", period),
		Details: map[string]any{"period": period},
	}
}

// NewUnknownOperation creates a 400 error for pipeline steps that are not registered.
func NewUnknownOperation(names []string) *DinoError {
	return &DinoError{
		Code:    ErrUnknownOperation,
		Status:  400,
		Message: fmt.Sprintf("unknown operations: %v", names),
		Details: map[string]any{"operations": names},
	}
}

// NewNotFound creates a 404 error for a missing input file.
func NewNotFound(identifier string) *DinoError {
	return &DinoError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewTooManyRecords creates a 413 error when a collection exceeds the configured limit.
func NewTooManyRecords(max, actual int) *DinoError {
	return &DinoError{
		Code:    ErrTooManyRecords,
		Status:  413,
		Message: fmt.Sprintf("too many records: %d (max %d)", actual, max),
		Details: map[string]any{"max_records": max, "actual_records": actual},
	}
}

// NewCancelled creates a 499 error when the caller's context is done.
func NewCancelled(op string) *DinoError {
	return &DinoError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *DinoError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &DinoError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is (or wraps) a DinoError with the given code.
func Is(err error, code ErrorCode) bool {
	var dErr *DinoError
	if stderrors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
