package errors

import (
	"errors"
	"fmt"
	"time"
)

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Code:    "VALIDATION_FAILED",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewMinimumDurationError reports a stop attempted before the entry has
// accumulated the minimum loggable duration.
func NewMinimumDurationError(current, minimum int64) *AppError {
	details := MinimumDurationDetails{
		CurrentDuration:  current,
		MinimumRequired:  minimum,
		RemainingSeconds: minimum - current,
	}
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("time entry must run for at least %d seconds before stopping (%d seconds remaining)", minimum, details.RemainingSeconds),
		Code:    "MINIMUM_DURATION_NOT_REACHED",
		Context: map[string]interface{}{
			"currentDuration":  details.CurrentDuration,
			"minimumRequired":  details.MinimumRequired,
			"remainingSeconds": details.RemainingSeconds,
			"details":          details,
		},
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(resource string, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: fmt.Sprintf("%s conflict: %s", resource, reason),
		Code:    "CONFLICT",
		Context: map[string]interface{}{
			"resource": resource,
			"reason":   reason,
		},
	}
}

// NewForbiddenError creates a new forbidden error for a caller acting on a
// resource it does not own.
func NewForbiddenError(resource string, identifier string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Message: fmt.Sprintf("%s %s belongs to another user", resource, identifier),
		Code:    "FORBIDDEN",
		Context: map[string]interface{}{
			"resource":   resource,
			"identifier": identifier,
		},
	}
}

// NewInvalidStateError creates a new invalid state transition error
func NewInvalidStateError(resource string, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidState,
		Message: fmt.Sprintf("%s is %s", resource, reason),
		Code:    "INVALID_STATE",
		Context: map[string]interface{}{
			"resource": resource,
			"reason":   reason,
		},
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(limit int, window time.Duration, retryAfter time.Duration) *AppError {
	return &AppError{
		Type:    ErrorTypeRateLimited,
		Message: fmt.Sprintf("too many pause/resume actions: limit is %d per %s", limit, window),
		Code:    "RATE_LIMITED",
		Context: map[string]interface{}{
			"limit":      limit,
			"window":     window,
			"retryAfter": retryAfter,
		},
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeDatabase,
		Message: fmt.Sprintf("database operation failed: %s", operation),
		Code:    "DATABASE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// NewInvalidInputError creates a new invalid input error
func NewInvalidInputError(field string, value interface{}, reason string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: fmt.Sprintf("invalid input for %s: %s", field, reason),
		Code:    "INVALID_INPUT",
		Context: map[string]interface{}{
			"field":  field,
			"value":  value,
			"reason": reason,
		},
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, timeout interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: fmt.Sprintf("operation timed out: %s", operation),
		Code:    "TIMEOUT",
		Context: map[string]interface{}{
			"operation": operation,
			"timeout":   timeout,
		},
	}
}

// NewPermissionError creates a new permission error
func NewPermissionError(operation string, resource string) *AppError {
	return &AppError{
		Type:    ErrorTypePermission,
		Message: fmt.Sprintf("permission denied for %s on %s", operation, resource),
		Code:    "PERMISSION_DENIED",
		Context: map[string]interface{}{
			"operation": operation,
			"resource":  resource,
		},
	}
}

// WrapError wraps an existing error with additional context
func WrapError(err error, errorType ErrorType, message string) *AppError {
	return &AppError{
		Type:    errorType,
		Message: message,
		Code:    errorType.String(),
		Cause:   err,
		Context: make(map[string]interface{}),
	}
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// MinimumDuration extracts the remediation payload of a rejected stop.
func MinimumDuration(err error) (MinimumDurationDetails, bool) {
	appErr, ok := AsAppError(err)
	if !ok {
		return MinimumDurationDetails{}, false
	}
	details, ok := appErr.GetContext("details")
	if !ok {
		return MinimumDurationDetails{}, false
	}
	d, ok := details.(MinimumDurationDetails)
	return d, ok
}

// GetUserMessage returns a user-friendly error message
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
			ErrorTypeConflict, ErrorTypeForbidden, ErrorTypeInvalidState,
			ErrorTypeRateLimited, ErrorTypePermission:
			return appErr.Message
		case ErrorTypeDatabase:
			return "A database error occurred. Please try again."
		case ErrorTypeTimeout:
			return "The operation timed out. Please try again."
		default:
			return "An unexpected error occurred. Please try again."
		}
	}
	return err.Error()
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ExitCode maps an error to a process exit status. Callers outside the CLI
// map the same kinds onto their own status codes.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return 1
	}
	switch appErr.Type {
	case ErrorTypeValidation, ErrorTypeInvalidInput:
		return 2
	case ErrorTypeNotFound:
		return 3
	case ErrorTypeForbidden, ErrorTypePermission:
		return 4
	case ErrorTypeConflict, ErrorTypeInvalidState:
		return 5
	case ErrorTypeRateLimited:
		return 6
	default:
		return 1
	}
}

// ShouldLogError determines if an error should be logged based on its type
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeInvalidInput,
			ErrorTypeConflict, ErrorTypeForbidden, ErrorTypeInvalidState, ErrorTypeRateLimited:
			return false // These are user errors, not system errors
		case ErrorTypeDatabase, ErrorTypeTimeout, ErrorTypePermission:
			return true
		default:
			return true
		}
	}
	return true // Unknown errors should be logged
}
