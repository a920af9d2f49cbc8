package errors

import (
	"errors"
	"testing"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		expected  string
	}{
		{"Validation", ErrorTypeValidation, "validation"},
		{"NotFound", ErrorTypeNotFound, "not_found"},
		{"Database", ErrorTypeDatabase, "database"},
		{"InvalidInput", ErrorTypeInvalidInput, "invalid_input"},
		{"Timeout", ErrorTypeTimeout, "timeout"},
		{"Permission", ErrorTypePermission, "permission"},
		{"Conflict", ErrorTypeConflict, "conflict"},
		{"Forbidden", ErrorTypeForbidden, "forbidden"},
		{"InvalidState", ErrorTypeInvalidState, "invalid_state"},
		{"RateLimited", ErrorTypeRateLimited, "rate_limited"},
		{"Unknown", ErrorType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.errorType.String(); result != tt.expected {
				t.Errorf("ErrorType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name:     "Error without cause",
			appError: &AppError{Type: ErrorTypeInvalidState, Message: "time entry is already paused"},
			expected: "invalid_state: time entry is already paused",
		},
		{
			name: "Error with cause",
			appError: &AppError{
				Type:    ErrorTypeDatabase,
				Message: "connection failed",
				Cause:   errors.New("disk I/O error"),
			},
			expected: "database: connection failed (caused by: disk I/O error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.appError.Error(); result != tt.expected {
				t.Errorf("AppError.Error() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestAppError_UnwrapAndIs(t *testing.T) {
	cause := errors.New("locked")
	appError := NewDatabaseError("update time entry", cause)

	if !errors.Is(appError, cause) {
		t.Errorf("errors.Is should find the cause through Unwrap")
	}
	if !errors.Is(appError, &AppError{Type: ErrorTypeDatabase, Code: "DATABASE_ERROR"}) {
		t.Errorf("AppError.Is should match on type and code")
	}
	if errors.Is(appError, &AppError{Type: ErrorTypeConflict, Code: "CONFLICT"}) {
		t.Errorf("AppError.Is should not match a different type")
	}
}

func TestAppError_Context(t *testing.T) {
	appError := &AppError{Type: ErrorTypeRateLimited, Message: "slow down"}

	if _, exists := appError.GetContext("limit"); exists {
		t.Errorf("GetContext should return false when context is nil")
	}

	if result := appError.WithContext("limit", 10); result != appError {
		t.Errorf("WithContext should return the same instance")
	}

	value, exists := appError.GetContext("limit")
	if !exists || value != 10 {
		t.Errorf("GetContext = %v, %v; want 10, true", value, exists)
	}
}
