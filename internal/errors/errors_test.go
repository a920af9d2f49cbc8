package errors

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/xerrors"
)

func TestNewMinimumDurationError(t *testing.T) {
	err := NewMinimumDurationError(90, 120)

	if err.Type != ErrorTypeValidation {
		t.Errorf("type = %v, want %v", err.Type, ErrorTypeValidation)
	}
	if err.Code != "MINIMUM_DURATION_NOT_REACHED" {
		t.Errorf("code = %v, want MINIMUM_DURATION_NOT_REACHED", err.Code)
	}

	details, ok := MinimumDuration(err)
	if !ok {
		t.Fatalf("MinimumDuration should extract details")
	}
	want := MinimumDurationDetails{CurrentDuration: 90, MinimumRequired: 120, RemainingSeconds: 30}
	if details != want {
		t.Errorf("details = %+v, want %+v", details, want)
	}

	remaining, ok := err.GetContext("remainingSeconds")
	if !ok || remaining != int64(30) {
		t.Errorf("remainingSeconds context = %v", remaining)
	}

	wrapped := xerrors.Errorf("stop entry: %w", err)
	if _, ok := MinimumDuration(wrapped); !ok {
		t.Errorf("MinimumDuration should see through wrapping")
	}
	if _, ok := MinimumDuration(NewValidationError("other", nil)); ok {
		t.Errorf("MinimumDuration should be false for plain validation errors")
	}
}

func TestDomainConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		errType ErrorType
		code    string
		message string
	}{
		{
			name:    "not found",
			err:     NewNotFoundError("time entry", "42"),
			errType: ErrorTypeNotFound,
			code:    "NOT_FOUND",
			message: "time entry not found: 42",
		},
		{
			name:    "conflict",
			err:     NewConflictError("time entry", "active entry already exists"),
			errType: ErrorTypeConflict,
			code:    "CONFLICT",
			message: "time entry conflict: active entry already exists",
		},
		{
			name:    "forbidden",
			err:     NewForbiddenError("time entry", "42"),
			errType: ErrorTypeForbidden,
			code:    "FORBIDDEN",
			message: "time entry 42 belongs to another user",
		},
		{
			name:    "invalid state",
			err:     NewInvalidStateError("time entry", "already paused"),
			errType: ErrorTypeInvalidState,
			code:    "INVALID_STATE",
			message: "time entry is already paused",
		},
		{
			name:    "rate limited",
			err:     NewRateLimitError(10, time.Hour, time.Minute),
			errType: ErrorTypeRateLimited,
			code:    "RATE_LIMITED",
			message: "too many pause/resume actions: limit is 10 per 1h0m0s",
		},
		{
			name:    "invalid input",
			err:     NewInvalidInputError("range", "year", "must be one of day, week, month, quarter"),
			errType: ErrorTypeInvalidInput,
			code:    "INVALID_INPUT",
			message: "invalid input for range: must be one of day, week, month, quarter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.errType {
				t.Errorf("type = %v, want %v", tt.err.Type, tt.errType)
			}
			if tt.err.Code != tt.code {
				t.Errorf("code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Message != tt.message {
				t.Errorf("message = %q, want %q", tt.err.Message, tt.message)
			}
			if GetUserMessage(tt.err) != tt.message {
				t.Errorf("GetUserMessage = %q, want %q", GetUserMessage(tt.err), tt.message)
			}
			if ShouldLogError(tt.err) {
				t.Errorf("caller errors should not be logged")
			}
		})
	}
}

func TestIsErrorType(t *testing.T) {
	appError := NewInvalidStateError("time entry", "not paused")
	wrapped := xerrors.Errorf("resume: %w", appError)

	if !IsErrorType(wrapped, ErrorTypeInvalidState) {
		t.Errorf("IsErrorType should return true for a wrapped matching type")
	}
	if IsErrorType(wrapped, ErrorTypeConflict) {
		t.Errorf("IsErrorType should return false for different type")
	}
	if IsErrorType(errors.New("plain"), ErrorTypeInvalidState) {
		t.Errorf("IsErrorType should return false for regular error")
	}
	if IsAppError(nil) {
		t.Errorf("IsAppError should return false for nil")
	}
}

func TestGetUserMessage_SystemErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Database error", NewDatabaseError("query", errors.New("timeout")), "A database error occurred. Please try again."},
		{"Timeout error", NewTimeoutError("query", "5s"), "The operation timed out. Please try again."},
		{"Regular error", errors.New("regular error"), "regular error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := GetUserMessage(tt.err); result != tt.expected {
				t.Errorf("GetUserMessage() = %v, want %v", result, tt.expected)
			}
			if !ShouldLogError(tt.err) {
				t.Errorf("system errors should be logged")
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), 1},
		{"validation", NewMinimumDurationError(10, 120), 2},
		{"invalid input", NewInvalidInputError("entry", 0, "must be positive"), 2},
		{"not found", NewNotFoundError("time entry", "1"), 3},
		{"forbidden", NewForbiddenError("time entry", "1"), 4},
		{"conflict", NewConflictError("time entry", "x"), 5},
		{"invalid state", NewInvalidStateError("time entry", "already stopped"), 5},
		{"rate limited", NewRateLimitError(10, time.Hour, 0), 6},
		{"database", NewDatabaseError("query", nil), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if GetErrorCode(NewConflictError("time entry", "x")) != "CONFLICT" {
		t.Errorf("GetErrorCode should return correct code for AppError")
	}
	if GetErrorCode(errors.New("regular error")) != "UNKNOWN_ERROR" {
		t.Errorf("GetErrorCode should return UNKNOWN_ERROR for regular error")
	}
}
