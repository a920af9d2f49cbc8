package validation

import (
	"strings"
	"testing"

	"golang.org/x/xerrors"

	apperrors "pulseboard/internal/errors"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name        string
		errors      []FieldError
		expectError string
	}{
		{"No errors", []FieldError{}, "validation error"},
		{"Single error", []FieldError{{Field: "card_id", Message: "is required"}}, "validation error for field 'card_id': is required"},
		{"Multiple errors", []FieldError{
			{Field: "card_id", Message: "is required"},
			{Field: "range", Message: "must be one of day, week, month, quarter"},
		}, "multiple validation errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := &ValidationError{Errors: tt.errors}
			result := ve.Error()

			if tt.name == "Multiple errors" {
				if !strings.Contains(result, tt.expectError) {
					t.Errorf("ValidationError.Error() = %v, expected to contain %v", result, tt.expectError)
				}
			} else {
				if result != tt.expectError {
					t.Errorf("ValidationError.Error() = %v, expected %v", result, tt.expectError)
				}
			}
		})
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	ve := NewValidationError()
	if ve.HasErrors() {
		t.Error("new ValidationError should have no errors")
	}

	ve.AddRequiredError("user_id")
	if !ve.HasErrors() {
		t.Error("ValidationError should have errors after AddRequiredError")
	}
}

func TestValidationError_AddHelpers(t *testing.T) {
	tests := []struct {
		name        string
		add         func(ve *ValidationError)
		expectType  ValidationErrorType
		expectMsg   string
		expectValue interface{}
	}{
		{
			name:       "Required",
			add:        func(ve *ValidationError) { ve.AddRequiredError("user_id") },
			expectType: ErrorTypeRequired,
			expectMsg:  "user_id is required",
		},
		{
			name:        "Invalid format",
			add:         func(ve *ValidationError) { ve.AddInvalidFormatError("user_id", "bob", "UUID") },
			expectType:  ErrorTypeInvalidFormat,
			expectMsg:   "user_id has invalid format, expected: UUID",
			expectValue: "bob",
		},
		{
			name:        "Invalid value",
			add:         func(ve *ValidationError) { ve.AddInvalidValueError("user_id", "0", "must be a positive integer") },
			expectType:  ErrorTypeInvalidValue,
			expectMsg:   "user_id has invalid value: must be a positive integer",
			expectValue: "0",
		},
		{
			name:        "Invalid range",
			add:         func(ve *ValidationError) { ve.AddInvalidRangeError("user_id", -1.0, "must be between 0 and 10000") },
			expectType:  ErrorTypeInvalidRange,
			expectMsg:   "user_id has invalid range: must be between 0 and 10000",
			expectValue: -1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ve := NewValidationError()
			tt.add(ve)

			if len(ve.Errors) != 1 {
				t.Fatalf("expected 1 error, got %d", len(ve.Errors))
			}
			got := ve.Errors[0]
			if got.Field != "user_id" {
				t.Errorf("Field = %v, expected user_id", got.Field)
			}
			if got.Type != tt.expectType {
				t.Errorf("Type = %v, expected %v", got.Type, tt.expectType)
			}
			if got.Message != tt.expectMsg {
				t.Errorf("Message = %q, expected %q", got.Message, tt.expectMsg)
			}
			if got.Value != tt.expectValue {
				t.Errorf("Value = %v, expected %v", got.Value, tt.expectValue)
			}
		})
	}
}

func TestValidationError_GetFieldErrors(t *testing.T) {
	ve := NewValidationError()
	ve.AddRequiredError("card_id")
	ve.AddInvalidValueError("range", "year", "unsupported")
	ve.AddInvalidFormatError("card_id", "x", "UUID")

	if got := ve.GetFieldErrors("card_id"); len(got) != 2 {
		t.Errorf("expected 2 card_id errors, got %d", len(got))
	}
	if got := ve.GetFieldErrors("missing"); len(got) != 0 {
		t.Errorf("expected no errors for unknown field, got %d", len(got))
	}
}

func TestValidationError_GetUserFriendlyMessage(t *testing.T) {
	ve := NewValidationError()
	if msg := ve.GetUserFriendlyMessage(); msg != "Input validation failed" {
		t.Errorf("empty message = %q", msg)
	}

	ve.AddRequiredError("card_id")
	if msg := ve.GetUserFriendlyMessage(); msg != "card_id is required" {
		t.Errorf("single message = %q", msg)
	}

	ve.AddRequiredError("range")
	msg := ve.GetUserFriendlyMessage()
	if !strings.HasPrefix(msg, "Multiple validation errors occurred:") {
		t.Errorf("multi message = %q", msg)
	}
	if !strings.Contains(msg, "- card_id is required\n- range is required") {
		t.Errorf("multi message should list each error, got %q", msg)
	}
}

func TestValidationError_AppError(t *testing.T) {
	ve := NewValidationError()
	ve.AddInvalidFormatError("card_id", "abc", "UUID")

	appErr := ve.AppError()
	if !apperrors.IsErrorType(appErr, apperrors.ErrorTypeInvalidInput) {
		t.Errorf("expected invalid input error, got %v", appErr.Type)
	}
	if appErr.Message != "card_id has invalid format, expected: UUID" {
		t.Errorf("Message = %q", appErr.Message)
	}
	if field, _ := appErr.GetContext("field"); field != "card_id" {
		t.Errorf("field context = %v", field)
	}
	var unwrapped *ValidationError
	if !xerrors.As(appErr, &unwrapped) || unwrapped != ve {
		t.Error("AppError should unwrap to the ValidationError")
	}
}
