package validation

import (
	"fmt"
	"strings"

	apperrors "pulseboard/internal/errors"
)

// ValidationErrorType represents the type of validation error
type ValidationErrorType string

const (
	ErrorTypeRequired      ValidationErrorType = "required"
	ErrorTypeInvalidFormat ValidationErrorType = "invalid_format"
	ErrorTypeInvalidValue  ValidationErrorType = "invalid_value"
	ErrorTypeInvalidRange  ValidationErrorType = "invalid_range"
)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string
	Type    ValidationErrorType
	Message string
	Value   interface{}
}

// Error implements the error interface for FieldError
func (fe *FieldError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", fe.Field, fe.Message)
}

// ValidationError collects every field problem in one request
type ValidationError struct {
	Errors []FieldError
}

// Error implements the error interface for ValidationError
func (ve *ValidationError) Error() string {
	if len(ve.Errors) == 0 {
		return "validation error"
	}

	if len(ve.Errors) == 1 {
		return ve.Errors[0].Error()
	}

	var messages []string
	for _, err := range ve.Errors {
		messages = append(messages, err.Error())
	}

	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if the ValidationError has any errors
func (ve *ValidationError) HasErrors() bool {
	return len(ve.Errors) > 0
}

// AddError adds a new field error to the validation error
func (ve *ValidationError) AddError(field string, errorType ValidationErrorType, message string, value interface{}) {
	ve.Errors = append(ve.Errors, FieldError{
		Field:   field,
		Type:    errorType,
		Message: message,
		Value:   value,
	})
}

// AddRequiredError adds a required field error
func (ve *ValidationError) AddRequiredError(field string) {
	ve.AddError(field, ErrorTypeRequired, fmt.Sprintf("%s is required", field), nil)
}

// AddInvalidFormatError adds an invalid format error
func (ve *ValidationError) AddInvalidFormatError(field string, value interface{}, expectedFormat string) {
	message := fmt.Sprintf("%s has invalid format, expected: %s", field, expectedFormat)
	ve.AddError(field, ErrorTypeInvalidFormat, message, value)
}

// AddInvalidValueError adds an invalid value error
func (ve *ValidationError) AddInvalidValueError(field string, value interface{}, reason string) {
	message := fmt.Sprintf("%s has invalid value: %s", field, reason)
	ve.AddError(field, ErrorTypeInvalidValue, message, value)
}

// AddInvalidRangeError adds an invalid range error
func (ve *ValidationError) AddInvalidRangeError(field string, value interface{}, reason string) {
	message := fmt.Sprintf("%s has invalid range: %s", field, reason)
	ve.AddError(field, ErrorTypeInvalidRange, message, value)
}

// NewValidationError creates a new ValidationError
func NewValidationError() *ValidationError {
	return &ValidationError{
		Errors: make([]FieldError, 0),
	}
}

// GetFieldErrors returns all errors for a specific field
func (ve *ValidationError) GetFieldErrors(field string) []FieldError {
	var fieldErrors []FieldError
	for _, err := range ve.Errors {
		if err.Field == field {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

// GetUserFriendlyMessage returns a user-friendly error message
func (ve *ValidationError) GetUserFriendlyMessage() string {
	if len(ve.Errors) == 0 {
		return "Input validation failed"
	}

	if len(ve.Errors) == 1 {
		return ve.Errors[0].Message
	}

	messages := make([]string, 0, len(ve.Errors))
	for _, err := range ve.Errors {
		messages = append(messages, fmt.Sprintf("- %s", err.Message))
	}
	return fmt.Sprintf("Multiple validation errors occurred:\n%s", strings.Join(messages, "\n"))
}

// AppError converts the collection into an invalid input AppError that keeps
// the collection as its cause
func (ve *ValidationError) AppError() *apperrors.AppError {
	field := "request"
	var value interface{}
	if len(ve.Errors) == 1 {
		field = ve.Errors[0].Field
		value = ve.Errors[0].Value
	}
	err := apperrors.NewInvalidInputError(field, value, ve.GetUserFriendlyMessage())
	err.Message = ve.GetUserFriendlyMessage()
	err.Cause = ve
	return err
}
