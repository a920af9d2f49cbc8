package validation

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"pulseboard/internal/analytics"
	"pulseboard/internal/config"
)

// MaxEstimatedHours bounds the estimate a report can be compared against
const MaxEstimatedHours = 10000

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		config: nil, // Use defaults
	}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{
		config: cfg,
	}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidUUID checks if a string is a canonical UUID
func (v *Validator) IsValidUUID(s string) bool {
	_, err := uuid.Parse(strings.TrimSpace(s))
	return err == nil
}

// IsValidEntryID checks if a time entry ID is valid (positive)
func (v *Validator) IsValidEntryID(id int64) bool {
	return id > 0
}

// IsValidRange checks if a string names a supported aggregation range
func (v *Validator) IsValidRange(s string) bool {
	_, err := analytics.ParseRange(strings.TrimSpace(s))
	return err == nil
}

// IsValidEstimate checks if an estimate is finite and within bounds. Zero
// means no estimate.
func (v *Validator) IsValidEstimate(hours float64) bool {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return false
	}
	return hours >= 0 && hours <= MaxEstimatedHours
}

// ParseEntryID parses a decimal entry ID, returning zero when malformed
func (v *Validator) ParseEntryID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// DefaultUserID returns the configured principal, if any
func (v *Validator) DefaultUserID() string {
	if v.config != nil {
		return v.config.Application.UserID
	}
	return ""
}
