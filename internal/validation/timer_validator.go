package validation

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pulseboard/internal/analytics"
	"pulseboard/internal/domain"
)

// TimerValidator turns raw caller input into typed timer and report requests
type TimerValidator struct {
	validator *Validator
}

// NewTimerValidator creates a new timer validator
func NewTimerValidator() *TimerValidator {
	return &TimerValidator{
		validator: NewValidator(),
	}
}

// NewTimerValidatorWith creates a timer validator around an existing validator
func NewTimerValidatorWith(v *Validator) *TimerValidator {
	return &TimerValidator{validator: v}
}

// ValidateStart validates the principal and the card a timer is started on
func (tv *TimerValidator) ValidateStart(userID, cardID string) (uuid.UUID, uuid.UUID, error) {
	validationError := NewValidationError()

	user := tv.parseUUID(validationError, "user_id", tv.withDefaultUser(userID))
	card := tv.parseUUID(validationError, "card_id", cardID)

	if validationError.HasErrors() {
		return uuid.Nil, uuid.Nil, validationError.AppError()
	}
	return user, card, nil
}

// ValidateTransition validates the entry and principal of a pause, resume,
// stop or lookup
func (tv *TimerValidator) ValidateTransition(entryID, userID string) (int64, uuid.UUID, error) {
	validationError := NewValidationError()

	id := tv.parseEntryID(validationError, entryID)
	user := tv.parseUUID(validationError, "user_id", tv.withDefaultUser(userID))

	if validationError.HasErrors() {
		return 0, uuid.Nil, validationError.AppError()
	}
	return id, user, nil
}

// ValidateUser validates a bare principal
func (tv *TimerValidator) ValidateUser(userID string) (uuid.UUID, error) {
	validationError := NewValidationError()
	user := tv.parseUUID(validationError, "user_id", tv.withDefaultUser(userID))
	if validationError.HasErrors() {
		return uuid.Nil, validationError.AppError()
	}
	return user, nil
}

// ValidateReport validates a dashboard query. Exactly one of cardID and
// userID must be set.
func (tv *TimerValidator) ValidateReport(cardID, userID, rangeKey string, estimatedHours float64) (analytics.Query, error) {
	validationError := NewValidationError()
	var q analytics.Query

	hasCard := tv.validator.IsNonEmptyString(cardID)
	hasUser := tv.validator.IsNonEmptyString(userID)
	switch {
	case hasCard && hasUser:
		validationError.AddInvalidValueError("scope", nil, "choose either a card or a user, not both")
	case hasCard:
		card := tv.parseUUID(validationError, "card_id", cardID)
		q.CardID = &card
	case hasUser:
		user := tv.parseUUID(validationError, "user_id", userID)
		q.UserID = &user
	default:
		validationError.AddRequiredError("card_id or user_id")
	}

	rangeKey = strings.TrimSpace(rangeKey)
	if rangeKey == "" {
		validationError.AddRequiredError("range")
	} else if r, err := analytics.ParseRange(rangeKey); err != nil {
		validationError.AddInvalidValueError("range", rangeKey, "must be one of day, week, month, quarter")
	} else {
		q.Range = r
	}

	if !tv.validator.IsValidEstimate(estimatedHours) {
		validationError.AddInvalidRangeError("estimated_hours", estimatedHours, "must be between 0 and 10000")
	} else {
		q.EstimatedHours = estimatedHours
	}

	if validationError.HasErrors() {
		return analytics.Query{}, validationError.AppError()
	}
	return q, nil
}

// ValidateImport validates one carried over entry. Times are RFC 3339; an
// empty total means the entry was active for its whole span.
func (tv *TimerValidator) ValidateImport(userID, cardID, startTime, endTime, totalSeconds string) (domain.TimeEntry, error) {
	validationError := NewValidationError()

	user := tv.parseUUID(validationError, "user_id", tv.withDefaultUser(userID))
	card := tv.parseUUID(validationError, "card_id", cardID)
	start := tv.parseTime(validationError, "start_time", startTime)
	end := tv.parseTime(validationError, "end_time", endTime)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		validationError.AddInvalidRangeError("end_time", endTime, "must not be before start_time")
	}

	span := int64(end.Sub(start) / time.Second)
	total := span
	if raw := strings.TrimSpace(totalSeconds); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		switch {
		case err != nil:
			validationError.AddInvalidFormatError("total_seconds", raw, "whole seconds")
		case parsed < 0 || parsed > span:
			validationError.AddInvalidRangeError("total_seconds", raw, "must be between 0 and the entry's span")
		default:
			total = parsed
		}
	}

	if validationError.HasErrors() {
		return domain.TimeEntry{}, validationError.AppError()
	}
	return domain.TimeEntry{
		UserID:        user,
		CardID:        card,
		StartTime:     start,
		EndTime:       &end,
		TotalDuration: total,
	}, nil
}

func (tv *TimerValidator) parseTime(ve *ValidationError, field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ve.AddRequiredError(field)
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		ve.AddInvalidFormatError(field, raw, "RFC 3339 time")
		return time.Time{}
	}
	return t.UTC()
}

func (tv *TimerValidator) withDefaultUser(userID string) string {
	if tv.validator.IsNonEmptyString(userID) {
		return userID
	}
	return tv.validator.DefaultUserID()
}

func (tv *TimerValidator) parseUUID(ve *ValidationError, field, raw string) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		ve.AddRequiredError(field)
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		ve.AddInvalidFormatError(field, raw, "UUID")
		return uuid.Nil
	}
	return id
}

func (tv *TimerValidator) parseEntryID(ve *ValidationError, raw string) int64 {
	if !tv.validator.IsNonEmptyString(raw) {
		ve.AddRequiredError("entry_id")
		return 0
	}
	id := tv.validator.ParseEntryID(raw)
	if !tv.validator.IsValidEntryID(id) {
		ve.AddInvalidValueError("entry_id", raw, "must be a positive integer")
		return 0
	}
	return id
}
