package domain

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle position of a time entry
type State string

const (
	StateActive  State = "active"
	StatePaused  State = "paused"
	StateStopped State = "stopped"
)

// TimeEntry represents one work session a user logs against a card.
// This is a pure domain model without database-specific concerns.
type TimeEntry struct {
	ID             int64      `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	CardID         uuid.UUID  `json:"cardId"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	LastResumeTime *time.Time `json:"lastResumeTime,omitempty"`
	IsPaused       bool       `json:"isPaused"`
	// TotalDuration counts seconds of completed segments only
	TotalDuration int64     `json:"totalDuration"`
	Version       int64     `json:"-"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Segments is the recorded active history, oldest first. Entries carried
	// over from before segments were recorded have none.
	Segments []Segment `json:"segments,omitempty"`
}

// Segment is one active stretch of an entry, between a start or resume and
// the next pause or stop
type Segment struct {
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
}

// NewTimeEntry creates an active entry for the given user and card
func NewTimeEntry(userID, cardID uuid.UUID, now time.Time) TimeEntry {
	return TimeEntry{
		UserID:         userID,
		CardID:         cardID,
		StartTime:      now,
		LastResumeTime: &now,
		UpdatedAt:      now,
		Segments:       []Segment{{StartedAt: now}},
	}
}

// IsOpen returns true while the entry has no end time
func (te TimeEntry) IsOpen() bool {
	return te.EndTime == nil
}

// State reports whether the entry is active, paused or stopped
func (te TimeEntry) State() State {
	switch {
	case te.EndTime != nil:
		return StateStopped
	case te.IsPaused:
		return StatePaused
	default:
		return StateActive
	}
}

// LiveElapsed returns the whole seconds of the current active segment, zero
// when paused or stopped
func (te TimeEntry) LiveElapsed(now time.Time) int64 {
	if te.EndTime != nil || te.IsPaused || te.LastResumeTime == nil {
		return 0
	}
	elapsed := int64(now.Sub(*te.LastResumeTime) / time.Second)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// EffectiveDuration returns accumulated plus live seconds as of now
func (te TimeEntry) EffectiveDuration(now time.Time) int64 {
	return te.TotalDuration + te.LiveElapsed(now)
}

// Span returns the wall-clock interval of the entry, ending at now while open
func (te TimeEntry) Span(now time.Time) (time.Time, time.Time) {
	if te.EndTime != nil {
		return te.StartTime, *te.EndTime
	}
	return te.StartTime, now
}

// IsValid checks the structural invariants of the entry
func (te TimeEntry) IsValid() bool {
	if te.UserID == uuid.Nil || te.CardID == uuid.Nil {
		return false
	}
	if te.StartTime.IsZero() || te.TotalDuration < 0 {
		return false
	}
	if te.EndTime != nil && te.EndTime.Before(te.StartTime) {
		return false
	}
	if te.IsPaused && te.LastResumeTime != nil {
		return false
	}
	if !te.IsPaused && te.EndTime == nil && te.LastResumeTime == nil {
		return false
	}
	return true
}
