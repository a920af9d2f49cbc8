package sqlite

import (
	"time"

	"github.com/google/uuid"
)

// TimeEntry is the stored row of one work session against a card
type TimeEntry struct {
	ID             int64
	UserID         uuid.UUID
	CardID         uuid.UUID
	StartTime      time.Time
	EndTime        *time.Time // NULL while the entry is open
	LastResumeTime *time.Time // NULL while paused or stopped
	IsPaused       bool
	TotalDuration  int64 // seconds of closed segments
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TimeSegment is one active stretch of a time entry
type TimeSegment struct {
	ID        int64
	EntryID   int64
	StartedAt time.Time
	EndedAt   *time.Time
}

// TimeEntryAction is one pause or resume performed by a user
type TimeEntryAction struct {
	ID         int64
	UserID     uuid.UUID
	EntryID    int64
	Action     string
	OccurredAt time.Time
}

// SegmentChange describes how a transition moves an entry's segment history.
// CloseAt ends the open segment; OpenAt starts a new one.
type SegmentChange struct {
	CloseAt *time.Time
	OpenAt  *time.Time
}
