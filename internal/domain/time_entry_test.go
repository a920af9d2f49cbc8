package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestNewTimeEntry(t *testing.T) {
	userID, cardID := uuid.New(), uuid.New()

	result := NewTimeEntry(userID, cardID, t0)

	assert.Equal(t, userID, result.UserID)
	assert.Equal(t, cardID, result.CardID)
	assert.Equal(t, t0, result.StartTime)
	assert.Nil(t, result.EndTime)
	if assert.NotNil(t, result.LastResumeTime) {
		assert.Equal(t, t0, *result.LastResumeTime)
	}
	assert.False(t, result.IsPaused)
	assert.Zero(t, result.TotalDuration)
	assert.Len(t, result.Segments, 1)
	assert.Equal(t, StateActive, result.State())
	assert.True(t, result.IsValid())
}

func TestTimeEntry_State(t *testing.T) {
	tests := []struct {
		name     string
		entry    TimeEntry
		expected State
		open     bool
	}{
		{
			name:     "active entry",
			entry:    TimeEntry{StartTime: t0, LastResumeTime: timePtr(t0)},
			expected: StateActive,
			open:     true,
		},
		{
			name:     "paused entry",
			entry:    TimeEntry{StartTime: t0, IsPaused: true, TotalDuration: 60},
			expected: StatePaused,
			open:     true,
		},
		{
			name:     "stopped entry",
			entry:    TimeEntry{StartTime: t0, EndTime: timePtr(t0.Add(time.Hour)), TotalDuration: 3600},
			expected: StateStopped,
			open:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.State())
			assert.Equal(t, tt.open, tt.entry.IsOpen())
		})
	}
}

func TestTimeEntry_EffectiveDuration(t *testing.T) {
	now := t0.Add(10 * time.Minute)

	tests := []struct {
		name     string
		entry    TimeEntry
		live     int64
		expected int64
	}{
		{
			name:     "active entry adds live segment",
			entry:    TimeEntry{StartTime: t0, LastResumeTime: timePtr(t0.Add(5 * time.Minute)), TotalDuration: 120},
			live:     300,
			expected: 420,
		},
		{
			name:     "paused entry counts accumulated only",
			entry:    TimeEntry{StartTime: t0, IsPaused: true, TotalDuration: 120},
			live:     0,
			expected: 120,
		},
		{
			name:     "stopped entry is frozen",
			entry:    TimeEntry{StartTime: t0, EndTime: timePtr(t0.Add(5 * time.Minute)), TotalDuration: 300},
			live:     0,
			expected: 300,
		},
		{
			name:     "sub-second live time is floored",
			entry:    TimeEntry{StartTime: t0, LastResumeTime: timePtr(now.Add(-1500 * time.Millisecond))},
			live:     1,
			expected: 1,
		},
		{
			name:     "resume in the future never goes negative",
			entry:    TimeEntry{StartTime: t0, LastResumeTime: timePtr(now.Add(time.Minute))},
			live:     0,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.live, tt.entry.LiveElapsed(now))
			assert.Equal(t, tt.expected, tt.entry.EffectiveDuration(now))
		})
	}
}

func TestTimeEntry_Span(t *testing.T) {
	now := t0.Add(2 * time.Hour)

	start, end := TimeEntry{StartTime: t0}.Span(now)
	assert.Equal(t, t0, start)
	assert.Equal(t, now, end)

	start, end = TimeEntry{StartTime: t0, EndTime: timePtr(t0.Add(time.Hour))}.Span(now)
	assert.Equal(t, t0, start)
	assert.Equal(t, t0.Add(time.Hour), end)
}

func TestTimeEntry_IsValid(t *testing.T) {
	userID, cardID := uuid.New(), uuid.New()

	tests := []struct {
		name     string
		entry    TimeEntry
		expected bool
	}{
		{
			name:     "valid active entry",
			entry:    TimeEntry{UserID: userID, CardID: cardID, StartTime: t0, LastResumeTime: timePtr(t0)},
			expected: true,
		},
		{
			name:     "missing user",
			entry:    TimeEntry{CardID: cardID, StartTime: t0, LastResumeTime: timePtr(t0)},
			expected: false,
		},
		{
			name:     "zero start time",
			entry:    TimeEntry{UserID: userID, CardID: cardID, LastResumeTime: timePtr(t0)},
			expected: false,
		},
		{
			name:     "end before start",
			entry:    TimeEntry{UserID: userID, CardID: cardID, StartTime: t0, EndTime: timePtr(t0.Add(-time.Hour))},
			expected: false,
		},
		{
			name:     "paused with resume time",
			entry:    TimeEntry{UserID: userID, CardID: cardID, StartTime: t0, IsPaused: true, LastResumeTime: timePtr(t0)},
			expected: false,
		},
		{
			name:     "active without resume time",
			entry:    TimeEntry{UserID: userID, CardID: cardID, StartTime: t0},
			expected: false,
		},
		{
			name:     "negative total",
			entry:    TimeEntry{UserID: userID, CardID: cardID, StartTime: t0, IsPaused: true, TotalDuration: -1},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.IsValid())
		})
	}
}
