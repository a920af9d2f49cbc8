package tracking

import (
	"context"
	"strconv"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"pulseboard/internal/domain"
	apperrors "pulseboard/internal/errors"
	"pulseboard/internal/metrics"
	"pulseboard/internal/repository/sqlite"
)

// DefaultMinimumStopDuration is the shortest entry that may be stopped
const DefaultMinimumStopDuration = 120 * time.Second

const (
	OperationStart  = "start"
	OperationPause  = "pause"
	OperationResume = "resume"
	OperationStop   = "stop"
	OperationImport = "import"
)

// Store is the persistence the engine reads and writes entries through
type Store interface {
	CreateTimeEntry(ctx context.Context, entry *sqlite.TimeEntry) error
	ImportTimeEntry(ctx context.Context, entry *sqlite.TimeEntry) error
	GetTimeEntry(ctx context.Context, id int64) (*sqlite.TimeEntry, error)
	GetOpenTimeEntry(ctx context.Context, userID uuid.UUID) (*sqlite.TimeEntry, error)
	ApplyTransition(ctx context.Context, entry *sqlite.TimeEntry, expectedVersion int64, change sqlite.SegmentChange) error
	ListSegments(ctx context.Context, entryIDs []int64) (map[int64][]*sqlite.TimeSegment, error)
}

// RateLimiter gates pause and resume
type RateLimiter interface {
	Allow(ctx context.Context, userID uuid.UUID) error
	Record(ctx context.Context, userID uuid.UUID, entryID int64, action string, at time.Time)
	Remaining(ctx context.Context, userID uuid.UUID) int
}

// Options tunes engine policy
type Options struct {
	MinimumStopDuration time.Duration
}

// Engine runs the start, pause, resume and stop state machine of a user's
// work session. Durations are accounted at each transition from clock reads;
// nothing runs between calls.
type Engine struct {
	store   Store
	limiter RateLimiter
	clock   quartz.Clock
	logger  slog.Logger
	metrics *metrics.Metrics
	mapper  *domain.TimeEntryMapper
	locks   *userLocks
	minimum int64
}

// New creates an engine. A zero minimum stop duration means the default.
func New(store Store, limiter RateLimiter, clock quartz.Clock, logger slog.Logger, m *metrics.Metrics, opts Options) *Engine {
	minimum := opts.MinimumStopDuration
	if minimum == 0 {
		minimum = DefaultMinimumStopDuration
	}
	return &Engine{
		store:   store,
		limiter: limiter,
		clock:   clock,
		logger:  logger.Named("tracking"),
		metrics: m,
		mapper:  domain.NewTimeEntryMapper(),
		locks:   newUserLocks(),
		minimum: int64(minimum / time.Second),
	}
}

// now returns the clock reading truncated to whole seconds in UTC
func (e *Engine) now() time.Time {
	return e.clock.Now().UTC().Truncate(time.Second)
}

// Start opens a new entry for the user on the card. It fails with a
// conflict error while the user has another open entry.
func (e *Engine) Start(ctx context.Context, userID, cardID uuid.UUID) (entry domain.TimeEntry, err error) {
	defer func() { e.metrics.ObserveTransition(OperationStart, err) }()

	unlock := e.locks.lock(userID)
	defer unlock()

	now := e.now()
	created := domain.NewTimeEntry(userID, cardID, now)
	row := e.mapper.ToDatabase(created)
	if err := e.store.CreateTimeEntry(ctx, &row); err != nil {
		return domain.TimeEntry{}, err
	}

	entry = e.mapper.FromDatabase(row)
	entry.Segments = created.Segments
	e.logger.Debug(ctx, "time entry started",
		slog.F("entry_id", entry.ID),
		slog.F("user_id", userID),
		slog.F("card_id", cardID))
	return entry, nil
}

// Pause closes the active segment and adds its whole seconds to the total
func (e *Engine) Pause(ctx context.Context, entryID int64, userID uuid.UUID) (entry domain.TimeEntry, err error) {
	defer func() { e.metrics.ObserveTransition(OperationPause, err) }()

	unlock := e.locks.lock(userID)
	defer unlock()

	row, err := e.ownedEntry(ctx, entryID, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if row.EndTime != nil {
		return domain.TimeEntry{}, apperrors.NewInvalidStateError("time entry", "already stopped")
	}
	if row.IsPaused {
		return domain.TimeEntry{}, apperrors.NewInvalidStateError("time entry", "already paused")
	}
	if err := e.limiter.Allow(ctx, userID); err != nil {
		return domain.TimeEntry{}, err
	}

	now := e.now()
	current := e.mapper.FromDatabase(*row)
	elapsed := current.LiveElapsed(now)

	expected := row.Version
	row.TotalDuration += elapsed
	row.IsPaused = true
	row.LastResumeTime = nil
	row.UpdatedAt = now
	if err := e.store.ApplyTransition(ctx, row, expected, sqlite.SegmentChange{CloseAt: &now}); err != nil {
		return domain.TimeEntry{}, err
	}
	e.limiter.Record(ctx, userID, row.ID, OperationPause, now)

	e.logger.Debug(ctx, "time entry paused",
		slog.F("entry_id", row.ID),
		slog.F("segment_seconds", elapsed),
		slog.F("total_duration", row.TotalDuration))
	return e.mapper.FromDatabase(*row), nil
}

// Resume opens a new active segment. The accumulated total is unchanged.
func (e *Engine) Resume(ctx context.Context, entryID int64, userID uuid.UUID) (entry domain.TimeEntry, err error) {
	defer func() { e.metrics.ObserveTransition(OperationResume, err) }()

	unlock := e.locks.lock(userID)
	defer unlock()

	row, err := e.ownedEntry(ctx, entryID, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if row.EndTime != nil {
		return domain.TimeEntry{}, apperrors.NewInvalidStateError("time entry", "already stopped")
	}
	if !row.IsPaused {
		return domain.TimeEntry{}, apperrors.NewInvalidStateError("time entry", "not paused")
	}
	if err := e.limiter.Allow(ctx, userID); err != nil {
		return domain.TimeEntry{}, err
	}

	now := e.now()
	expected := row.Version
	row.IsPaused = false
	row.LastResumeTime = &now
	row.UpdatedAt = now
	if err := e.store.ApplyTransition(ctx, row, expected, sqlite.SegmentChange{OpenAt: &now}); err != nil {
		return domain.TimeEntry{}, err
	}
	e.limiter.Record(ctx, userID, row.ID, OperationResume, now)

	e.logger.Debug(ctx, "time entry resumed",
		slog.F("entry_id", row.ID),
		slog.F("total_duration", row.TotalDuration))
	return e.mapper.FromDatabase(*row), nil
}

// Stop ends the entry. Entries with less than the minimum duration are
// rejected with a validation error and left untouched.
func (e *Engine) Stop(ctx context.Context, entryID int64, userID uuid.UUID) (entry domain.TimeEntry, err error) {
	defer func() { e.metrics.ObserveTransition(OperationStop, err) }()

	unlock := e.locks.lock(userID)
	defer unlock()

	row, err := e.ownedEntry(ctx, entryID, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if row.EndTime != nil {
		return domain.TimeEntry{}, apperrors.NewInvalidStateError("time entry", "already stopped")
	}

	now := e.now()
	current := e.mapper.FromDatabase(*row)
	final := current.EffectiveDuration(now)
	if final < e.minimum {
		return domain.TimeEntry{}, apperrors.NewMinimumDurationError(final, e.minimum)
	}

	var change sqlite.SegmentChange
	if !row.IsPaused {
		change.CloseAt = &now
	}

	expected := row.Version
	row.TotalDuration = final
	row.EndTime = &now
	row.LastResumeTime = nil
	row.IsPaused = false
	row.UpdatedAt = now
	if err := e.store.ApplyTransition(ctx, row, expected, change); err != nil {
		return domain.TimeEntry{}, err
	}

	e.logger.Debug(ctx, "time entry stopped",
		slog.F("entry_id", row.ID),
		slog.F("total_duration", row.TotalDuration))
	return e.mapper.FromDatabase(*row), nil
}

// Import stores a finished entry recorded elsewhere. It carries no segment
// history; reports spread its total over its span. Open entries are
// rejected so every later transition starts from a stopped entry.
func (e *Engine) Import(ctx context.Context, entry domain.TimeEntry) (imported domain.TimeEntry, err error) {
	defer func() { e.metrics.ObserveTransition(OperationImport, err) }()

	if entry.EndTime == nil {
		return domain.TimeEntry{}, apperrors.NewInvalidInputError("end_time", nil, "only stopped entries can be imported")
	}
	if !entry.IsValid() {
		return domain.TimeEntry{}, apperrors.NewInvalidInputError("time entry", nil, "user, card and start time are required and end_time must not be before start_time")
	}
	start := entry.StartTime.UTC().Truncate(time.Second)
	end := entry.EndTime.UTC().Truncate(time.Second)
	span := int64(end.Sub(start) / time.Second)
	if entry.TotalDuration < 0 || entry.TotalDuration > span {
		return domain.TimeEntry{}, apperrors.NewInvalidInputError("total_seconds", entry.TotalDuration, "must be between 0 and the entry's span")
	}

	entry.ID = 0
	entry.StartTime = start
	entry.EndTime = &end
	entry.LastResumeTime = nil
	entry.IsPaused = false
	entry.Segments = nil
	entry.UpdatedAt = e.now()
	row := e.mapper.ToDatabase(entry)
	if err := e.store.ImportTimeEntry(ctx, &row); err != nil {
		return domain.TimeEntry{}, err
	}

	e.logger.Debug(ctx, "time entry imported",
		slog.F("entry_id", row.ID),
		slog.F("user_id", entry.UserID),
		slog.F("total_duration", row.TotalDuration))
	return e.mapper.FromDatabase(row), nil
}

// ActionsRemaining returns the pause and resume actions the user has left
// in the current rate limit window
func (e *Engine) ActionsRemaining(ctx context.Context, userID uuid.UUID) int {
	return e.limiter.Remaining(ctx, userID)
}

// Current returns the user's open entry with its segments
func (e *Engine) Current(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error) {
	row, err := e.store.GetOpenTimeEntry(ctx, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	return e.withSegments(ctx, row)
}

// Get returns one of the user's entries with its segments
func (e *Engine) Get(ctx context.Context, entryID int64, userID uuid.UUID) (domain.TimeEntry, error) {
	row, err := e.ownedEntry(ctx, entryID, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	return e.withSegments(ctx, row)
}

// Now returns the engine's notion of the current time
func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) ownedEntry(ctx context.Context, entryID int64, userID uuid.UUID) (*sqlite.TimeEntry, error) {
	row, err := e.store.GetTimeEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if row.UserID != userID {
		return nil, apperrors.NewForbiddenError("time entry", strconv.FormatInt(entryID, 10))
	}
	return row, nil
}

func (e *Engine) withSegments(ctx context.Context, row *sqlite.TimeEntry) (domain.TimeEntry, error) {
	segments, err := e.store.ListSegments(ctx, []int64{row.ID})
	if err != nil {
		return domain.TimeEntry{}, err
	}
	entry := e.mapper.FromDatabase(*row)
	entry.Segments = e.mapper.SegmentsFromDatabase(segments[row.ID])
	return entry, nil
}
