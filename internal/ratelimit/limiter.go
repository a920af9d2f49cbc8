package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	apperrors "pulseboard/internal/errors"
	"pulseboard/internal/metrics"
	"pulseboard/internal/repository/sqlite"
)

const (
	DefaultWindow = time.Hour
	DefaultLimit  = 10
)

// ActionLog is the durable record of pause and resume actions
type ActionLog interface {
	RecordAction(ctx context.Context, action *sqlite.TimeEntryAction) error
	ListActionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*sqlite.TimeEntryAction, error)
}

// Options configures the sliding window
type Options struct {
	Window time.Duration
	Limit  int
}

// Limiter caps the number of pause and resume actions one user may perform
// inside a trailing window. Each user's window is a sorted list of action
// timestamps, loaded from the action log the first time the user is seen.
type Limiter struct {
	clock   quartz.Clock
	log     ActionLog
	logger  slog.Logger
	metrics *metrics.Metrics
	window  time.Duration
	limit   int

	mu       sync.Mutex
	events   map[uuid.UUID][]time.Time
	hydrated map[uuid.UUID]bool
}

// New creates a limiter. Zero options fall back to 10 actions per hour.
func New(clock quartz.Clock, log ActionLog, logger slog.Logger, m *metrics.Metrics, opts Options) *Limiter {
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	return &Limiter{
		clock:    clock,
		log:      log,
		logger:   logger.Named("ratelimit"),
		metrics:  m,
		window:   opts.Window,
		limit:    opts.Limit,
		events:   make(map[uuid.UUID][]time.Time),
		hydrated: make(map[uuid.UUID]bool),
	}
}

// Allow returns a rate limit error when the user already performed the
// maximum number of actions in the trailing window. Failures reading the
// action log allow the action.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID) error {
	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	if err := l.hydrate(ctx, userID, cutoff); err != nil {
		l.logger.Warn(ctx, "rate limit check skipped, action log unavailable",
			slog.F("user_id", userID), slog.Error(err))
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	events := evict(l.events[userID], cutoff)
	l.events[userID] = events
	if len(events) < l.limit {
		return nil
	}

	// The window frees a slot once the oldest counted action ages out
	retryAfter := events[len(events)-l.limit].Add(l.window).Sub(now)
	l.metrics.RateLimited()
	l.logger.Debug(ctx, "rate limit reached",
		slog.F("user_id", userID),
		slog.F("count", len(events)),
		slog.F("retry_after", retryAfter))
	return apperrors.NewRateLimitError(l.limit, l.window, retryAfter)
}

// Record appends an action performed at the given time to the user's window
// and to the action log. A log write failure is logged and otherwise ignored.
func (l *Limiter) Record(ctx context.Context, userID uuid.UUID, entryID int64, action string, at time.Time) {
	err := l.log.RecordAction(ctx, &sqlite.TimeEntryAction{
		UserID:     userID,
		EntryID:    entryID,
		Action:     action,
		OccurredAt: at,
	})
	if err != nil {
		l.logger.Warn(ctx, "failed to persist rate limit action",
			slog.F("user_id", userID), slog.F("entry_id", entryID), slog.Error(err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hydrated[userID] {
		// Loaded from the log on the next check
		return
	}
	events := l.events[userID]
	i := sort.Search(len(events), func(i int) bool { return events[i].After(at) })
	events = append(events, time.Time{})
	copy(events[i+1:], events[i:])
	events[i] = at
	l.events[userID] = events
}

// Remaining returns how many more actions the user may perform in the
// current window. It reports the full limit when the action log is
// unavailable, matching Allow.
func (l *Limiter) Remaining(ctx context.Context, userID uuid.UUID) int {
	cutoff := l.clock.Now().Add(-l.window)
	if err := l.hydrate(ctx, userID, cutoff); err != nil {
		return l.limit
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	events := evict(l.events[userID], cutoff)
	l.events[userID] = events
	if len(events) >= l.limit {
		return 0
	}
	return l.limit - len(events)
}

func (l *Limiter) hydrate(ctx context.Context, userID uuid.UUID, cutoff time.Time) error {
	l.mu.Lock()
	done := l.hydrated[userID]
	l.mu.Unlock()
	if done {
		return nil
	}

	actions, err := l.log.ListActionsSince(ctx, userID, cutoff)
	if err != nil {
		return err
	}

	events := make([]time.Time, 0, len(actions))
	for _, a := range actions {
		events = append(events, a.OccurredAt)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Before(events[j]) })

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.hydrated[userID] {
		l.events[userID] = events
		l.hydrated[userID] = true
	}
	return nil
}

// evict drops timestamps at or before cutoff from a sorted list
func evict(events []time.Time, cutoff time.Time) []time.Time {
	i := sort.Search(len(events), func(i int) bool { return events[i].After(cutoff) })
	if i == 0 {
		return events
	}
	return append(events[:0:0], events[i:]...)
}
