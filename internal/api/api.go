package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"pulseboard/internal/analytics"
	"pulseboard/internal/domain"
	apperrors "pulseboard/internal/errors"
	"pulseboard/internal/validation"
)

// TimerStatus is an entry as seen at AsOf, with its running figures
type TimerStatus struct {
	Entry *domain.TimeEntry `json:"entry"`
	State domain.State      `json:"state"`
	// ElapsedSeconds is the live stretch since the last start or resume
	ElapsedSeconds   int64     `json:"elapsedSeconds"`
	EffectiveSeconds int64     `json:"effectiveSeconds"`
	AsOf             time.Time `json:"asOf"`
	// ActionsRemaining is the pause and resume budget left in the current
	// window, set while the entry is open
	ActionsRemaining *int `json:"actionsRemaining,omitempty"`
}

// ImportRecord is one finished entry carried over from another system, as
// raw caller input. An empty TotalSeconds means active for the whole span.
type ImportRecord struct {
	CardID       string
	StartTime    string
	EndTime      string
	TotalSeconds string
}

// ReportRequest is a dashboard query as it arrives from a caller. Exactly
// one of CardID and UserID is set.
type ReportRequest struct {
	CardID         string
	UserID         string
	Range          string
	EstimatedHours float64
}

// API is the boundary callers drive the time tracking core through. Raw
// identifiers are validated here; an empty user falls back to the
// configured principal.
type API interface {
	StartTimer(ctx context.Context, userID, cardID string) (*domain.TimeEntry, error)
	PauseTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error)
	ResumeTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error)
	StopTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error)

	CurrentTimer(ctx context.Context, userID string) (*TimerStatus, error)
	GetTimer(ctx context.Context, entryID, userID string) (*TimerStatus, error)

	GetTimeData(ctx context.Context, req ReportRequest) (*analytics.TimeData, error)

	ImportTimers(ctx context.Context, userID string, records []ImportRecord) ([]domain.TimeEntry, error)
}

// Tracker is the accounting engine behind the timer operations
type Tracker interface {
	Start(ctx context.Context, userID, cardID uuid.UUID) (domain.TimeEntry, error)
	Pause(ctx context.Context, entryID int64, userID uuid.UUID) (domain.TimeEntry, error)
	Resume(ctx context.Context, entryID int64, userID uuid.UUID) (domain.TimeEntry, error)
	Stop(ctx context.Context, entryID int64, userID uuid.UUID) (domain.TimeEntry, error)
	Current(ctx context.Context, userID uuid.UUID) (domain.TimeEntry, error)
	Get(ctx context.Context, entryID int64, userID uuid.UUID) (domain.TimeEntry, error)
	Import(ctx context.Context, entry domain.TimeEntry) (domain.TimeEntry, error)
	ActionsRemaining(ctx context.Context, userID uuid.UUID) int
	Now() time.Time
}

// Reporter is the aggregator behind GetTimeData
type Reporter interface {
	GetTimeData(ctx context.Context, q analytics.Query) (*analytics.TimeData, error)
}

type apiImpl struct {
	tracker   Tracker
	reporter  Reporter
	validator *validation.TimerValidator
}

// New creates a new API instance.
func New(tracker Tracker, reporter Reporter, validator *validation.TimerValidator) API {
	if validator == nil {
		validator = validation.NewTimerValidator()
	}
	return &apiImpl{
		tracker:   tracker,
		reporter:  reporter,
		validator: validator,
	}
}

func (a *apiImpl) StartTimer(ctx context.Context, userID, cardID string) (*domain.TimeEntry, error) {
	user, card, err := a.validator.ValidateStart(userID, cardID)
	if err != nil {
		return nil, err
	}
	entry, err := a.tracker.Start(ctx, user, card)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (a *apiImpl) PauseTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error) {
	return a.transition(ctx, entryID, userID, a.tracker.Pause)
}

func (a *apiImpl) ResumeTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error) {
	return a.transition(ctx, entryID, userID, a.tracker.Resume)
}

func (a *apiImpl) StopTimer(ctx context.Context, entryID, userID string) (*domain.TimeEntry, error) {
	return a.transition(ctx, entryID, userID, a.tracker.Stop)
}

func (a *apiImpl) transition(ctx context.Context, entryID, userID string,
	op func(context.Context, int64, uuid.UUID) (domain.TimeEntry, error),
) (*domain.TimeEntry, error) {
	id, user, err := a.validator.ValidateTransition(entryID, userID)
	if err != nil {
		return nil, err
	}
	entry, err := op(ctx, id, user)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// CurrentTimer returns the user's open entry, or a not found error when the
// user has none
func (a *apiImpl) CurrentTimer(ctx context.Context, userID string) (*TimerStatus, error) {
	user, err := a.validator.ValidateUser(userID)
	if err != nil {
		return nil, err
	}
	entry, err := a.tracker.Current(ctx, user)
	if err != nil {
		return nil, err
	}
	return a.status(ctx, entry), nil
}

func (a *apiImpl) GetTimer(ctx context.Context, entryID, userID string) (*TimerStatus, error) {
	id, user, err := a.validator.ValidateTransition(entryID, userID)
	if err != nil {
		return nil, err
	}
	entry, err := a.tracker.Get(ctx, id, user)
	if err != nil {
		return nil, err
	}
	return a.status(ctx, entry), nil
}

func (a *apiImpl) GetTimeData(ctx context.Context, req ReportRequest) (*analytics.TimeData, error) {
	q, err := a.validator.ValidateReport(req.CardID, req.UserID, req.Range, req.EstimatedHours)
	if err != nil {
		return nil, err
	}
	return a.reporter.GetTimeData(ctx, q)
}

// ImportTimers validates every record before storing any, then imports them
// in order. A failure part way reports the row; earlier rows stay imported.
func (a *apiImpl) ImportTimers(ctx context.Context, userID string, records []ImportRecord) ([]domain.TimeEntry, error) {
	if len(records) == 0 {
		return nil, apperrors.NewInvalidInputError("records", 0, "nothing to import")
	}

	entries := make([]domain.TimeEntry, 0, len(records))
	for i, r := range records {
		entry, err := a.validator.ValidateImport(userID, r.CardID, r.StartTime, r.EndTime, r.TotalSeconds)
		if err != nil {
			return nil, withRow(err, i+1)
		}
		entries = append(entries, entry)
	}

	imported := make([]domain.TimeEntry, 0, len(entries))
	for i, entry := range entries {
		stored, err := a.tracker.Import(ctx, entry)
		if err != nil {
			return imported, withRow(err, i+1)
		}
		imported = append(imported, stored)
	}
	return imported, nil
}

func withRow(err error, row int) error {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.WithContext("row", row)
	}
	return err
}

func (a *apiImpl) status(ctx context.Context, entry domain.TimeEntry) *TimerStatus {
	now := a.tracker.Now()
	status := &TimerStatus{
		Entry:            &entry,
		State:            entry.State(),
		ElapsedSeconds:   entry.LiveElapsed(now),
		EffectiveSeconds: entry.EffectiveDuration(now),
		AsOf:             now,
	}
	if entry.IsOpen() {
		remaining := a.tracker.ActionsRemaining(ctx, entry.UserID)
		status.ActionsRemaining = &remaining
	}
	return status
}
