package analytics

import (
	"context"
	"time"

	"cdr.dev/slog/v3"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"pulseboard/internal/domain"
	apperrors "pulseboard/internal/errors"
	"pulseboard/internal/insights"
	"pulseboard/internal/metrics"
	"pulseboard/internal/repository/sqlite"
)

// EntrySource is the read side of the time entry store
type EntrySource interface {
	SearchTimeEntries(ctx context.Context, opts sqlite.SearchOptions) ([]*sqlite.TimeEntry, error)
	ListSegments(ctx context.Context, entryIDs []int64) (map[int64][]*sqlite.TimeSegment, error)
}

// Query selects the entries of one card or one user over a range
type Query struct {
	CardID         *uuid.UUID
	UserID         *uuid.UUID
	Range          Range
	EstimatedHours float64
}

// TimeData is the dashboard payload for a query
type TimeData struct {
	Range           Range           `json:"range"`
	Buckets         []domain.Bucket `json:"buckets"`
	TotalEntries    int             `json:"totalEntries"`
	TotalTimeHours  float64         `json:"totalTimeHours"`
	Insights        []string        `json:"insights"`
	Recommendations []string        `json:"recommendations"`
}

// Options configures calendar alignment. Zero values fall back to the local
// zone and DefaultWorkdayStartHour.
type Options struct {
	Location         *time.Location
	WorkdayStartHour int
}

// Aggregator buckets stored entries for dashboards. It only reads.
type Aggregator struct {
	source    EntrySource
	clock     quartz.Clock
	logger    slog.Logger
	metrics   *metrics.Metrics
	mapper    *domain.Mapper
	loc       *time.Location
	startHour int
}

// New creates an aggregator
func New(source EntrySource, clock quartz.Clock, logger slog.Logger, m *metrics.Metrics, opts Options) *Aggregator {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	startHour := opts.WorkdayStartHour
	if startHour == 0 {
		startHour = DefaultWorkdayStartHour
	}
	return &Aggregator{
		source:    source,
		clock:     clock,
		logger:    logger.Named("analytics"),
		metrics:   m,
		mapper:    domain.NewMapper(),
		loc:       loc,
		startHour: startHour,
	}
}

// GetTimeData buckets the matching entries over the query's range and
// derives insights and recommendations from the result
func (a *Aggregator) GetTimeData(ctx context.Context, q Query) (*TimeData, error) {
	if q.CardID == nil && q.UserID == nil {
		return nil, apperrors.NewInvalidInputError("query", "", "a card or a user is required")
	}
	if q.EstimatedHours < 0 {
		return nil, apperrors.NewInvalidInputError("estimated hours", q.EstimatedHours, "cannot be negative")
	}

	began := time.Now()
	now := a.clock.Now().In(a.loc)

	buckets, err := Buckets(q.Range, now, a.loc, a.startHour)
	if err != nil {
		return nil, err
	}

	windowStart := buckets[0].Start
	windowEnd := buckets[len(buckets)-1].End
	entries, err := a.load(ctx, domain.SearchOptions{
		UserID:    q.UserID,
		CardID:    q.CardID,
		StartTime: &windowStart,
		EndTime:   &windowEnd,
	})
	if err != nil {
		return nil, err
	}

	var total float64
	for i := range buckets {
		buckets[i].Time = TimeInRange(entries, buckets[i].Start, buckets[i].End, now)
		total += buckets[i].Time
	}

	stats := insights.NewStats(string(q.Range), buckets, entries, now, a.loc, q.EstimatedHours)
	found, recommended := insights.Generate(stats)

	a.metrics.ObserveAggregation(string(q.Range), time.Since(began))
	a.logger.Debug(ctx, "aggregated time data",
		slog.F("range", q.Range),
		slog.F("entries", len(entries)),
		slog.F("total_hours", roundHours(total)))

	return &TimeData{
		Range:           q.Range,
		Buckets:         buckets,
		TotalEntries:    len(entries),
		TotalTimeHours:  roundHours(total),
		Insights:        found,
		Recommendations: recommended,
	}, nil
}

// load reads entries overlapping the window together with their segments
func (a *Aggregator) load(ctx context.Context, opts domain.SearchOptions) ([]domain.TimeEntry, error) {
	rows, err := a.source.SearchTimeEntries(ctx, a.mapper.SearchOptions.ToDatabase(opts))
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	segments, err := a.source.ListSegments(ctx, ids)
	if err != nil {
		return nil, err
	}
	return a.mapper.TimeEntry.FromDatabaseSlice(rows, segments), nil
}
