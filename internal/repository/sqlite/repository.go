package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	apperrors "pulseboard/internal/errors"
	"pulseboard/internal/repository/sqlite/migrations"
)

// SearchOptions contains all possible search parameters. A time window
// matches entries whose span overlaps it; open entries extend to "now".
type SearchOptions struct {
	UserID    *uuid.UUID
	CardID    *uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
	OpenOnly  bool
}

// Repository defines the interface for database operations
type Repository interface {
	// Create operations
	CreateTimeEntry(ctx context.Context, entry *TimeEntry) error
	ImportTimeEntry(ctx context.Context, entry *TimeEntry) error
	RecordAction(ctx context.Context, action *TimeEntryAction) error

	// Read operations
	GetTimeEntry(ctx context.Context, id int64) (*TimeEntry, error)
	GetOpenTimeEntry(ctx context.Context, userID uuid.UUID) (*TimeEntry, error)
	SearchTimeEntries(ctx context.Context, opts SearchOptions) ([]*TimeEntry, error)
	ListSegments(ctx context.Context, entryIDs []int64) (map[int64][]*TimeSegment, error)
	ListActionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*TimeEntryAction, error)

	// Update operations
	ApplyTransition(ctx context.Context, entry *TimeEntry, expectedVersion int64, change SegmentChange) error

	// Utility
	Close() error
}

// Options tunes per-call deadlines
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sql.DB
	opts Options
}

// New creates a new SQLite repository instance with default timeouts
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions creates a new SQLite repository instance
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.NewDatabaseError("open database", err)
	}

	// A single connection serializes writers and keeps ":memory:" databases
	// alive for the lifetime of the repository.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, apperrors.NewDatabaseError("enable foreign keys", err)
	}

	if err := migrations.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, apperrors.NewDatabaseError("run migrations", err)
	}

	return &SQLiteRepository{db: db, opts: opts}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opts.QueryTimeout)
}

func (r *SQLiteRepository) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.WriteTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.opts.WriteTimeout)
}

// CreateTimeEntry inserts a new open entry and its first segment. It fails
// with a conflict error when the user already has an open entry.
func (r *SQLiteRepository) CreateTimeEntry(ctx context.Context, entry *TimeEntry) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var open int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM time_entries WHERE user_id = ? AND end_time IS NULL`,
			entry.UserID,
		).Scan(&open)
		if err != nil {
			return HandleDatabaseError("check open time entries", err)
		}
		if open > 0 {
			return apperrors.NewConflictError("time entry", "active entry already exists")
		}

		id, err := r.insertTimeEntry(ctx, tx, entry)
		if err != nil {
			return err
		}

		_, err = ExecuteWithLastInsertID(ctx, tx,
			`INSERT INTO time_segments (entry_id, started_at) VALUES (?, ?)`,
			id, FormatTimeForDB(entry.StartTime),
		)
		if err != nil {
			return err
		}

		entry.ID = id
		return nil
	})
}

// ImportTimeEntry stores an entry as-is without segment history, as rows
// carried over from systems that never recorded segments
func (r *SQLiteRepository) ImportTimeEntry(ctx context.Context, entry *TimeEntry) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	id, err := r.insertTimeEntry(ctx, r.db, entry)
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (r *SQLiteRepository) insertTimeEntry(ctx context.Context, q Querier, entry *TimeEntry) (int64, error) {
	if entry.Version == 0 {
		entry.Version = 1
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.StartTime
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = entry.CreatedAt
	}

	query := `
	INSERT INTO time_entries (user_id, card_id, start_time, end_time, last_resume_time,
		is_paused, total_duration, version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := q.ExecContext(ctx, query,
		entry.UserID,
		entry.CardID,
		FormatTimeForDB(entry.StartTime),
		FormatTimePtrForDB(entry.EndTime),
		FormatTimePtrForDB(entry.LastResumeTime),
		entry.IsPaused,
		entry.TotalDuration,
		entry.Version,
		FormatTimeForDB(entry.CreatedAt),
		FormatTimeForDB(entry.UpdatedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, apperrors.NewConflictError("time entry", "active entry already exists")
		}
		return 0, HandleDatabaseError("insert time entry", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, HandleDatabaseError("get last insert ID", err)
	}
	return id, nil
}

// GetTimeEntry retrieves a time entry by ID
func (r *SQLiteRepository) GetTimeEntry(ctx context.Context, id int64) (*TimeEntry, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = ?`
	return QuerySingle(ctx, r.db, query, ScanTimeEntry, "time entry", fmt.Sprintf("%d", id), id)
}

// GetOpenTimeEntry retrieves the user's entry that has no end time
func (r *SQLiteRepository) GetOpenTimeEntry(ctx context.Context, userID uuid.UUID) (*TimeEntry, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE user_id = ? AND end_time IS NULL`
	return QuerySingle(ctx, r.db, query, ScanTimeEntry, "active time entry", userID.String(), userID)
}

// ApplyTransition writes the entry's new state if its version still matches
// expectedVersion, and moves the segment history in the same transaction.
// A stale version yields a conflict error and leaves the row untouched.
func (r *SQLiteRepository) ApplyTransition(ctx context.Context, entry *TimeEntry, expectedVersion int64, change SegmentChange) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	return WithTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
		UPDATE time_entries
		SET end_time = ?, last_resume_time = ?, is_paused = ?, total_duration = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`

		result, err := tx.ExecContext(ctx, query,
			FormatTimePtrForDB(entry.EndTime),
			FormatTimePtrForDB(entry.LastResumeTime),
			entry.IsPaused,
			entry.TotalDuration,
			FormatTimeForDB(entry.UpdatedAt),
			entry.ID,
			expectedVersion,
		)
		if err != nil {
			return HandleDatabaseError("update time entry", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return HandleDatabaseError("get rows affected", err)
		}
		if rows == 0 {
			return apperrors.NewConflictError("time entry", "entry was modified concurrently")
		}

		if change.CloseAt != nil {
			_, err := tx.ExecContext(ctx,
				`UPDATE time_segments SET ended_at = ? WHERE entry_id = ? AND ended_at IS NULL`,
				FormatTimeForDB(*change.CloseAt), entry.ID,
			)
			if err != nil {
				return HandleDatabaseError("close time segment", err)
			}
		}
		if change.OpenAt != nil {
			_, err := ExecuteWithLastInsertID(ctx, tx,
				`INSERT INTO time_segments (entry_id, started_at) VALUES (?, ?)`,
				entry.ID, FormatTimeForDB(*change.OpenAt),
			)
			if err != nil {
				return err
			}
		}

		entry.Version = expectedVersion + 1
		return nil
	})
}

// SearchTimeEntries searches for time entries based on the provided options
func (r *SQLiteRepository) SearchTimeEntries(ctx context.Context, opts SearchOptions) ([]*TimeEntry, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	var conditions []string
	var args []interface{}

	if opts.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *opts.UserID)
	}
	if opts.CardID != nil {
		conditions = append(conditions, "card_id = ?")
		args = append(args, *opts.CardID)
	}
	if opts.OpenOnly {
		conditions = append(conditions, "end_time IS NULL")
	}

	// Overlap with the requested window
	if opts.EndTime != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, FormatTimePtrForDB(opts.EndTime))
	}
	if opts.StartTime != nil {
		conditions = append(conditions, "(end_time IS NULL OR end_time > ?)")
		args = append(args, FormatTimePtrForDB(opts.StartTime))
	}

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	return QueryMultiple(ctx, r.db, query, ScanTimeEntries, "time entries", args...)
}

// ListSegments returns the segments of the given entries keyed by entry ID,
// each list ordered by start time
func (r *SQLiteRepository) ListSegments(ctx context.Context, entryIDs []int64) (map[int64][]*TimeSegment, error) {
	result := make(map[int64][]*TimeSegment, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}

	ctx, cancel := r.readContext(ctx)
	defer cancel()

	placeholders := make([]string, len(entryIDs))
	args := make([]interface{}, len(entryIDs))
	for i, id := range entryIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `
	SELECT id, entry_id, started_at, ended_at
	FROM time_segments
	WHERE entry_id IN (` + strings.Join(placeholders, ", ") + `)
	ORDER BY entry_id ASC, started_at ASC, id ASC`

	segments, err := QueryMultiple(ctx, r.db, query, ScanTimeSegments, "time segments", args...)
	if err != nil {
		return nil, err
	}
	for _, segment := range segments {
		result[segment.EntryID] = append(result[segment.EntryID], segment)
	}
	return result, nil
}

// RecordAction appends a pause or resume to the user's action log
func (r *SQLiteRepository) RecordAction(ctx context.Context, action *TimeEntryAction) error {
	ctx, cancel := r.writeContext(ctx)
	defer cancel()

	id, err := ExecuteWithLastInsertID(ctx, r.db,
		`INSERT INTO time_entry_actions (user_id, entry_id, action, occurred_at) VALUES (?, ?, ?, ?)`,
		action.UserID, action.EntryID, action.Action, FormatTimeForDB(action.OccurredAt),
	)
	if err != nil {
		return xerrors.Errorf("record %s action: %w", action.Action, err)
	}
	action.ID = id
	return nil
}

// ListActionsSince returns the user's actions at or after since, oldest first
func (r *SQLiteRepository) ListActionsSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*TimeEntryAction, error) {
	ctx, cancel := r.readContext(ctx)
	defer cancel()

	query := `
	SELECT id, user_id, entry_id, action, occurred_at
	FROM time_entry_actions
	WHERE user_id = ? AND occurred_at >= ?
	ORDER BY occurred_at ASC, id ASC`

	return QueryMultiple(ctx, r.db, query, ScanTimeEntryActions, "time entry actions", userID, FormatTimeForDB(since))
}
