package sqlite

import (
	"database/sql"

	"golang.org/x/xerrors"
)

// Scanner interface defines the common scanning behavior for both sql.Row and sql.Rows
type Scanner interface {
	Scan(dest ...interface{}) error
}

// Rows interface defines the common behavior for sql.Rows
type Rows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

const timeEntryColumns = `id, user_id, card_id, start_time, end_time, last_resume_time,
	is_paused, total_duration, version, created_at, updated_at`

// ScanTimeEntry scans a single time entry from a database row
func ScanTimeEntry(scanner Scanner) (*TimeEntry, error) {
	entry := &TimeEntry{}
	var (
		startTime, createdAt, updatedAt string
		endTime, lastResumeTime         sql.NullString
	)

	err := scanner.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.CardID,
		&startTime,
		&endTime,
		&lastResumeTime,
		&entry.IsPaused,
		&entry.TotalDuration,
		&entry.Version,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if entry.StartTime, err = ParseTimeFromDB(startTime); err != nil {
		return nil, xerrors.Errorf("parse start_time of entry %d: %w", entry.ID, err)
	}
	if entry.EndTime, err = ParseNullTimeFromDB(endTime); err != nil {
		return nil, xerrors.Errorf("parse end_time of entry %d: %w", entry.ID, err)
	}
	if entry.LastResumeTime, err = ParseNullTimeFromDB(lastResumeTime); err != nil {
		return nil, xerrors.Errorf("parse last_resume_time of entry %d: %w", entry.ID, err)
	}
	if entry.CreatedAt, err = ParseTimeFromDB(createdAt); err != nil {
		return nil, xerrors.Errorf("parse created_at of entry %d: %w", entry.ID, err)
	}
	if entry.UpdatedAt, err = ParseTimeFromDB(updatedAt); err != nil {
		return nil, xerrors.Errorf("parse updated_at of entry %d: %w", entry.ID, err)
	}

	return entry, nil
}

// ScanTimeEntries scans multiple time entries from database rows
func ScanTimeEntries(rows Rows) ([]*TimeEntry, error) {
	var entries []*TimeEntry
	for rows.Next() {
		entry, err := ScanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// ScanTimeSegment scans a single segment from a database row
func ScanTimeSegment(scanner Scanner) (*TimeSegment, error) {
	segment := &TimeSegment{}
	var (
		startedAt string
		endedAt   sql.NullString
	)
	if err := scanner.Scan(&segment.ID, &segment.EntryID, &startedAt, &endedAt); err != nil {
		return nil, err
	}

	var err error
	if segment.StartedAt, err = ParseTimeFromDB(startedAt); err != nil {
		return nil, xerrors.Errorf("parse started_at of segment %d: %w", segment.ID, err)
	}
	if segment.EndedAt, err = ParseNullTimeFromDB(endedAt); err != nil {
		return nil, xerrors.Errorf("parse ended_at of segment %d: %w", segment.ID, err)
	}
	return segment, nil
}

// ScanTimeSegments scans multiple segments from database rows
func ScanTimeSegments(rows Rows) ([]*TimeSegment, error) {
	var segments []*TimeSegment
	for rows.Next() {
		segment, err := ScanTimeSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return segments, nil
}

// ScanTimeEntryAction scans a single action log row
func ScanTimeEntryAction(scanner Scanner) (*TimeEntryAction, error) {
	action := &TimeEntryAction{}
	var occurredAt string
	if err := scanner.Scan(&action.ID, &action.UserID, &action.EntryID, &action.Action, &occurredAt); err != nil {
		return nil, err
	}

	var err error
	if action.OccurredAt, err = ParseTimeFromDB(occurredAt); err != nil {
		return nil, xerrors.Errorf("parse occurred_at of action %d: %w", action.ID, err)
	}
	return action, nil
}

// ScanTimeEntryActions scans multiple action log rows
func ScanTimeEntryActions(rows Rows) ([]*TimeEntryAction, error) {
	var actions []*TimeEntryAction
	for rows.Next() {
		action, err := ScanTimeEntryAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return actions, nil
}
