package sqlite

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assignRow copies fake column values into scan destinations
func assignRow(data []interface{}, dest []interface{}) error {
	if len(dest) != len(data) {
		return errors.New("mismatch in number of destinations")
	}

	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = data[i].(int64)
		case *bool:
			*v = data[i].(bool)
		case *string:
			*v = data[i].(string)
		case *sql.NullString:
			*v = data[i].(sql.NullString)
		case *uuid.UUID:
			*v = data[i].(uuid.UUID)
		default:
			return errors.New("unsupported destination type")
		}
	}
	return nil
}

// TestScanner implements the Scanner interface for testing
type TestScanner struct {
	data []interface{}
	err  error
}

func (ts *TestScanner) Scan(dest ...interface{}) error {
	if ts.err != nil {
		return ts.err
	}
	return assignRow(ts.data, dest)
}

// TestRows implements the Rows interface for testing
type TestRows struct {
	rows       [][]interface{}
	currentRow int
	err        error
}

func (tr *TestRows) Next() bool {
	if tr.err != nil {
		return false
	}
	if tr.currentRow >= len(tr.rows) {
		return false
	}
	tr.currentRow++
	return true
}

func (tr *TestRows) Scan(dest ...interface{}) error {
	if tr.err != nil {
		return tr.err
	}
	if tr.currentRow == 0 || tr.currentRow > len(tr.rows) {
		return errors.New("no current row")
	}
	return assignRow(tr.rows[tr.currentRow-1], dest)
}

func (tr *TestRows) Err() error {
	return tr.err
}

var (
	scanUserID = uuid.MustParse("6f1c1b8e-6f63-4f1b-9a57-2c4f4f0b6a11")
	scanCardID = uuid.MustParse("0b7d3f5e-2f43-4c9d-8c1a-7e6f5d4c3b21")
)

func entryRow(id int64, start string, end sql.NullString, paused bool, total int64) []interface{} {
	resume := sql.NullString{String: start, Valid: !end.Valid && !paused}
	return []interface{}{
		id, scanUserID, scanCardID, start, end, resume, paused, total, int64(1), start, start,
	}
}

func TestScanTimeEntry(t *testing.T) {
	tests := []struct {
		name        string
		scanner     *TestScanner
		expectEnd   *time.Time
		expectError bool
	}{
		{
			name: "Stopped entry",
			scanner: &TestScanner{
				data: entryRow(1, "2025-03-10T09:00:00Z", sql.NullString{String: "2025-03-10T10:00:00Z", Valid: true}, false, 3600),
			},
			expectEnd: func() *time.Time { t := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC); return &t }(),
		},
		{
			name: "Open entry",
			scanner: &TestScanner{
				data: entryRow(2, "2025-03-10T09:00:00Z", sql.NullString{}, false, 0),
			},
		},
		{
			name: "Malformed start time",
			scanner: &TestScanner{
				data: entryRow(3, "10 March", sql.NullString{}, false, 0),
			},
			expectError: true,
		},
		{
			name:        "Scanner error",
			scanner:     &TestScanner{err: sql.ErrNoRows},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanTimeEntry(tt.scanner)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, scanUserID, result.UserID)
			assert.Equal(t, scanCardID, result.CardID)
			assert.True(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC).Equal(result.StartTime))
			assert.Equal(t, int64(1), result.Version)
			if tt.expectEnd == nil {
				assert.Nil(t, result.EndTime)
				assert.NotNil(t, result.LastResumeTime)
			} else {
				require.NotNil(t, result.EndTime)
				assert.True(t, tt.expectEnd.Equal(*result.EndTime))
				assert.Nil(t, result.LastResumeTime)
			}
		})
	}
}

func TestScanTimeEntries(t *testing.T) {
	t.Run("Multiple entries", func(t *testing.T) {
		rows := &TestRows{rows: [][]interface{}{
			entryRow(1, "2025-03-10T09:00:00Z", sql.NullString{String: "2025-03-10T10:00:00Z", Valid: true}, false, 3600),
			entryRow(2, "2025-03-10T11:00:00Z", sql.NullString{}, true, 600),
		}}

		result, err := ScanTimeEntries(rows)
		require.NoError(t, err)
		require.Len(t, result, 2)
		assert.Equal(t, int64(1), result[0].ID)
		assert.Equal(t, int64(3600), result[0].TotalDuration)
		assert.True(t, result[1].IsPaused)
		assert.Nil(t, result[1].LastResumeTime)
	})

	t.Run("Empty result set", func(t *testing.T) {
		result, err := ScanTimeEntries(&TestRows{})
		assert.NoError(t, err)
		assert.Len(t, result, 0)
	})

	t.Run("Rows error", func(t *testing.T) {
		rows := &TestRows{
			rows: [][]interface{}{entryRow(1, "2025-03-10T09:00:00Z", sql.NullString{}, false, 0)},
			err:  sql.ErrConnDone,
		}
		result, err := ScanTimeEntries(rows)
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestScanTimeSegments(t *testing.T) {
	rows := &TestRows{rows: [][]interface{}{
		{int64(1), int64(7), "2025-03-10T09:00:00Z", sql.NullString{String: "2025-03-10T09:30:00Z", Valid: true}},
		{int64(2), int64(7), "2025-03-10T09:45:00Z", sql.NullString{}},
	}}

	result, err := ScanTimeSegments(rows)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, int64(7), result[0].EntryID)
	require.NotNil(t, result[0].EndedAt)
	assert.Equal(t, 30*time.Minute, result[0].EndedAt.Sub(result[0].StartedAt))
	assert.Nil(t, result[1].EndedAt)

	_, err = ScanTimeSegment(&TestScanner{data: []interface{}{int64(1), int64(7), "garbage", sql.NullString{}}})
	assert.Error(t, err)
}

func TestScanTimeEntryActions(t *testing.T) {
	rows := &TestRows{rows: [][]interface{}{
		{int64(1), scanUserID, int64(7), "pause", "2025-03-10T09:30:00Z"},
		{int64(2), scanUserID, int64(7), "resume", "2025-03-10T09:45:00Z"},
	}}

	result, err := ScanTimeEntryActions(rows)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, "pause", result[0].Action)
	assert.Equal(t, scanUserID, result[1].UserID)
	assert.True(t, time.Date(2025, 3, 10, 9, 45, 0, 0, time.UTC).Equal(result[1].OccurredAt))

	_, err = ScanTimeEntryAction(&TestScanner{err: sql.ErrNoRows})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
