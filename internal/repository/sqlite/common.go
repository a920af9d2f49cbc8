package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	apperrors "pulseboard/internal/errors"
)

// Querier is satisfied by both *sql.DB and *sql.Tx so helpers run inside or
// outside a transaction
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// HandleDatabaseError converts database errors to structured app errors
func HandleDatabaseError(operation string, err error) error {
	return apperrors.NewDatabaseError(operation, err)
}

// IsUniqueViolation reports whether err is a sqlite UNIQUE constraint failure
func IsUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	// Primary result code only, when extended codes are not reported
	return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
}

// ExecuteWithLastInsertID executes a query and returns the last insert ID
func ExecuteWithLastInsertID(ctx context.Context, q Querier, query string, args ...interface{}) (int64, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, HandleDatabaseError("execute query", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, HandleDatabaseError("get last insert ID", err)
	}

	return id, nil
}

// QuerySingle executes a query that returns a single row and scans it
func QuerySingle[T any](ctx context.Context, q Querier, query string, scanFunc func(Scanner) (*T, error), entityType string, id string, args ...interface{}) (*T, error) {
	row := q.QueryRowContext(ctx, query, args...)
	result, err := scanFunc(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(entityType, id)
		}
		return nil, HandleDatabaseError("scan "+entityType, err)
	}
	return result, nil
}

// QueryMultiple executes a query that returns multiple rows and scans them
func QueryMultiple[T any](ctx context.Context, q Querier, query string, scanFunc func(Rows) ([]*T, error), entityType string, args ...interface{}) ([]*T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, HandleDatabaseError("query "+entityType, err)
	}
	defer rows.Close()

	results, err := scanFunc(rows)
	if err != nil {
		return nil, HandleDatabaseError("scan "+entityType, err)
	}

	return results, nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil.
// Errors returned by fn are passed through unchanged.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin transaction", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit transaction", err)
	}
	return nil
}
