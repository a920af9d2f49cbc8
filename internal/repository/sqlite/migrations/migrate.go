package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

//go:embed *.sql
var migrationsFS embed.FS

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// RunMigrations executes all pending migrations, each inside its own transaction.
// It refuses to run while an earlier migration is marked dirty.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if err := createMigrationsTable(ctx, db); err != nil {
		return xerrors.Errorf("failed to create migrations table: %w", err)
	}

	dirty, err := getDirtyMigrations(ctx, db)
	if err != nil {
		return xerrors.Errorf("failed to check migration state: %w", err)
	}
	if len(dirty) > 0 {
		return xerrors.Errorf("database is in a dirty state; failed migration(s): %v", dirty)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return xerrors.Errorf("failed to load migrations: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return xerrors.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(ctx, db, migration); err != nil {
			return xerrors.Errorf("failed to apply migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	return nil
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		dirty BOOLEAN NOT NULL DEFAULT FALSE
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func loadMigrations() ([]Migration, error) {
	entries, err := migrationsFS.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		version := extractVersion(entry.Name())
		if version == 0 {
			continue
		}

		upSQL, err := migrationsFS.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}

		downFile := strings.Replace(entry.Name(), ".up.sql", ".down.sql", 1)
		downSQL, err := migrationsFS.ReadFile(downFile)
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    extractName(entry.Name()),
			Up:      string(upSQL),
			Down:    string(downSQL),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func getDirtyMigrations(ctx context.Context, db *sql.DB) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM migrations WHERE dirty ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirty []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		dirty = append(dirty, version)
	}
	return dirty, rows.Err()
}

// applyMigration records the version as dirty before running it. The marker
// is committed on its own, so a migration that fails part way leaves it set
// and later runs refuse to start until someone repairs the database.
func applyMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	if _, err := db.ExecContext(ctx, "INSERT INTO migrations (version, dirty) VALUES (?, TRUE)", migration.Version); err != nil {
		return xerrors.Errorf("mark migration dirty: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE migrations SET dirty = FALSE WHERE version = ?", migration.Version); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func extractVersion(filename string) int {
	var version int
	_, _ = fmt.Sscanf(filename, "%d_", &version)
	return version
}

func extractName(filename string) string {
	name := strings.TrimSuffix(filename, ".up.sql")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
