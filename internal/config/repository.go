package config

import (
	"errors"
	"os"

	"golang.org/x/xerrors"

	apperrors "pulseboard/internal/errors"
	"pulseboard/internal/repository/sqlite"
)

// CreateRepository creates a repository instance using the configuration system
func CreateRepository(config *Config) (sqlite.Repository, error) {
	dbPath := config.GetDatabasePath()
	if dbPath != ":memory:" {
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			if errors.Is(err, os.ErrPermission) {
				return nil, apperrors.NewPermissionError("create database directory", config.Database.Dir)
			}
			return nil, xerrors.Errorf("failed to create database directory: %w", err)
		}
	}

	repo, err := sqlite.NewWithOptions(dbPath, sqlite.Options{
		QueryTimeout: config.GetQueryTimeout(),
		WriteTimeout: config.GetWriteTimeout(),
	})
	if err != nil {
		return nil, xerrors.Errorf("failed to initialize database: %w", err)
	}

	return repo, nil
}
