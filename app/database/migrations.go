package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const migrationsTable = "schema_migrations"

//go:embed migrations/*.sql
var migrationFS embed.FS

// RunMigrations brings the history schema up to date. It returns the schema
// version and whether an earlier migration was left half-applied.
func RunMigrations(db *DB) (uint, bool, error) {
	m, err := newMigrator(db)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	switch err := m.Up(); {
	case errors.Is(err, migrate.ErrNoChange):
		slog.Debug("History schema up to date")
	case err != nil:
		return 0, false, fmt.Errorf("%w: failed to migrate history schema: %w", ErrStorage, err)
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to read schema version: %w", ErrStorage, err)
	}

	return version, dirty, nil
}

func newMigrator(db *DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, fmt.Errorf("failed to prepare sqlite driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare migrator: %w", err)
	}
	m.Log = migrateLogger{}

	return m, nil
}

// migrateLogger forwards migration progress to slog at debug level.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	slog.Debug("History migration", "step", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool {
	return false
}
