package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationFS embed.FS

// Migrate applies all pending migrations for the dialect and returns the
// resulting schema version.
func Migrate(db *sql.DB, d Dialect) (uint, error) {
	var (
		driver database.Driver
		err    error
	)
	switch d {
	case SQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	case Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return 0, fmt.Errorf("unknown dialect %q", d)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to create %s driver: %w", d, err)
	}

	source, err := iofs.New(migrationFS, "migrations/"+string(d))
	if err != nil {
		return 0, fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(d), driver)
	if err != nil {
		return 0, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
