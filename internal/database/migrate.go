package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DefaultMigrationsDir is resolved relative to the working directory.
const DefaultMigrationsDir = "migrations"

// RunMigrations applies every pending up migration from dir.
func RunMigrations(databaseURL, dir string) error {
	m, closeFn, err := newMigrate(databaseURL, dir)
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	upToDate := errors.Is(err, migrate.ErrNoChange)

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Println("migrations: database is up to date (no migrations applied)")
	case dirty:
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	case upToDate:
		log.Printf("migrations: database is up to date (version %d)", version)
	default:
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}

// RollbackMigrations reverts the given number of migrations.
func RollbackMigrations(databaseURL, dir string, steps int) error {
	if steps < 1 {
		return fmt.Errorf("steps must be at least 1, got %d", steps)
	}

	m, closeFn, err := newMigrate(databaseURL, dir)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	log.Printf("migrations: rolled back %d step(s)", steps)
	return nil
}

// MigrationVersion reports the current schema version; 0 means none applied.
func MigrationVersion(databaseURL, dir string) (uint, bool, error) {
	m, closeFn, err := newMigrate(databaseURL, dir)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

func newMigrate(databaseURL, dir string) (*migrate.Migrate, func(), error) {
	if dir == "" {
		dir = DefaultMigrationsDir
	}

	// golang-migrate needs a database/sql handle
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database for migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, func() { _, _ = m.Close() }, nil
}
