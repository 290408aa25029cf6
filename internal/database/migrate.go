package database

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/geoquiz/geoquiz-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
)

// NewMigrator builds a migrate instance on top of an open connection.
// root is the directory holding the per-dialect migration folders.
func NewMigrator(db *sqlx.DB, cfg config.DBConfig, root string) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)

	// Use driver instance directly to avoid DSN parsing issues with in-memory SQLite
	if cfg.IsSQLite() {
		driver, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	} else {
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create %s migration driver: %w", cfg.MigrationsDir(), err)
	}

	sourcePath := "file://" + filepath.ToSlash(filepath.Join(root, cfg.MigrationsDir()))
	m, err := migrate.NewWithDatabaseInstance(sourcePath, DriverName(cfg), driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// Migrate applies every pending migration found under root
func Migrate(db *sqlx.DB, cfg config.DBConfig, root string) error {
	m, err := NewMigrator(db, cfg, root)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
