package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Files holds the records, medical_resources and access_logs schema.
//
//go:embed *.sql
var Files embed.FS

// State is the schema version recorded by golang-migrate.
type State struct {
	Version uint
	Dirty   bool
}

// RunMigrations brings the vitals schema up to date. With autoMigrate off it
// only reports the current version; the postgres adapter then refuses to
// start if tables are missing.
func RunMigrations(db *sql.DB, autoMigrate bool) error {
	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	before, err := currentState(m)
	if err != nil {
		return err
	}
	if before.Dirty {
		// Every up script uses IF NOT EXISTS, so the interrupted version can be
		// forced clean and re-applied.
		slog.Warn("[Migrations] Dirty schema, forcing version", "version", before.Version)
		if err := m.Force(int(before.Version)); err != nil {
			return fmt.Errorf("force dirty version %d: %w", before.Version, err)
		}
	}

	if !autoMigrate {
		slog.Info("[Migrations] Auto-migrate disabled", "version", before.Version)
		return nil
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Info("[Migrations] Schema up to date", "version", before.Version)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	after, err := currentState(m)
	if err != nil {
		return err
	}
	slog.Info("[Migrations] Applied", "from", before.Version, "to", after.Version)
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(Files, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}

// currentState treats an empty schema as version 0.
func currentState(m *migrate.Migrate) (State, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read migration version: %w", err)
	}
	return State{Version: v, Dirty: dirty}, nil
}
