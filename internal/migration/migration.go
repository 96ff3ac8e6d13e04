package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Two migration sets live side by side: the platform set carries the tenant
// registry, the tenant set carries the CRM schema applied to every tenant
// database.
const (
	SetPlatform = "platform"
	SetTenant   = "tenant"
)

// Run applies one embedded migration set against a postgres handle. Schemas
// for non-postgres binds (dev and test sqlite) are created through gorm's
// AutoMigrate by the provisioner instead.
func Run(db *sql.DB, set string) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, "migrations/"+set)
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", set, err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: set + "_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply %s migrations: %w", set, upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
