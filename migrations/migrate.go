package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var embedMigrations embed.FS

// Migrate applies the embedded schema migrations for the given driver
// ("pgx" or "sqlite3"). Each driver has its own migration directory
// because the two engines disagree on auto-increment and timestamp DDL.
func Migrate(db *sql.DB, driver string) error {
	if db == nil {
		return errors.New("migration error: db is nil")
	}

	var dir, dialect string
	switch driver {
	case "pgx":
		dir, dialect = "postgres", "postgres"
	case "sqlite3":
		dir, dialect = "sqlite", "sqlite3"
	default:
		return fmt.Errorf("migration error: unsupported driver %q", driver)
	}

	sub, err := fs.Sub(embedMigrations, dir)
	if err != nil {
		return fmt.Errorf("migration error reading embedded dir: %w", err)
	}
	goose.SetBaseFS(sub)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
