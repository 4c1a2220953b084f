// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/promptsentry/prompt-sentry/internal/config"
	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/migrations"
)

// DB wraps the shared connection with a driver-aware statement builder so
// the same repository code runs against SQLite (local single-binary
// install) and PostgreSQL (shared deployment).
type DB struct {
	*sql.DB
	driver  string
	builder sq.StatementBuilderType
	logger  *logger.Logger
}

// NewConnect opens the configured database, verifies it with a ping, and
// returns the wrapped handle. The driver decides the placeholder format:
// $N for pgx, ? for sqlite3.
func NewConnect(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnect").Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// SQLite serializes writers; a single connection avoids
		// SQLITE_BUSY churn under concurrent requests.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
	}

	if err := conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnect").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Info().Str("func", "NewConnect").Str("driver", cfg.Driver).Msg("connected to database successfully")

	return &DB{
		DB:      conn,
		driver:  cfg.Driver,
		builder: builderFor(cfg.Driver),
		logger:  log,
	}, nil
}

func builderFor(driver string) sq.StatementBuilderType {
	if driver == "pgx" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// NewDBFromConn wraps an existing connection. Used by repository tests
// running against sqlmock.
func NewDBFromConn(conn *sql.DB, driver string, log *logger.Logger) *DB {
	return &DB{
		DB:      conn,
		driver:  driver,
		builder: builderFor(driver),
		logger:  log,
	}
}

// Migrate applies the embedded schema migrations for this driver.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}
