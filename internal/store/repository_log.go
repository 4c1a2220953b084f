// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

// logRepository persists pipeline decision records in the "request_logs"
// table. The reasons slice is stored as a JSON array in a text column so
// both SQL backends handle it identically.
type logRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewLogRepository constructs a [LogRepository] backed by the provided
// database connection and logger.
func NewLogRepository(db *DB, logger *logger.Logger) LogRepository {
	logger.Debug().Msg("creating log repository")
	return &logRepository{
		db:     db,
		logger: logger,
	}
}

var logColumns = []string{"id", "ts", "model", "provider", "original_hash", "sanitized_text", "secrets_found", "pii_found", "files_blocked", "risk_score", "action", "reasons", "response_time_ms"}

func scanLog(row sq.RowScanner) (models.LogEntry, error) {
	var (
		e       models.LogEntry
		reasons string
	)
	err := row.Scan(&e.ID, &e.Timestamp, &e.Model, &e.Provider, &e.OriginalHash, &e.SanitizedText,
		&e.SecretsFound, &e.PIIFound, &e.FilesBlocked, &e.RiskScore, &e.Action, &reasons, &e.ResponseTimeMs)
	if err != nil {
		return models.LogEntry{}, err
	}
	if reasons != "" {
		if err := json.Unmarshal([]byte(reasons), &e.Reasons); err != nil {
			return models.LogEntry{}, fmt.Errorf("decode reasons: %w", err)
		}
	}
	return e, nil
}

func (r *logRepository) AppendLog(ctx context.Context, entry models.LogEntry) (models.LogEntry, error) {
	log := logger.FromContext(ctx)

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Reasons == nil {
		entry.Reasons = []string{}
	}
	reasons, err := json.Marshal(entry.Reasons)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("encode reasons: %w", err)
	}

	query, args, err := r.db.builder.
		Insert("request_logs").
		Columns("ts", "model", "provider", "original_hash", "sanitized_text", "secrets_found", "pii_found", "files_blocked", "risk_score", "action", "reasons", "response_time_ms").
		Values(entry.Timestamp, entry.Model, entry.Provider, entry.OriginalHash, entry.SanitizedText,
			entry.SecretsFound, entry.PIIFound, entry.FilesBlocked, entry.RiskScore, entry.Action, string(reasons), entry.ResponseTimeMs).
		Suffix("RETURNING " + strings.Join(logColumns, ", ")).
		ToSql()
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("build query: %w", err)
	}

	created, err := scanLog(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Err(err).Str("func", "*logRepository.AppendLog").Msg("error: insert failed")
		return models.LogEntry{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return created, nil
}

// QueryLogs returns decision records matching the filter, newest first.
// Zero-valued filter fields add no predicate.
func (r *logRepository) QueryLogs(ctx context.Context, filter models.LogFilter) ([]models.LogEntry, error) {
	log := logger.FromContext(ctx)

	builder := r.db.builder.
		Select(logColumns...).
		From("request_logs").
		OrderBy("ts DESC")
	if filter.Action != "" {
		builder = builder.Where(sq.Eq{"action": filter.Action})
	}
	if filter.Model != "" {
		builder = builder.Where(sq.Eq{"model": filter.Model})
	}
	if !filter.Since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"ts": filter.Since})
	}
	if !filter.Until.IsZero() {
		builder = builder.Where(sq.LtOrEq{"ts": filter.Until})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*logRepository.QueryLogs").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		entry, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
