// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

// usageRepository persists append-only usage accounting rows in the
// "usage_logs" table. Rows are never updated or deleted.
type usageRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUsageRepository constructs a [UsageRepository] backed by the provided
// database connection and logger.
func NewUsageRepository(db *DB, logger *logger.Logger) UsageRepository {
	logger.Debug().Msg("creating usage repository")
	return &usageRepository{
		db:     db,
		logger: logger,
	}
}

var usageColumns = []string{"id", "provider_id", "model_name", "input_tokens", "output_tokens", "total_tokens", "cost", "ts"}

func scanUsage(row sq.RowScanner) (models.UsageRecord, error) {
	var u models.UsageRecord
	err := row.Scan(&u.ID, &u.ProviderID, &u.ModelName, &u.InputTokens, &u.OutputTokens, &u.TotalTokens, &u.Cost, &u.Timestamp)
	return u, err
}

func (r *usageRepository) RecordUsage(ctx context.Context, record models.UsageRecord) (models.UsageRecord, error) {
	log := logger.FromContext(ctx)

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	query, args, err := r.db.builder.
		Insert("usage_logs").
		Columns("provider_id", "model_name", "input_tokens", "output_tokens", "total_tokens", "cost", "ts").
		Values(record.ProviderID, record.ModelName, record.InputTokens, record.OutputTokens, record.TotalTokens, record.Cost, record.Timestamp).
		Suffix("RETURNING " + strings.Join(usageColumns, ", ")).
		ToSql()
	if err != nil {
		return models.UsageRecord{}, fmt.Errorf("build query: %w", err)
	}

	created, err := scanUsage(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Err(err).Str("func", "*usageRepository.RecordUsage").Msg("error: insert failed")
		return models.UsageRecord{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return created, nil
}

// ListUsage returns records at or after since, newest first. A zero since
// returns everything.
func (r *usageRepository) ListUsage(ctx context.Context, since time.Time) ([]models.UsageRecord, error) {
	log := logger.FromContext(ctx)

	builder := r.db.builder.
		Select(usageColumns...).
		From("usage_logs").
		OrderBy("ts DESC")
	if !since.IsZero() {
		builder = builder.Where(sq.GtOrEq{"ts": since})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*usageRepository.ListUsage").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var records []models.UsageRecord
	for rows.Next() {
		record, err := scanUsage(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
