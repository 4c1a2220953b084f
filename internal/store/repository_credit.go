// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

// creditRepository is the SQL-backed implementation of [CreditRepository]
// against the "credits" table.
//
// Race safety notes:
//   - AddUsage increments used_amount inside SQL, so two concurrent
//     consumers both land their full amount.
//   - ResetIfDue is a compare-and-swap on reset_date, so of N concurrent
//     requests that all observe an expired window exactly one resets it.
type creditRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewCreditRepository constructs a [CreditRepository] backed by the
// provided database connection and logger.
func NewCreditRepository(db *DB, logger *logger.Logger) CreditRepository {
	logger.Debug().Msg("creating credit repository")
	return &creditRepository{
		db:     db,
		logger: logger,
	}
}

var creditColumns = []string{"id", "provider_id", "model_id", "limit_type", "total_limit", "used_amount", "reset_period", "reset_date", "hard_limit", "created_at"}

func scanCredit(row sq.RowScanner) (models.CreditConfig, error) {
	var c models.CreditConfig
	err := row.Scan(&c.ID, &c.ProviderID, &c.ModelID, &c.LimitType, &c.TotalLimit, &c.UsedAmount, &c.ResetPeriod, &c.ResetDate, &c.HardLimit, &c.CreatedAt)
	return c, err
}

func (r *creditRepository) CreateCredit(ctx context.Context, credit models.CreditConfig) (models.CreditConfig, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert("credits").
		Columns("provider_id", "model_id", "limit_type", "total_limit", "used_amount", "reset_period", "reset_date", "hard_limit").
		Values(credit.ProviderID, credit.ModelID, credit.LimitType, credit.TotalLimit, credit.UsedAmount, credit.ResetPeriod, credit.ResetDate, credit.HardLimit).
		Suffix("RETURNING " + strings.Join(creditColumns, ", ")).
		ToSql()
	if err != nil {
		return models.CreditConfig{}, fmt.Errorf("build query: %w", err)
	}

	created, err := scanCredit(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		log.Err(err).Str("func", "*creditRepository.CreateCredit").Msg("error: insert failed")
		return models.CreditConfig{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return created, nil
}

func (r *creditRepository) ListCredits(ctx context.Context) ([]models.CreditConfig, error) {
	query, args, err := r.db.builder.
		Select(creditColumns...).
		From("credits").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.queryCredits(ctx, query, args)
}

// FindApplicable returns every limit that binds a call to the given
// provider and model: limits scoped to exactly that provider, limits
// scoped to exactly that model, and global limits with no scope at all.
func (r *creditRepository) FindApplicable(ctx context.Context, providerID int64, modelID *int64) ([]models.CreditConfig, error) {
	scope := sq.Or{
		sq.And{sq.Eq{"provider_id": nil}, sq.Eq{"model_id": nil}},
		sq.And{sq.Eq{"provider_id": providerID}, sq.Eq{"model_id": nil}},
	}
	if modelID != nil {
		scope = append(scope, sq.Eq{"model_id": *modelID})
	}

	query, args, err := r.db.builder.
		Select(creditColumns...).
		From("credits").
		Where(scope).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.queryCredits(ctx, query, args)
}

func (r *creditRepository) queryCredits(ctx context.Context, query string, args []interface{}) ([]models.CreditConfig, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*creditRepository.queryCredits").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var credits []models.CreditConfig
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, credit)
	}
	return credits, rows.Err()
}

func (r *creditRepository) UpdateCredit(ctx context.Context, credit models.CreditConfig) (models.CreditConfig, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update("credits").
		Set("provider_id", credit.ProviderID).
		Set("model_id", credit.ModelID).
		Set("limit_type", credit.LimitType).
		Set("total_limit", credit.TotalLimit).
		Set("used_amount", credit.UsedAmount).
		Set("reset_period", credit.ResetPeriod).
		Set("reset_date", credit.ResetDate).
		Set("hard_limit", credit.HardLimit).
		Where(sq.Eq{"id": credit.ID}).
		Suffix("RETURNING " + strings.Join(creditColumns, ", ")).
		ToSql()
	if err != nil {
		return models.CreditConfig{}, fmt.Errorf("build query: %w", err)
	}

	updated, err := scanCredit(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CreditConfig{}, ErrNotFound
		}
		log.Err(err).Str("func", "*creditRepository.UpdateCredit").Msg("error: update failed")
		return models.CreditConfig{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return updated, nil
}

func (r *creditRepository) DeleteCredit(ctx context.Context, id int64) error {
	query, args, err := r.db.builder.
		Delete("credits").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddUsage increments used_amount in place. The arithmetic runs in the
// database so concurrent increments both take effect.
func (r *creditRepository) AddUsage(ctx context.Context, creditID int64, amount float64) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update("credits").
		Set("used_amount", sq.Expr("used_amount + ?", amount)).
		Where(sq.Eq{"id": creditID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*creditRepository.AddUsage").Msg("error: increment failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetIfDue zeroes used_amount and moves reset_date to nextReset, guarded
// by the reset_date the caller read. A stale observedReset matches no row
// and the method reports false without touching anything.
func (r *creditRepository) ResetIfDue(ctx context.Context, creditID int64, observedReset, nextReset time.Time) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update("credits").
		Set("used_amount", 0).
		Set("reset_date", nextReset).
		Where(sq.Eq{"id": creditID, "reset_date": observedReset}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*creditRepository.ResetIfDue").Msg("error: reset failed")
		return false, fmt.Errorf("unexpected DB error: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
