// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

// modelRepository is the SQL-backed implementation of [ModelRepository]
// against the "models" table.
type modelRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewModelRepository constructs a [ModelRepository] backed by the provided
// database connection and logger.
func NewModelRepository(db *DB, logger *logger.Logger) ModelRepository {
	logger.Debug().Msg("creating model repository")
	return &modelRepository{
		db:     db,
		logger: logger,
	}
}

var modelColumns = []string{"id", "provider_id", "model_name", "display_name", "input_cost_per_1k", "output_cost_per_1k", "max_context_tokens", "enabled"}

func scanModel(row sq.RowScanner) (models.Model, error) {
	var m models.Model
	err := row.Scan(&m.ID, &m.ProviderID, &m.ModelName, &m.DisplayName, &m.InputCostPer1K, &m.OutputCostPer1K, &m.MaxContextTokens, &m.Enabled)
	return m, err
}

// CreateModel persists a new model. A (provider, model name) collision
// maps to [ErrModelAlreadyExists].
func (r *modelRepository) CreateModel(ctx context.Context, model models.Model) (models.Model, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert("models").
		Columns("provider_id", "model_name", "display_name", "input_cost_per_1k", "output_cost_per_1k", "max_context_tokens", "enabled").
		Values(model.ProviderID, model.ModelName, model.DisplayName, model.InputCostPer1K, model.OutputCostPer1K, model.MaxContextTokens, model.Enabled).
		Suffix("RETURNING " + strings.Join(modelColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Model{}, fmt.Errorf("build query: %w", err)
	}

	created, err := scanModel(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Model{}, ErrModelAlreadyExists
		}
		log.Err(err).Str("func", "*modelRepository.CreateModel").Msg("error: insert failed")
		return models.Model{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return created, nil
}

func (r *modelRepository) GetModel(ctx context.Context, id int64) (models.Model, error) {
	query, args, err := r.db.builder.
		Select(modelColumns...).
		From("models").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Model{}, fmt.Errorf("build query: %w", err)
	}

	model, err := scanModel(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Model{}, ErrNotFound
	}
	return model, err
}

// FindModelByName resolves a model by its wire name across all enabled
// providers. When several providers serve the same name the lowest model
// id wins, which keeps resolution deterministic.
func (r *modelRepository) FindModelByName(ctx context.Context, modelName string) (models.Model, error) {
	query, args, err := r.db.builder.
		Select(
			"m.id", "m.provider_id", "m.model_name", "m.display_name",
			"m.input_cost_per_1k", "m.output_cost_per_1k", "m.max_context_tokens", "m.enabled",
		).
		From("models m").
		Join("providers p ON p.id = m.provider_id").
		Where(sq.Eq{"m.model_name": modelName, "m.enabled": true, "p.enabled": true}).
		OrderBy("m.id").
		Limit(1).
		ToSql()
	if err != nil {
		return models.Model{}, fmt.Errorf("build query: %w", err)
	}

	model, err := scanModel(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Model{}, ErrNotFound
	}
	return model, err
}

// ListModels returns all models, optionally narrowed to one provider when
// providerID is non-zero.
func (r *modelRepository) ListModels(ctx context.Context, providerID int64) ([]models.Model, error) {
	log := logger.FromContext(ctx)

	builder := r.db.builder.
		Select(modelColumns...).
		From("models").
		OrderBy("id")
	if providerID != 0 {
		builder = builder.Where(sq.Eq{"provider_id": providerID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*modelRepository.ListModels").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var list []models.Model
	for rows.Next() {
		model, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, model)
	}
	return list, rows.Err()
}

func (r *modelRepository) UpdateModel(ctx context.Context, model models.Model) (models.Model, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update("models").
		Set("display_name", model.DisplayName).
		Set("input_cost_per_1k", model.InputCostPer1K).
		Set("output_cost_per_1k", model.OutputCostPer1K).
		Set("max_context_tokens", model.MaxContextTokens).
		Set("enabled", model.Enabled).
		Where(sq.Eq{"id": model.ID}).
		Suffix("RETURNING " + strings.Join(modelColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Model{}, fmt.Errorf("build query: %w", err)
	}

	updated, err := scanModel(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Model{}, ErrNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*modelRepository.UpdateModel").Msg("error: update failed")
		return models.Model{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return updated, nil
}

func (r *modelRepository) DeleteModel(ctx context.Context, id int64) error {
	query, args, err := r.db.builder.
		Delete("models").
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
