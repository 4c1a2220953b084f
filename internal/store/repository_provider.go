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

// providerRepository is the SQL-backed implementation of
// [ProviderRepository] against the "providers" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type providerRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewProviderRepository constructs a [ProviderRepository] backed by the
// provided database connection and logger.
func NewProviderRepository(db *DB, logger *logger.Logger) ProviderRepository {
	logger.Debug().Msg("creating provider repository")
	return &providerRepository{
		db:     db,
		logger: logger,
	}
}

var providerColumns = []string{"id", "name", "slug", "base_url", "api_key_encrypted", "enabled", "created_at", "updated_at"}

func scanProvider(row sq.RowScanner) (models.Provider, error) {
	var p models.Provider
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.BaseURL, &p.APIKeyEncrypted, &p.Enabled, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateProvider persists a new provider. A slug collision maps to
// [ErrSlugAlreadyExists].
func (r *providerRepository) CreateProvider(ctx context.Context, provider models.Provider) (models.Provider, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert("providers").
		Columns("name", "slug", "base_url", "api_key_encrypted", "enabled").
		Values(provider.Name, provider.Slug, provider.BaseURL, provider.APIKeyEncrypted, provider.Enabled).
		Suffix("RETURNING " + strings.Join(providerColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Provider{}, fmt.Errorf("build query: %w", err)
	}

	created, err := scanProvider(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Provider{}, ErrSlugAlreadyExists
		}
		log.Err(err).Str("func", "*providerRepository.CreateProvider").Msg("error: insert failed")
		return models.Provider{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return created, nil
}

func (r *providerRepository) GetProvider(ctx context.Context, id int64) (models.Provider, error) {
	query, args, err := r.db.builder.
		Select(providerColumns...).
		From("providers").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Provider{}, fmt.Errorf("build query: %w", err)
	}

	provider, err := scanProvider(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Provider{}, ErrNotFound
	}
	return provider, err
}

func (r *providerRepository) GetProviderBySlug(ctx context.Context, slug string) (models.Provider, error) {
	query, args, err := r.db.builder.
		Select(providerColumns...).
		From("providers").
		Where(sq.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return models.Provider{}, fmt.Errorf("build query: %w", err)
	}

	provider, err := scanProvider(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Provider{}, ErrNotFound
	}
	return provider, err
}

func (r *providerRepository) ListProviders(ctx context.Context) ([]models.Provider, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select(providerColumns...).
		From("providers").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*providerRepository.ListProviders").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var providers []models.Provider
	for rows.Next() {
		provider, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}
	return providers, rows.Err()
}

// UpdateProvider overwrites the mutable provider fields. An empty
// APIKeyEncrypted keeps the stored key.
func (r *providerRepository) UpdateProvider(ctx context.Context, provider models.Provider) (models.Provider, error) {
	log := logger.FromContext(ctx)

	update := r.db.builder.
		Update("providers").
		Set("name", provider.Name).
		Set("slug", provider.Slug).
		Set("base_url", provider.BaseURL).
		Set("enabled", provider.Enabled).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": provider.ID})
	if provider.APIKeyEncrypted != "" {
		update = update.Set("api_key_encrypted", provider.APIKeyEncrypted)
	}

	query, args, err := update.Suffix("RETURNING " + strings.Join(providerColumns, ", ")).ToSql()
	if err != nil {
		return models.Provider{}, fmt.Errorf("build query: %w", err)
	}

	updated, err := scanProvider(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Provider{}, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return models.Provider{}, ErrSlugAlreadyExists
		}
		log.Err(err).Str("func", "*providerRepository.UpdateProvider").Msg("error: update failed")
		return models.Provider{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	return updated, nil
}

func (r *providerRepository) DeleteProvider(ctx context.Context, id int64) error {
	query, args, err := r.db.builder.
		Delete("providers").
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
