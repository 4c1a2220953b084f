// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

// vaultRepository persists reversible-redaction records in the
// "token_vault" table. Lookups treat an expired row the same as a missing
// one, so a token that outlived its TTL cannot be resolved even before
// the purge worker removes it.
type vaultRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewVaultRepository constructs a [VaultRepository] backed by the provided
// database connection and logger.
func NewVaultRepository(db *DB, logger *logger.Logger) VaultRepository {
	logger.Debug().Msg("creating vault repository")
	return &vaultRepository{
		db:     db,
		logger: logger,
	}
}

var vaultColumns = []string{"token_id", "ciphertext", "iv", "auth_tag", "type", "created_at", "expires_at"}

func scanVaultEntry(row sq.RowScanner) (models.VaultEntry, error) {
	var e models.VaultEntry
	err := row.Scan(&e.TokenID, &e.Ciphertext, &e.IV, &e.AuthTag, &e.Type, &e.CreatedAt, &e.ExpiresAt)
	return e, err
}

func (r *vaultRepository) SaveEntry(ctx context.Context, entry models.VaultEntry) error {
	log := logger.FromContext(ctx)

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query, args, err := r.db.builder.
		Insert("token_vault").
		Columns(vaultColumns...).
		Values(entry.TokenID, entry.Ciphertext, entry.IV, entry.AuthTag, entry.Type, entry.CreatedAt, entry.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*vaultRepository.SaveEntry").Msg("error: insert failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	return nil
}

// GetEntry returns the live entry for tokenID. Missing and expired tokens
// are indistinguishable to the caller.
func (r *vaultRepository) GetEntry(ctx context.Context, tokenID string) (models.VaultEntry, error) {
	query, args, err := r.db.builder.
		Select(vaultColumns...).
		From("token_vault").
		Where(sq.Eq{"token_id": tokenID}).
		ToSql()
	if err != nil {
		return models.VaultEntry{}, fmt.Errorf("build query: %w", err)
	}

	entry, err := scanVaultEntry(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.VaultEntry{}, ErrVaultTokenNotFound
	}
	if err != nil {
		return models.VaultEntry{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	if entry.ExpiresAt != nil && !entry.ExpiresAt.After(time.Now()) {
		return models.VaultEntry{}, ErrVaultTokenNotFound
	}
	return entry, nil
}

func (r *vaultRepository) DeleteEntry(ctx context.Context, tokenID string) error {
	query, args, err := r.db.builder.
		Delete("token_vault").
		Where(sq.Eq{"token_id": tokenID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrVaultTokenNotFound
	}
	return nil
}

func (r *vaultRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Delete("token_vault").
		Where(sq.And{
			sq.NotEq{"expires_at": nil},
			sq.LtOrEq{"expires_at": now},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.PurgeExpired").Msg("error: purge failed")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}
	return result.RowsAffected()
}

// ListTokens returns every stored entry without decrypting anything,
// expired rows included, so operators can see what the purge worker has
// not collected yet.
func (r *vaultRepository) ListTokens(ctx context.Context) ([]models.VaultEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select(vaultColumns...).
		From("token_vault").
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*vaultRepository.ListTokens").Msg("error: query failed")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var entries []models.VaultEntry
	for rows.Next() {
		entry, err := scanVaultEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
