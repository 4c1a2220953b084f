package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/promptsentry/prompt-sentry/models"
)

func TestGetEntry_ExpiredLooksMissing(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewVaultRepository(db, db.logger)
	expired := time.Now().Add(-time.Minute)

	rows := sqlmock.
		NewRows(vaultColumns).
		AddRow("VAULT_TOK_dead", "ct", "iv", "tag", "EMAIL", time.Now().Add(-time.Hour), expired)

	mock.ExpectQuery("SELECT (.+) FROM token_vault").
		WithArgs("VAULT_TOK_dead").
		WillReturnRows(rows)

	_, err := repo.GetEntry(context.Background(), "VAULT_TOK_dead")
	if !errors.Is(err, ErrVaultTokenNotFound) {
		t.Fatalf("expected ErrVaultTokenNotFound for expired token, got %v", err)
	}
}

func TestGetEntry_NoExpiryNeverExpires(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewVaultRepository(db, db.logger)

	rows := sqlmock.
		NewRows(vaultColumns).
		AddRow("VAULT_TOK_live", "ct", "iv", "tag", "API_KEY", time.Now().Add(-24*time.Hour), nil)

	mock.ExpectQuery("SELECT (.+) FROM token_vault").
		WithArgs("VAULT_TOK_live").
		WillReturnRows(rows)

	entry, err := repo.GetEntry(context.Background(), "VAULT_TOK_live")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Type != "API_KEY" {
		t.Errorf("expected type API_KEY, got %s", entry.Type)
	}
	if entry.ExpiresAt != nil {
		t.Error("expected nil expiry")
	}
}

func TestPurgeExpired_ReportsDeletedCount(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewVaultRepository(db, db.logger)
	now := time.Now()

	mock.ExpectExec(`DELETE FROM token_vault WHERE \(expires_at IS NOT NULL AND expires_at <= \?\)`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.PurgeExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 3 {
		t.Errorf("expected 3 purged rows, got %d", purged)
	}
}

func TestSaveEntry_PersistsAllParts(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewVaultRepository(db, db.logger)
	created := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	expires := created.Add(time.Hour)

	mock.ExpectExec("INSERT INTO token_vault").
		WithArgs("VAULT_TOK_ab12", "ct", "iv", "tag", "EMAIL", created, expires).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveEntry(context.Background(), models.VaultEntry{
		TokenID:    "VAULT_TOK_ab12",
		Ciphertext: "ct",
		IV:         "iv",
		AuthTag:    "tag",
		Type:       "EMAIL",
		CreatedAt:  created,
		ExpiresAt:  &expires,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
