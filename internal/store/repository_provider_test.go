package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/promptsentry/prompt-sentry/internal/logger"
	"github.com/promptsentry/prompt-sentry/models"
)

func newTestDB(t *testing.T, driver string) (*DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.NewLogger("test")
	return NewDBFromConn(conn, driver, l), mock, conn
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

func TestCreateProvider_Success(t *testing.T) {
	db, mock, conn := newTestDB(t, "pgx")
	defer conn.Close()

	repo := NewProviderRepository(db, db.logger)
	now := time.Now()

	rows := sqlmock.
		NewRows(providerColumns).
		AddRow(1, "OpenAI", "openai", "https://api.openai.com", "enc", true, now, now)

	mock.ExpectQuery("INSERT INTO providers").
		WithArgs("OpenAI", "openai", "https://api.openai.com", "enc", true).
		WillReturnRows(rows)

	created, err := repo.CreateProvider(context.Background(), models.Provider{
		Name:            "OpenAI",
		Slug:            "openai",
		BaseURL:         "https://api.openai.com",
		APIKeyEncrypted: "enc",
		Enabled:         true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected ID=1, got %d", created.ID)
	}
	if created.Slug != "openai" {
		t.Errorf("expected slug openai, got %s", created.Slug)
	}
}

func TestCreateProvider_SlugConflict(t *testing.T) {
	db, mock, conn := newTestDB(t, "pgx")
	defer conn.Close()

	repo := NewProviderRepository(db, db.logger)

	mock.ExpectQuery("INSERT INTO providers").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateProvider(context.Background(), models.Provider{Slug: "openai"})
	if !errors.Is(err, ErrSlugAlreadyExists) {
		t.Fatalf("expected ErrSlugAlreadyExists, got %v", err)
	}
}

func TestGetProviderBySlug_NotFound(t *testing.T) {
	db, mock, conn := newTestDB(t, "pgx")
	defer conn.Close()

	repo := NewProviderRepository(db, db.logger)

	mock.ExpectQuery("SELECT (.+) FROM providers").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProviderBySlug(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProvider_KeepsStoredKeyWhenEmpty(t *testing.T) {
	db, mock, conn := newTestDB(t, "pgx")
	defer conn.Close()

	repo := NewProviderRepository(db, db.logger)
	now := time.Now()

	rows := sqlmock.
		NewRows(providerColumns).
		AddRow(3, "Local", "local", "http://localhost:11434", "stored", false, now, now)

	// No api_key_encrypted argument when the update carries an empty key.
	mock.ExpectQuery("UPDATE providers SET name = (.+) WHERE id = ").
		WithArgs("Local", "local", "http://localhost:11434", false, int64(3)).
		WillReturnRows(rows)

	updated, err := repo.UpdateProvider(context.Background(), models.Provider{
		ID:      3,
		Name:    "Local",
		Slug:    "local",
		BaseURL: "http://localhost:11434",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.APIKeyEncrypted != "stored" {
		t.Errorf("expected stored key to survive, got %q", updated.APIKeyEncrypted)
	}
}

func TestDeleteProvider_NotFound(t *testing.T) {
	db, mock, conn := newTestDB(t, "pgx")
	defer conn.Close()

	repo := NewProviderRepository(db, db.logger)

	mock.ExpectExec("DELETE FROM providers").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.DeleteProvider(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
