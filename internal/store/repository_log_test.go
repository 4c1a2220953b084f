package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/promptsentry/prompt-sentry/models"
)

func TestAppendLog_EncodesReasonsAsJSON(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewLogRepository(db, db.logger)
	ts := time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.
		NewRows(logColumns).
		AddRow(1, ts, "gpt-4", "openai", "abc123", "redacted text", 1, 0, 0, 80, "BLOCK", `["Critical secret detected"]`, int64(12))

	mock.ExpectQuery("INSERT INTO request_logs").
		WithArgs(ts, "gpt-4", "openai", "abc123", "redacted text", 1, 0, 0, 80, models.ActionBlock, `["Critical secret detected"]`, int64(12)).
		WillReturnRows(rows)

	created, err := repo.AppendLog(context.Background(), models.LogEntry{
		Timestamp:      ts,
		Model:          "gpt-4",
		Provider:       "openai",
		OriginalHash:   "abc123",
		SanitizedText:  "redacted text",
		SecretsFound:   1,
		RiskScore:      80,
		Action:         models.ActionBlock,
		Reasons:        []string{"Critical secret detected"},
		ResponseTimeMs: 12,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("expected ID=1, got %d", created.ID)
	}
	if len(created.Reasons) != 1 || created.Reasons[0] != "Critical secret detected" {
		t.Errorf("expected decoded reasons, got %v", created.Reasons)
	}
}

func TestQueryLogs_BuildsFilterPredicates(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewLogRepository(db, db.logger)
	since := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.
		NewRows(logColumns).
		AddRow(2, since.Add(time.Hour), "gpt-4", "openai", "h2", "", 0, 1, 0, 40, "REDACT", `["Email detected"]`, int64(5))

	mock.ExpectQuery(`SELECT (.+) FROM request_logs WHERE action = \? AND model = \? AND ts >= \? ORDER BY ts DESC LIMIT 10`).
		WithArgs(models.ActionRedact, "gpt-4", since).
		WillReturnRows(rows)

	entries, err := repo.QueryLogs(context.Background(), models.LogFilter{
		Action: models.ActionRedact,
		Model:  "gpt-4",
		Since:  since,
		Limit:  10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Action != models.ActionRedact {
		t.Errorf("expected REDACT action, got %s", entries[0].Action)
	}
}

func TestQueryLogs_NoFilterAddsNoPredicates(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewLogRepository(db, db.logger)

	rows := sqlmock.NewRows(logColumns)
	mock.ExpectQuery(`SELECT (.+) FROM request_logs ORDER BY ts DESC$`).
		WillReturnRows(rows)

	entries, err := repo.QueryLogs(context.Background(), models.LogFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
