package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestAddUsage_IncrementsInSQL(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewCreditRepository(db, db.logger)

	mock.ExpectExec(`UPDATE credits SET used_amount = used_amount \+ \? WHERE id = \?`).
		WithArgs(2.5, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.AddUsage(context.Background(), 7, 2.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestAddUsage_MissingCredit(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewCreditRepository(db, db.logger)

	mock.ExpectExec("UPDATE credits").
		WithArgs(1.0, int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.AddUsage(context.Background(), 99, 1.0); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResetIfDue_WinsRace(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewCreditRepository(db, db.logger)
	observed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	next := observed.AddDate(0, 1, 0)

	mock.ExpectExec(`UPDATE credits SET used_amount = \?, reset_date = \? WHERE id = \? AND reset_date = \?`).
		WithArgs(0, next, int64(4), observed).
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.ResetIfDue(context.Background(), 4, observed, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !won {
		t.Error("expected the reset to apply")
	}
}

func TestResetIfDue_LosesRace(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewCreditRepository(db, db.logger)
	observed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	next := observed.AddDate(0, 0, 1)

	// Another request already advanced reset_date: the guard matches no row.
	mock.ExpectExec("UPDATE credits").
		WithArgs(0, next, int64(4), observed).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.ResetIfDue(context.Background(), 4, observed, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if won {
		t.Error("expected the reset to be skipped")
	}
}

func TestFindApplicable_ScopesToProviderModelAndGlobal(t *testing.T) {
	db, mock, conn := newTestDB(t, "sqlite3")
	defer conn.Close()

	repo := NewCreditRepository(db, db.logger)
	now := time.Now()
	modelID := int64(12)

	rows := sqlmock.
		NewRows(creditColumns).
		AddRow(1, nil, nil, "dollars", 100.0, 10.0, "monthly", now, true, now).
		AddRow(2, int64(5), nil, "requests", 1000.0, 3.0, "daily", now, true, now).
		AddRow(3, int64(5), modelID, "tokens", 50000.0, 0.0, "weekly", now, false, now)

	mock.ExpectQuery("SELECT (.+) FROM credits").
		WillReturnRows(rows)

	credits, err := repo.FindApplicable(context.Background(), 5, &modelID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(credits) != 3 {
		t.Fatalf("expected 3 applicable credits, got %d", len(credits))
	}
	if credits[0].ProviderID != nil {
		t.Error("expected the first row to be globally scoped")
	}
	if credits[2].ModelID == nil || *credits[2].ModelID != modelID {
		t.Error("expected the third row to be model scoped")
	}
}
