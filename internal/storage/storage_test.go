package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"geopulse/internal/domain"
)

func TestInsertRawEvent_DuplicateIsNoopInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := New(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO raw_events")).
		WithArgs(1, sqlmock.AnyArg(), "title", "https://example.com/a", "example.com", "en").
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := store.InsertRawEvent(context.Background(), domain.RawEvent{
		CountryID: 1,
		EventDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Title:     "title",
		SourceURL: "https://example.com/a",
		Domain:    "example.com",
		Language:  "en",
	})
	if err != nil {
		t.Fatalf("insert raw event: %v", err)
	}
	if inserted {
		t.Fatalf("inserted = true, want false on conflict")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertProcessedEvent_WritesAllColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := New(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processed_events")).
		WithArgs(int64(1), "conflict", -0.8, 1.0, 0.62, "nlp-v1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.UpsertProcessedEvent(context.Background(), domain.ProcessedEvent{
		RawEventID:     1,
		RiskCategory:   domain.CategoryConflict,
		SentimentScore: -0.8,
		SeverityScore:  1.0,
		Confidence:     0.62,
		NLPVersion:     "nlp-v1",
	})
	if err != nil {
		t.Fatalf("upsert processed event: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLatestModelVersion_NoRowsPropagatesErr(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := New(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT model_version FROM model_artifacts")).
		WillReturnRows(sqlmock.NewRows([]string{"model_version"}))

	if _, err := store.LatestModelVersion(context.Background()); err == nil {
		t.Fatalf("expected error when no model artifacts exist")
	}
}

func TestHasRiskScores(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := New(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM risk_scores WHERE country_id = $1)")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	has, err := store.HasRiskScores(context.Background(), 7)
	if err != nil {
		t.Fatalf("has risk scores: %v", err)
	}
	if has {
		t.Fatalf("has = true, want false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
