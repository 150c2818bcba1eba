package nlp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"geopulse/internal/storage"
)

func TestRun_StorageFailureAbortsWithoutReQueryingSameChunk(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := storage.New(db)
	p := NewProcessor(store, nil)
	p.parallelism = 1

	mock.ExpectQuery(regexp.QuoteMeta("FROM raw_events re")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "country_id", "event_date", "title", "source_url", "domain", "language", "created_at"}).
			AddRow(1, 1, time.Now().UTC(), "title", "https://example.com/a", "example.com", "en", time.Now().UTC()))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processed_events")).
		WillReturnError(errors.New("connection reset"))

	result, err := p.Run(context.Background())
	if err == nil {
		t.Fatalf("expected error from storage failure, got nil")
	}
	if result.Processed != 0 {
		t.Fatalf("processed = %d, want 0 on abort", result.Processed)
	}
	// A second UnprocessedRawEvents query was never issued: Run must abort
	// on the first storage failure rather than looping on the same chunk.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRun_DrainsUntilEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := storage.New(db)
	p := NewProcessor(store, nil)
	p.parallelism = 1

	mock.ExpectQuery(regexp.QuoteMeta("FROM raw_events re")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "country_id", "event_date", "title", "source_url", "domain", "language", "created_at"}).
			AddRow(1, 1, time.Now().UTC(), "title one", "https://example.com/a", "example.com", "en", time.Now().UTC()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO processed_events")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	mock.ExpectQuery(regexp.QuoteMeta("FROM raw_events re")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "country_id", "event_date", "title", "source_url", "domain", "language", "created_at"}))

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("processed = %d, want 1", result.Processed)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
