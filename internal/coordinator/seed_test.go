package coordinator

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"geopulse/internal/storage"
)

func TestSeedColdStartHistory_SkipsCountriesWithExistingScores(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := storage.New(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, region FROM countries")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "region"}).
			AddRow(1, "US", "United States", "North America"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM risk_scores WHERE country_id = $1)")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	written, err := SeedColdStartHistory(context.Background(), store)
	if err != nil {
		t.Fatalf("seed cold start history: %v", err)
	}
	if written != 0 {
		t.Fatalf("written = %d, want 0 when the country already has scores", written)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSeedColdStartHistory_WritesHistoryForUnscoredCountry(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := storage.New(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name, region FROM countries")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "region"}).
			AddRow(1, "US", "United States", "North America"))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM risk_scores WHERE country_id = $1)")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO risk_scores")).
		WillReturnResult(sqlmock.NewResult(0, 1)).
		Times(seedHistoryDays)

	written, err := SeedColdStartHistory(context.Background(), store)
	if err != nil {
		t.Fatalf("seed cold start history: %v", err)
	}
	if written != seedHistoryDays {
		t.Fatalf("written = %d, want %d", written, seedHistoryDays)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSeedProfileFor_UnknownCountryFallsBackToDefault(t *testing.T) {
	p := seedProfileFor("ZZ")
	if p != (SeedProfile{Code: "ZZ", PoliticalStability: 50, ConflictRisk: 50, EconomicRisk: 50, InstitutionalQuality: 50}) {
		t.Fatalf("unexpected fallback profile: %+v", p)
	}
}
