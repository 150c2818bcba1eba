// Package storage implements the seven persistence contracts of spec.md
// §4.7: idempotent upsert keyed by each table's natural key, time-range
// selects by country, and the joins the feature builder and scorer need.
// Upsert shape is grounded on
// services/jax-market/internal/ingester/ingester.go's
// `INSERT ... ON CONFLICT DO UPDATE` pattern.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"geopulse/internal/domain"
)

// Store wraps a *sql.DB with the pipeline's persistence operations.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// UpsertCountry inserts or updates a country keyed by its alpha code, used
// once at bootstrap to load the fixed roster (see internal/domain's embedded
// roster, loaded by cmd/geopulse).
func (s *Store) UpsertCountry(ctx context.Context, c domain.Country) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO countries (code, name, region)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, region = EXCLUDED.region
		RETURNING id`,
		c.Code, c.Name, c.Region,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("storage: upsert country %s: %w", c.Code, err)
	}
	return id, nil
}

// ListCountries returns every known country.
func (s *Store) ListCountries(ctx context.Context) ([]domain.Country, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, region FROM countries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: list countries: %w", err)
	}
	defer rows.Close()

	var out []domain.Country
	for rows.Next() {
		var c domain.Country
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Region); err != nil {
			return nil, fmt.Errorf("storage: scan country: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountryByCode resolves an alpha code to its surrogate id.
func (s *Store) CountryByCode(ctx context.Context, code string) (domain.Country, error) {
	var c domain.Country
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, region FROM countries WHERE code = $1`, code,
	).Scan(&c.ID, &c.Code, &c.Name, &c.Region)
	if err != nil {
		return domain.Country{}, fmt.Errorf("storage: country by code %s: %w", code, err)
	}
	return c, nil
}

// InsertRawEvent is idempotent on (country_id, source_url); a duplicate URL
// is a no-op and reports inserted=false, matching spec.md §7's
// storage-constraint-as-idempotent-success rule.
func (s *Store) InsertRawEvent(ctx context.Context, e domain.RawEvent) (inserted bool, err error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO raw_events (country_id, event_date, title, source_url, domain, language)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (country_id, source_url) DO NOTHING`,
		e.CountryID, e.EventDate, e.Title, e.SourceURL, e.Domain, e.Language,
	)
	if err != nil {
		return false, fmt.Errorf("storage: insert raw event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: raw event rows affected: %w", err)
	}
	return n > 0, nil
}

// UnprocessedRawEvents streams up to limit RawEvents with no ProcessedEvent
// row yet, oldest first, for the Event Processor's chunked batch runner.
func (s *Store) UnprocessedRawEvents(ctx context.Context, limit int) ([]domain.RawEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT re.id, re.country_id, re.event_date, re.title, re.source_url, re.domain, re.language, re.created_at
		FROM raw_events re
		LEFT JOIN processed_events pe ON pe.raw_event_id = re.id
		WHERE pe.raw_event_id IS NULL
		ORDER BY re.id
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage: unprocessed events: %w", err)
	}
	defer rows.Close()

	var out []domain.RawEvent
	for rows.Next() {
		var e domain.RawEvent
		if err := rows.Scan(&e.ID, &e.CountryID, &e.EventDate, &e.Title, &e.SourceURL, &e.Domain, &e.Language, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan raw event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpsertProcessedEvent writes the NLP output for one RawEvent. It rewrites
// an existing row only when nlp_version differs, matching spec.md §3's
// "rewritten only on an NLP-version bump" lifecycle.
func (s *Store) UpsertProcessedEvent(ctx context.Context, p domain.ProcessedEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO processed_events (raw_event_id, risk_category, sentiment_score, severity_score, confidence, nlp_version)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (raw_event_id) DO UPDATE SET
			risk_category = EXCLUDED.risk_category,
			sentiment_score = EXCLUDED.sentiment_score,
			severity_score = EXCLUDED.severity_score,
			confidence = EXCLUDED.confidence,
			nlp_version = EXCLUDED.nlp_version,
			processed_at = now()
		WHERE processed_events.nlp_version <> EXCLUDED.nlp_version`,
		p.RawEventID, string(p.RiskCategory), p.SentimentScore, p.SeverityScore, p.Confidence, p.NLPVersion,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert processed event %d: %w", p.RawEventID, err)
	}
	return nil
}

// ProcessedEventsInWindow returns processed events for countryID whose
// RawEvent.event_date falls in [start, end] inclusive, for the feature
// builder's time-windowed aggregates (spec.md §4.4a).
func (s *Store) ProcessedEventsInWindow(ctx context.Context, countryID int, start, end time.Time) ([]EventWithDate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT re.event_date, pe.risk_category, pe.sentiment_score, pe.severity_score
		FROM processed_events pe
		JOIN raw_events re ON re.id = pe.raw_event_id
		WHERE re.country_id = $1 AND re.event_date BETWEEN $2 AND $3
		ORDER BY re.event_date`, countryID, start, end)
	if err != nil {
		return nil, fmt.Errorf("storage: events in window: %w", err)
	}
	defer rows.Close()

	var out []EventWithDate
	for rows.Next() {
		var ev EventWithDate
		var category string
		if err := rows.Scan(&ev.EventDate, &category, &ev.SentimentScore, &ev.SeverityScore); err != nil {
			return nil, fmt.Errorf("storage: scan event in window: %w", err)
		}
		ev.RiskCategory = domain.RiskCategory(category)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// EventWithDate is the projection ProcessedEventsInWindow returns: just the
// fields the feature builder's window aggregates need.
type EventWithDate struct {
	EventDate      time.Time
	RiskCategory   domain.RiskCategory
	SentimentScore float64
	SeverityScore  float64
}

// UpsertEconomicIndicator overwrites value on (country, indicator_code,
// year) conflict, per spec.md §4.2.
func (s *Store) UpsertEconomicIndicator(ctx context.Context, ind domain.EconomicIndicator) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO economic_indicators (country_id, indicator_code, year, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (country_id, indicator_code, year) DO UPDATE SET
			value = EXCLUDED.value, updated_at = now()`,
		ind.CountryID, string(ind.IndicatorCode), ind.Year, ind.Value,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert indicator %s/%d: %w", ind.IndicatorCode, ind.Year, err)
	}
	return nil
}

// IndicatorHistory returns every stored year for one (country, code) pair,
// most recent year first.
func (s *Store) IndicatorHistory(ctx context.Context, countryID int, code domain.IndicatorCode) ([]domain.EconomicIndicator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT country_id, indicator_code, year, value, updated_at
		FROM economic_indicators
		WHERE country_id = $1 AND indicator_code = $2
		ORDER BY year DESC`, countryID, string(code))
	if err != nil {
		return nil, fmt.Errorf("storage: indicator history: %w", err)
	}
	defer rows.Close()

	var out []domain.EconomicIndicator
	for rows.Next() {
		var ind domain.EconomicIndicator
		var codeStr string
		if err := rows.Scan(&ind.CountryID, &codeStr, &ind.Year, &ind.Value, &ind.UpdatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan indicator: %w", err)
		}
		ind.IndicatorCode = domain.IndicatorCode(codeStr)
		out = append(out, ind)
	}
	return out, rows.Err()
}

// UpsertFeatureVector rewrites the full feature map for (country, date),
// matching the feature builder's "rewritten on re-run" lifecycle.
func (s *Store) UpsertFeatureVector(ctx context.Context, fv domain.FeatureVector) error {
	raw, err := json.Marshal(fv.Features)
	if err != nil {
		return fmt.Errorf("storage: marshal feature vector: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO feature_vectors (country_id, feature_date, features)
		VALUES ($1, $2, $3)
		ON CONFLICT (country_id, feature_date) DO UPDATE SET
			features = EXCLUDED.features, generated_at = now()`,
		fv.CountryID, fv.FeatureDate, raw,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert feature vector: %w", err)
	}
	return nil
}

// FeatureVector reads back the feature map for (country, date).
func (s *Store) FeatureVector(ctx context.Context, countryID int, date time.Time) (domain.FeatureVector, error) {
	var fv domain.FeatureVector
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT country_id, feature_date, features, generated_at
		FROM feature_vectors WHERE country_id = $1 AND feature_date = $2`,
		countryID, date,
	).Scan(&fv.CountryID, &fv.FeatureDate, &raw, &fv.GeneratedAt)
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("storage: feature vector: %w", err)
	}
	if err := json.Unmarshal(raw, &fv.Features); err != nil {
		return domain.FeatureVector{}, fmt.Errorf("storage: unmarshal feature vector: %w", err)
	}
	return fv, nil
}

// UpsertRiskScore rewrites the score row for (country, date), per spec.md
// §3's "rewriting is allowed and expected" lifecycle.
func (s *Store) UpsertRiskScore(ctx context.Context, r domain.RiskScore) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_scores (country_id, score_date, overall_score, political_stability,
			conflict_risk, economic_risk, institutional_quality, confidence_lower, confidence_upper, model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (country_id, score_date) DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			political_stability = EXCLUDED.political_stability,
			conflict_risk = EXCLUDED.conflict_risk,
			economic_risk = EXCLUDED.economic_risk,
			institutional_quality = EXCLUDED.institutional_quality,
			confidence_lower = EXCLUDED.confidence_lower,
			confidence_upper = EXCLUDED.confidence_upper,
			model_version = EXCLUDED.model_version,
			created_at = now()`,
		r.CountryID, r.ScoreDate, r.OverallScore, r.PoliticalStability, r.ConflictRisk,
		r.EconomicRisk, r.InstitutionalQuality, r.ConfidenceLower, r.ConfidenceUpper, r.ModelVersion,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert risk score: %w", err)
	}
	return nil
}

// HasRiskScores reports whether at least one risk_scores row exists for
// countryID, used by the model-retraining task to decide whether a
// country still needs its cold-start seed history synthesized
// (spec.md §4.9).
func (s *Store) HasRiskScores(ctx context.Context, countryID int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM risk_scores WHERE country_id = $1)`, countryID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("storage: has risk scores: %w", err)
	}
	return exists, nil
}

// LatestRiskScore returns the most recent score row on or before asOf.
func (s *Store) LatestRiskScore(ctx context.Context, countryID int, asOf time.Time) (domain.RiskScore, error) {
	var r domain.RiskScore
	err := s.db.QueryRowContext(ctx, `
		SELECT country_id, score_date, overall_score, political_stability, conflict_risk,
			economic_risk, institutional_quality, confidence_lower, confidence_upper, model_version, created_at
		FROM risk_scores
		WHERE country_id = $1 AND score_date <= $2
		ORDER BY score_date DESC LIMIT 1`, countryID, asOf,
	).Scan(&r.CountryID, &r.ScoreDate, &r.OverallScore, &r.PoliticalStability, &r.ConflictRisk,
		&r.EconomicRisk, &r.InstitutionalQuality, &r.ConfidenceLower, &r.ConfidenceUpper, &r.ModelVersion, &r.CreatedAt)
	if err != nil {
		return domain.RiskScore{}, fmt.Errorf("storage: latest risk score: %w", err)
	}
	return r, nil
}

// RiskScoresByRegion returns, for every country in region other than
// excludeCountryID, the latest overall score whose score_date is within the
// window [asOf-within, asOf]. Used by the feature builder's
// regional_instability feature (spec.md §4.4c).
func (s *Store) RiskScoresByRegion(ctx context.Context, region string, excludeCountryID int, asOf time.Time, within time.Duration) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT ON (rs.country_id) rs.overall_score
		FROM risk_scores rs
		JOIN countries c ON c.id = rs.country_id
		WHERE c.region = $1 AND c.id <> $2 AND rs.score_date BETWEEN $3 AND $4
		ORDER BY rs.country_id, rs.score_date DESC`,
		region, excludeCountryID, asOf.Add(-within), asOf)
	if err != nil {
		return nil, fmt.Errorf("storage: risk scores by region: %w", err)
	}
	defer rows.Close()

	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("storage: scan region score: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AllFeatureVectorsWithLabel returns, for every (country, date) that has
// both a FeatureVector and a RiskScore, the feature map and the label row —
// the training set for internal/ensemble's self-regressive regime
// (spec.md §4.5 "Training").
func (s *Store) AllFeatureVectorsWithLabel(ctx context.Context) ([]TrainingRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fv.country_id, fv.feature_date, fv.features,
			rs.political_stability, rs.conflict_risk, rs.economic_risk, rs.institutional_quality
		FROM feature_vectors fv
		JOIN risk_scores rs ON rs.country_id = fv.country_id AND rs.score_date = fv.feature_date
		ORDER BY fv.feature_date`)
	if err != nil {
		return nil, fmt.Errorf("storage: training rows: %w", err)
	}
	defer rows.Close()

	var out []TrainingRow
	for rows.Next() {
		var t TrainingRow
		var raw []byte
		if err := rows.Scan(&t.CountryID, &t.FeatureDate, &raw,
			&t.PoliticalStability, &t.ConflictRisk, &t.EconomicRisk, &t.InstitutionalQuality); err != nil {
			return nil, fmt.Errorf("storage: scan training row: %w", err)
		}
		if err := json.Unmarshal(raw, &t.Features); err != nil {
			return nil, fmt.Errorf("storage: unmarshal training features: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TrainingRow is one labeled training example for the ensemble scorer.
type TrainingRow struct {
	CountryID            int
	FeatureDate          time.Time
	Features             map[string]float64
	PoliticalStability   float64
	ConflictRisk         float64
	EconomicRisk         float64
	InstitutionalQuality float64
}

// UpsertModelArtifact persists one trained regressor component keyed by
// (model_version, component), per spec.md §4.5 "Persistence".
func (s *Store) UpsertModelArtifact(ctx context.Context, a ModelArtifact) error {
	featureMapping, err := json.Marshal(a.FeatureMapping)
	if err != nil {
		return fmt.Errorf("storage: marshal feature mapping: %w", err)
	}
	weights, err := json.Marshal(a.ComponentWeights)
	if err != nil {
		return fmt.Errorf("storage: marshal component weights: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO model_artifacts (model_version, component, feature_mapping, component_weights, trees, cv_mae, cv_mse)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (model_version, component) DO UPDATE SET
			feature_mapping = EXCLUDED.feature_mapping,
			component_weights = EXCLUDED.component_weights,
			trees = EXCLUDED.trees,
			cv_mae = EXCLUDED.cv_mae,
			cv_mse = EXCLUDED.cv_mse`,
		a.ModelVersion, a.Component, featureMapping, weights, a.Trees, a.CVMAE, a.CVMSE,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert model artifact %s/%s: %w", a.ModelVersion, a.Component, err)
	}
	return nil
}

// LatestModelVersion returns the most recently created model_version string,
// or sql.ErrNoRows if no artifact has been trained yet (spec.md §7
// "model-absent" error kind).
func (s *Store) LatestModelVersion(ctx context.Context) (string, error) {
	var version string
	err := s.db.QueryRowContext(ctx,
		`SELECT model_version FROM model_artifacts ORDER BY created_at DESC LIMIT 1`,
	).Scan(&version)
	if err != nil {
		return "", err
	}
	return version, nil
}

// ModelArtifactsForVersion returns every component's artifact for a version.
func (s *Store) ModelArtifactsForVersion(ctx context.Context, version string) ([]ModelArtifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model_version, component, feature_mapping, component_weights, trees, cv_mae, cv_mse
		FROM model_artifacts WHERE model_version = $1`, version)
	if err != nil {
		return nil, fmt.Errorf("storage: model artifacts for version: %w", err)
	}
	defer rows.Close()

	var out []ModelArtifact
	for rows.Next() {
		var a ModelArtifact
		var featureMapping, weights []byte
		if err := rows.Scan(&a.ModelVersion, &a.Component, &featureMapping, &weights, &a.Trees, &a.CVMAE, &a.CVMSE); err != nil {
			return nil, fmt.Errorf("storage: scan model artifact: %w", err)
		}
		if err := json.Unmarshal(featureMapping, &a.FeatureMapping); err != nil {
			return nil, fmt.Errorf("storage: unmarshal feature mapping: %w", err)
		}
		if err := json.Unmarshal(weights, &a.ComponentWeights); err != nil {
			return nil, fmt.Errorf("storage: unmarshal component weights: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ModelArtifact is one component regressor's serialized, self-describing
// artifact (spec.md §4.5 "Persistence": "self-describing" blob plus
// feature-mapping and component-weights metadata).
type ModelArtifact struct {
	ModelVersion     string
	Component        string
	FeatureMapping   []string
	ComponentWeights map[string]float64
	Trees            []byte
	CVMAE            float64
	CVMSE            float64
}

// UpsertRiskAlert records a derived significant-change alert, idempotent on
// (country, previous_date, current_date) so a re-run regenerates the same
// row rather than duplicating it (spec.md §3 "RiskAlert").
func (s *Store) UpsertRiskAlert(ctx context.Context, a domain.RiskAlert) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_alerts (country_id, previous_date, current_date, previous_score, current_score,
			change, magnitude, direction, alert_kind)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (country_id, previous_date, current_date) DO UPDATE SET
			previous_score = EXCLUDED.previous_score,
			current_score = EXCLUDED.current_score,
			change = EXCLUDED.change,
			magnitude = EXCLUDED.magnitude,
			direction = EXCLUDED.direction,
			alert_kind = EXCLUDED.alert_kind,
			generated_at = now()`,
		a.CountryID, a.PreviousDate, a.CurrentDate, a.PreviousScore, a.CurrentScore,
		a.Change, a.Magnitude, string(a.Direction), a.AlertKind,
	)
	if err != nil {
		return fmt.Errorf("storage: upsert risk alert: %w", err)
	}
	return nil
}
