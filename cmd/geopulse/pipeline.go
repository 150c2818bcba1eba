package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"geopulse/internal/coordinator"
	"geopulse/internal/database"
	"geopulse/internal/domain"
	"geopulse/internal/ensemble"
	"geopulse/internal/events"
	"geopulse/internal/features"
	"geopulse/internal/httpclient"
	"geopulse/internal/indicators"
	"geopulse/internal/nlp"
	"geopulse/internal/observability"
	"geopulse/internal/register"
	"geopulse/internal/storage"
)

// alertThreshold is the minimum magnitude of overall-score change between
// two consecutive RiskScore rows for the risk-scoring task to materialize a
// RiskAlert (spec.md §3 "RiskAlert" — "significant overall-score change").
// The spec declares the concept but not a numeric threshold; 10.0 points
// is this rewrite's choice, recorded in DESIGN.md.
const alertThreshold = 10.0

// pipeline wires every stage's dependencies and exposes one TaskFunc per
// coordinator.TaskNames entry.
type pipeline struct {
	db              *database.DB
	store           *storage.Store
	reg             register.Register
	metricsRegistry *observability.Registry
	metrics         *observability.PipelineMetrics
	eventsIng       *events.Ingestor
	indicIng        *indicators.Ingestor
	nlpProc         *nlp.Processor
	featBuilder     *features.Builder
	scorer          *ensemble.Scorer
	trainer         *ensemble.Trainer
}

// buildPipeline connects to storage and the shared register, and
// constructs every stage. The caller must call close() on the returned
// pipeline.
func buildPipeline(ctx context.Context, cfg config) (*pipeline, error) {
	dbConfig := database.DefaultConfig()
	dbConfig.DSN = cfg.databaseURL
	db, err := database.ConnectWithMigrations(ctx, dbConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	var reg register.Register
	if cfg.redisURL != "" {
		reg, err = register.NewRedisRegister(cfg.redisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect redis register: %w", err)
		}
	} else {
		reg = register.NewMemoryRegister()
	}

	store := storage.New(db.DB)
	metricsRegistry := observability.NewRegistry()
	metrics := observability.NewPipelineMetrics(metricsRegistry)

	httpClient := httpclient.New(httpclient.DefaultTimeout)
	eventsClient := events.NewClient(cfg.newsEventsBaseURL, cfg.newsEventsAPIKey, httpClient)
	indicatorsClient := indicators.NewClient(cfg.indicatorsBaseURL, cfg.indicatorsAPIKey, httpClient)

	return &pipeline{
		db:              db,
		store:           store,
		reg:             reg,
		metricsRegistry: metricsRegistry,
		metrics:         metrics,
		eventsIng:       events.NewIngestor(eventsClient, reg, store, metrics),
		indicIng:        indicators.NewIngestor(indicatorsClient, reg, store, metrics),
		nlpProc:         nlp.NewProcessor(store, metrics),
		featBuilder:     features.NewBuilder(store),
		scorer:          ensemble.NewScorer(store),
		trainer:         ensemble.NewTrainer(store),
	}, nil
}

func (p *pipeline) close() error {
	regErr := p.reg.Close()
	dbErr := p.db.Close()
	if regErr != nil {
		return regErr
	}
	return dbErr
}

// metricsHandler serves the pipeline's Prometheus registry in text format,
// spec.md §3.1 "/metrics by a small HTTP listener in the long-lived
// scheduler process".
func (p *pipeline) metricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		p.metricsRegistry.WriteText(w)
	})
}

// bootstrap upserts the fixed country roster (domain.Roster). Countries are
// read-only after bootstrap (spec.md §3); re-running is an idempotent
// no-op thanks to UpsertCountry's ON CONFLICT clause.
func (p *pipeline) bootstrap(ctx context.Context) error {
	for _, c := range domain.Roster {
		if _, err := p.store.UpsertCountry(ctx, c); err != nil {
			return fmt.Errorf("bootstrap country %s: %w", c.Code, err)
		}
	}
	return nil
}

// newCoordinator builds a Coordinator with every task bound to this
// pipeline's stages, per spec.md §4.6's six named tasks.
func (p *pipeline) newCoordinator() *coordinator.Coordinator {
	c := coordinator.New(p.reg, p.metrics)
	c.Register(coordinator.TaskEventIngest, p.runEventIngest)
	c.Register(coordinator.TaskIndicatorIngest, p.runIndicatorIngest)
	c.Register(coordinator.TaskEventProcessing, p.runEventProcessing)
	c.Register(coordinator.TaskFeatureEngineering, p.runFeatureEngineering)
	c.Register(coordinator.TaskRiskScoring, p.runRiskScoring)
	c.Register(coordinator.TaskModelRetraining, p.runModelRetraining)
	return c
}

func (p *pipeline) runEventIngest(ctx context.Context) error {
	countries, err := p.store.ListCountries(ctx)
	if err != nil {
		return err
	}
	result, err := p.eventsIng.Run(ctx, countries, events.DefaultLookbackDays, events.DefaultMaxRecords)
	if err != nil {
		return err
	}
	if result.AllFailed() {
		return fmt.Errorf("event-ingest: all %d countries failed", result.CountriesAttempted)
	}
	observability.LogEvent(ctx, "info", "event_ingest_complete", map[string]any{
		"attempted": result.CountriesAttempted, "failed": result.CountriesFailed, "inserted": result.EventsInserted,
	})
	return nil
}

func (p *pipeline) runIndicatorIngest(ctx context.Context) error {
	countries, err := p.store.ListCountries(ctx)
	if err != nil {
		return err
	}
	result, err := p.indicIng.Run(ctx, countries)
	if err != nil {
		return err
	}
	if result.AllFailed() {
		return fmt.Errorf("indicator-ingest: all %d countries failed", result.CountriesAttempted)
	}
	observability.LogEvent(ctx, "info", "indicator_ingest_complete", map[string]any{
		"attempted": result.CountriesAttempted, "failed": result.CountriesFailed, "stored": result.ObservationsStored,
	})
	return nil
}

func (p *pipeline) runEventProcessing(ctx context.Context) error {
	result, err := p.nlpProc.Run(ctx)
	if err != nil {
		return err
	}
	observability.LogEvent(ctx, "info", "event_processing_complete", map[string]any{
		"processed": result.Processed,
	})
	return nil
}

// runFeatureEngineering builds today's FeatureVector for every country.
// Per-country failures are logged and skipped (feature vectors are
// independently rebuildable per country, spec.md §3 "Ownership"); the stage
// only fails outright if every country failed.
func (p *pipeline) runFeatureEngineering(ctx context.Context) error {
	countries, err := p.store.ListCountries(ctx)
	if err != nil {
		return err
	}
	targetDate := time.Now().UTC().Truncate(24 * time.Hour)

	attempted, failed := 0, 0
	for _, country := range countries {
		attempted++
		countryCtx := observability.WithCountry(ctx, country.Code)
		fv, err := p.featBuilder.BuildFeatureVector(countryCtx, country, targetDate)
		if err != nil {
			observability.LogEvent(countryCtx, "error", "feature_build_failed", map[string]any{"error": err})
			failed++
			continue
		}
		if err := p.store.UpsertFeatureVector(countryCtx, fv); err != nil {
			observability.LogEvent(countryCtx, "error", "feature_store_failed", map[string]any{"error": err})
			failed++
			continue
		}
		if p.metrics != nil {
			p.metrics.FeatureVectorsBuilt.Inc(country.Code)
		}
	}
	if attempted > 0 && failed == attempted {
		return fmt.Errorf("feature-engineering: all %d countries failed", attempted)
	}
	return nil
}

// runRiskScoring scores every country's latest feature vector and
// materializes a RiskAlert when the change from the previous score is at
// least alertThreshold in magnitude. A globally absent model is spec.md §7's "model absent"
// case: logged, task exits successfully, nothing written.
func (p *pipeline) runRiskScoring(ctx context.Context) error {
	countries, err := p.store.ListCountries(ctx)
	if err != nil {
		return err
	}
	targetDate := time.Now().UTC().Truncate(24 * time.Hour)

	attempted, failed := 0, 0
	for _, country := range countries {
		attempted++
		countryCtx := observability.WithCountry(ctx, country.Code)

		fv, err := p.store.FeatureVector(countryCtx, country.ID, targetDate)
		if err != nil {
			observability.LogEvent(countryCtx, "warn", "feature_vector_missing", map[string]any{"error": err})
			failed++
			continue
		}

		previous, prevErr := p.store.LatestRiskScore(countryCtx, country.ID, targetDate.AddDate(0, 0, -1))

		score, err := p.scorer.Score(countryCtx, fv)
		if errors.Is(err, ensemble.ErrModelAbsent) {
			observability.LogEvent(ctx, "warn", "model_absent", nil)
			return nil
		}
		if err != nil {
			observability.LogEvent(countryCtx, "error", "scoring_failed", map[string]any{"error": err})
			failed++
			continue
		}
		if err := p.store.UpsertRiskScore(countryCtx, score); err != nil {
			observability.LogEvent(countryCtx, "error", "score_store_failed", map[string]any{"error": err})
			failed++
			continue
		}
		if p.metrics != nil {
			p.metrics.RiskScoresWritten.Inc(country.Code)
		}

		if prevErr == nil {
			p.maybeAlert(countryCtx, country.ID, previous, score)
		}
	}
	if attempted > 0 && failed == attempted {
		return fmt.Errorf("risk-scoring: all %d countries failed", attempted)
	}
	return nil
}

func (p *pipeline) maybeAlert(ctx context.Context, countryID int, previous, current domain.RiskScore) {
	change := current.OverallScore - previous.OverallScore
	magnitude := change
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude < alertThreshold {
		return
	}
	direction := domain.DirectionIncrease
	if change < 0 {
		direction = domain.DirectionDecrease
	}
	alert := domain.RiskAlert{
		CountryID:     countryID,
		PreviousDate:  previous.ScoreDate,
		CurrentDate:   current.ScoreDate,
		PreviousScore: previous.OverallScore,
		CurrentScore:  current.OverallScore,
		Change:        change,
		Magnitude:     magnitude,
		Direction:     direction,
		AlertKind:     "overall_score_change",
	}
	if err := p.store.UpsertRiskAlert(ctx, alert); err != nil {
		observability.LogEvent(ctx, "error", "alert_store_failed", map[string]any{"error": err})
	}
}

// runModelRetraining trains a fresh model version from every labeled
// (FeatureVector, RiskScore) pair. The very first run has zero RiskScore
// rows to label with, so a first ErrInsufficientTrainingData triggers the
// cold-start seed (spec.md §4.9): synthetic history is written for every
// country that has none yet, and training is retried once against it. A
// second insufficiency (not enough roster countries, or seeding already
// ran) is the ordinary "log and exit cleanly, retry next tick" case.
func (p *pipeline) runModelRetraining(ctx context.Context) error {
	result, err := p.trainer.Train(ctx)
	if errors.Is(err, ensemble.ErrInsufficientTrainingData) {
		seeded, seedErr := coordinator.SeedColdStartHistory(ctx, p.store)
		if seedErr != nil {
			return fmt.Errorf("model-retraining: cold-start seed: %w", seedErr)
		}
		if seeded == 0 {
			observability.LogEvent(ctx, "warn", "training_data_insufficient", map[string]any{"error": err})
			return nil
		}
		observability.LogEvent(ctx, "info", "cold_start_seeded", map[string]any{"rows": seeded})

		result, err = p.trainer.Train(ctx)
		if errors.Is(err, ensemble.ErrInsufficientTrainingData) {
			observability.LogEvent(ctx, "warn", "training_data_insufficient", map[string]any{"error": err})
			return nil
		}
	}
	if err != nil {
		return err
	}
	observability.LogEvent(ctx, "info", "model_retrained", map[string]any{
		"model_version": result.ModelVersion, "samples": result.Samples,
	})
	for _, r := range result.Reports {
		observability.LogEvent(ctx, "info", "component_cross_validated", map[string]any{
			"model_version": result.ModelVersion, "component": r.Component,
			"cv_mae": r.CVMAE, "cv_mse": r.CVMSE,
			"forest_mae": r.ForestMAE, "forest_mse": r.ForestMSE,
			"boost_mae": r.BoostMAE, "boost_mse": r.BoostMSE,
		})
	}
	return nil
}
