package ensemble

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"geopulse/internal/domain"
	"geopulse/internal/storage"
)

// Scorer produces a RiskScore from a FeatureVector using the most recently
// trained model version.
type Scorer struct {
	store *storage.Store
}

func NewScorer(store *storage.Store) *Scorer {
	return &Scorer{store: store}
}

// loadLatest resolves the most recent model_version and decodes every
// component's artifact, returning ErrModelAbsent if none has been trained.
func (s *Scorer) loadLatest(ctx context.Context) (string, map[string]*Component, error) {
	version, err := s.store.LatestModelVersion(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, ErrModelAbsent
		}
		return "", nil, fmt.Errorf("ensemble: latest model version: %w", err)
	}

	artifacts, err := s.store.ModelArtifactsForVersion(ctx, version)
	if err != nil {
		return "", nil, fmt.Errorf("ensemble: load artifacts for %s: %w", version, err)
	}
	if len(artifacts) == 0 {
		return "", nil, ErrModelAbsent
	}

	components := make(map[string]*Component, len(artifacts))
	for _, a := range artifacts {
		c, err := decodeComponent(a.Component, a.Trees)
		if err != nil {
			return "", nil, err
		}
		components[a.Component] = c
	}
	return version, components, nil
}

// Score runs every component's inference on fv and composes the overall
// score and confidence interval per spec.md §4.5 "Overall score
// composition".
func (s *Scorer) Score(ctx context.Context, fv domain.FeatureVector) (domain.RiskScore, error) {
	version, components, err := s.loadLatest(ctx)
	if err != nil {
		return domain.RiskScore{}, err
	}

	// A model version missing one component's artifact is spec.md §7's
	// "scoring failure for one component": that component falls back to a
	// neutral 50.0 with CI [40,60] and composition proceeds rather than
	// aborting the whole score.
	preds := make(map[string]Prediction, len(Components))
	for _, name := range Components {
		c, ok := components[name]
		if !ok {
			preds[name] = Prediction{Value: 50.0, Lower: 40.0, Upper: 60.0}
			continue
		}
		preds[name] = c.Predict(fv.Features)
	}

	var overall, lower, upper float64
	for name, weight := range domain.ComponentWeights {
		p := preds[name]
		overall += weight * p.Value
		lower += weight * p.Lower
		upper += weight * p.Upper
	}

	return domain.RiskScore{
		CountryID:            fv.CountryID,
		ScoreDate:            fv.FeatureDate,
		OverallScore:         round2(overall),
		PoliticalStability:   round2(preds["political_stability"].Value),
		ConflictRisk:         round2(preds["conflict_risk"].Value),
		EconomicRisk:         round2(preds["economic_risk"].Value),
		InstitutionalQuality: round2(preds["institutional_quality"].Value),
		ConfidenceLower:      round2(lower),
		ConfidenceUpper:      round2(upper),
		ModelVersion:         version,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
