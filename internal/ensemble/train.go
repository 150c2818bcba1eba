package ensemble

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"geopulse/internal/storage"
)

// MinTrainingSamples is the floor below which Trainer.Train refuses to fit,
// grounded on the original's min_training_samples=200 default.
const MinTrainingSamples = 200

// Trainer fits all four components on the stored (FeatureVector, RiskScore)
// pairs and persists the result as one new model_version.
type Trainer struct {
	store *storage.Store
}

func NewTrainer(store *storage.Store) *Trainer {
	return &Trainer{store: store}
}

// ComponentReport is one component's cross-validation outcome. CVMAE/CVMSE
// are the blended ensemble's figures (what gets persisted alongside the
// model artifact); ForestMAE/ForestMSE and BoostMAE/BoostMSE break the same
// folds down per regressor, spec.md §4.5 "per-component cross-validation
// MAE and MSE for each regressor".
type ComponentReport struct {
	Component string
	CVMAE     float64
	CVMSE     float64
	ForestMAE float64
	ForestMSE float64
	BoostMAE  float64
	BoostMSE  float64
}

// TrainResult summarizes one full training run.
type TrainResult struct {
	ModelVersion string
	Samples      int
	Reports      []ComponentReport
}

// Train loads every labeled (FeatureVector, RiskScore) pair, cross-validates
// each component with a time-based 5-fold split, refits each component on
// the full dataset, and persists the result under a fresh model_version.
func (t *Trainer) Train(ctx context.Context) (TrainResult, error) {
	rows, err := t.store.AllFeatureVectorsWithLabel(ctx)
	if err != nil {
		return TrainResult{}, fmt.Errorf("ensemble: load training rows: %w", err)
	}
	if len(rows) < MinTrainingSamples {
		return TrainResult{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientTrainingData, len(rows), MinTrainingSamples)
	}

	version := uuid.New().String()
	result := TrainResult{ModelVersion: version, Samples: len(rows)}

	for _, name := range Components {
		X, y := datasetFor(name, rows)

		report := crossValidate(name, X, y)
		result.Reports = append(result.Reports, report)

		component := trainComponent(name, X, y)
		blob, err := component.encode()
		if err != nil {
			return TrainResult{}, err
		}

		if err := t.store.UpsertModelArtifact(ctx, storage.ModelArtifact{
			ModelVersion:     version,
			Component:        name,
			FeatureMapping:   featureMappings[name],
			ComponentWeights: componentWeightsFloat(),
			Trees:            blob,
			CVMAE:            report.CVMAE,
			CVMSE:            report.CVMSE,
		}); err != nil {
			return TrainResult{}, fmt.Errorf("ensemble: persist component %s: %w", name, err)
		}
	}

	return result, nil
}

func componentWeightsFloat() map[string]float64 {
	return map[string]float64{
		"conflict_risk":         0.30,
		"political_stability":   0.25,
		"economic_risk":         0.25,
		"institutional_quality": 0.20,
	}
}

// datasetFor projects every training row onto component's declared feature
// subset and label; rows are already ordered by feature_date ascending
// (storage.AllFeatureVectorsWithLabel), which the time-based fold split
// below depends on.
func datasetFor(component string, rows []storage.TrainingRow) ([][]float64, []float64) {
	X := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, r := range rows {
		X[i] = vectorize(component, r.Features)
		y[i] = label(component, r)
	}
	return X, y
}

func label(component string, r storage.TrainingRow) float64 {
	switch component {
	case "political_stability":
		return r.PoliticalStability
	case "conflict_risk":
		return r.ConflictRisk
	case "economic_risk":
		return r.EconomicRisk
	case "institutional_quality":
		return r.InstitutionalQuality
	default:
		return 50.0
	}
}

// foldCount is spec.md §4.5's k=5 time-based cross-validation split,
// grounded on libs/walkforward/engine.go's buildWindows shape: chronological,
// non-overlapping validation slices, each preceded by everything before it
// in time (an expanding training window, not a fixed-size one).
const foldCount = 5

// crossValidate runs a time-based k-fold split: fold i trains on rows
// [0, boundary_i) and validates on [boundary_i, boundary_{i+1}), reporting
// mean absolute and squared error across all folds.
func crossValidate(component string, X [][]float64, y []float64) ComponentReport {
	n := len(y)
	foldSize := n / (foldCount + 1)
	if foldSize < 1 {
		return ComponentReport{Component: component}
	}

	var maeSum, mseSum float64
	var forestMAESum, forestMSESum float64
	var boostMAESum, boostMSESum float64
	var folds int
	for f := 1; f <= foldCount; f++ {
		trainEnd := foldSize * f
		valEnd := trainEnd + foldSize
		if valEnd > n {
			valEnd = n
		}
		if trainEnd >= valEnd {
			continue
		}

		trainIdx := rangeIdx(0, trainEnd)
		trainX, trainY := subsetRows(X, trainIdx), subsetVals(y, trainIdx)
		forest := fitForest(trainX, trainY)
		boosted := fitBoostedTrees(trainX, trainY)

		var mae, mse, forestMAE, forestMSE, boostMAE, boostMSE float64
		count := valEnd - trainEnd
		for i := trainEnd; i < valEnd; i++ {
			forestPred := forest.Predict(X[i])
			boostPred := boosted.Predict(X[i])
			blended := clamp((forestPred+boostPred)/2, 0, 100)

			diff := blended - y[i]
			mae += math.Abs(diff)
			mse += diff * diff

			fDiff := forestPred - y[i]
			forestMAE += math.Abs(fDiff)
			forestMSE += fDiff * fDiff

			bDiff := boostPred - y[i]
			boostMAE += math.Abs(bDiff)
			boostMSE += bDiff * bDiff
		}
		maeSum += mae / float64(count)
		mseSum += mse / float64(count)
		forestMAESum += forestMAE / float64(count)
		forestMSESum += forestMSE / float64(count)
		boostMAESum += boostMAE / float64(count)
		boostMSESum += boostMSE / float64(count)
		folds++
	}

	if folds == 0 {
		return ComponentReport{Component: component}
	}
	return ComponentReport{
		Component: component,
		CVMAE:     maeSum / float64(folds),
		CVMSE:     mseSum / float64(folds),
		ForestMAE: forestMAESum / float64(folds),
		ForestMSE: forestMSESum / float64(folds),
		BoostMAE:  boostMAESum / float64(folds),
		BoostMSE:  boostMSESum / float64(folds),
	}
}

func rangeIdx(start, end int) []int {
	idx := make([]int, end-start)
	for i := range idx {
		idx[i] = start + i
	}
	return idx
}

func subsetRows(X [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, j := range idx {
		out[i] = X[j]
	}
	return out
}

func subsetVals(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
