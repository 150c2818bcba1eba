package ensemble

import "errors"

// ErrModelAbsent is returned by Scorer.Score when no model version has ever
// been trained — spec.md §7's "model-absent" error kind, which the
// risk-scoring task treats as "log and exit cleanly" rather than a failure.
var ErrModelAbsent = errors.New("ensemble: no trained model available")

// ErrInsufficientTrainingData is returned by Trainer.Train when fewer rows
// are available than MinTrainingSamples.
var ErrInsufficientTrainingData = errors.New("ensemble: insufficient training data")
