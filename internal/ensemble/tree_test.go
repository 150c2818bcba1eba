package ensemble

import (
	"math"
	"testing"
)

func TestFitTreeFitsLinearSignal(t *testing.T) {
	X := make([][]float64, 50)
	y := make([]float64, 50)
	for i := 0; i < 50; i++ {
		X[i] = []float64{float64(i)}
		y[i] = float64(i) * 2
	}
	idx := rangeIdx(0, 50)
	tree := fitTree(X, y, idx, TreeConfig{MaxDepth: 10, MinSplit: 2})

	pred := tree.Predict([]float64{25})
	if math.Abs(pred-50) > 5 {
		t.Fatalf("tree predicted %v, want close to 50", pred)
	}
}

func TestFitTreeConstantTargetIsStable(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{10, 10, 10, 10}
	tree := fitTree(X, y, rangeIdx(0, 4), TreeConfig{MaxDepth: 3, MinSplit: 2})
	if got := tree.Predict([]float64{2.5}); got != 10 {
		t.Fatalf("predict = %v, want 10", got)
	}
}

func TestForestAndBoostedTreesConverge(t *testing.T) {
	X := make([][]float64, 60)
	y := make([]float64, 60)
	for i := 0; i < 60; i++ {
		X[i] = []float64{float64(i % 10), float64(i)}
		y[i] = 50 + float64(i%10)*2
	}

	forest := fitForest(X, y)
	boosted := fitBoostedTrees(X, y)

	x := []float64{5, 5}
	forestPred := forest.Predict(x)
	boostedPred := boosted.Predict(x)

	if forestPred < 40 || forestPred > 80 {
		t.Fatalf("forest prediction %v out of plausible range", forestPred)
	}
	if boostedPred < 40 || boostedPred > 80 {
		t.Fatalf("boosted prediction %v out of plausible range", boostedPred)
	}
}

func TestSampleStdDevSingleValueIsZero(t *testing.T) {
	if got := sampleStdDev([]float64{5}); got != 0 {
		t.Fatalf("sampleStdDev of single value = %v, want 0", got)
	}
}
