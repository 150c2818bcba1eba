package ensemble

import "math/rand/v2"

// ForestConfig is spec.md §4.5's additive-ensemble configuration: 100 trees,
// max depth 10, min split 5, fixed seed.
var ForestConfig = struct {
	NumTrees int
	TreeConfig
	Seed uint64
}{
	NumTrees:   100,
	TreeConfig: TreeConfig{MaxDepth: 10, MinSplit: 5},
	Seed:       42,
}

// Forest is a bagged additive ensemble of regression trees: the mean of
// every tree's prediction is the point estimate; the per-tree predictions
// feed the confidence-interval calculation (spec.md §4.5 "Inference").
type Forest struct {
	Trees []*Tree
}

// fitForest trains ForestConfig.NumTrees trees, each on an independent
// bootstrap resample of the full training set, deterministically seeded.
func fitForest(X [][]float64, y []float64) *Forest {
	all := make([]int, len(y))
	for i := range all {
		all[i] = i
	}

	rng := rand.New(rand.NewPCG(ForestConfig.Seed, ForestConfig.Seed))
	f := &Forest{Trees: make([]*Tree, ForestConfig.NumTrees)}
	for t := 0; t < ForestConfig.NumTrees; t++ {
		sample := bootstrapSample(all, rng)
		f.Trees[t] = fitTree(X, y, sample, ForestConfig.TreeConfig)
	}
	return f
}

// PredictAll returns every tree's individual prediction for x, used for the
// ensemble's confidence-interval spread.
func (f *Forest) PredictAll(x []float64) []float64 {
	preds := make([]float64, len(f.Trees))
	for i, t := range f.Trees {
		preds[i] = t.Predict(x)
	}
	return preds
}

// Predict returns the forest's mean prediction for x.
func (f *Forest) Predict(x []float64) float64 {
	preds := f.PredictAll(x)
	var sum float64
	for _, p := range preds {
		sum += p
	}
	return sum / float64(len(preds))
}
