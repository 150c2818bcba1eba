package ensemble

// BoostConfig is spec.md §4.5's boosted-tree configuration: 100 rounds,
// learning rate 0.1, max depth 6, fixed seed (boosting trees are fit
// greedily on residuals and need no bootstrap, so only tree shape matters).
var BoostConfig = struct {
	NumRounds    int
	LearningRate float64
	TreeConfig
}{
	NumRounds:    100,
	LearningRate: 0.1,
	TreeConfig:   TreeConfig{MaxDepth: 6, MinSplit: 5},
}

// BoostedTrees is a gradient-boosted additive sequence: each tree fits the
// residual left by every prior tree, scaled by LearningRate.
type BoostedTrees struct {
	Init  float64
	Trees []*Tree
	Rate  float64
}

// fitBoostedTrees trains BoostConfig.NumRounds trees sequentially on the
// running residual, starting from the training mean.
func fitBoostedTrees(X [][]float64, y []float64) *BoostedTrees {
	all := make([]int, len(y))
	for i := range all {
		all[i] = i
	}

	init := meanOf(y, all)
	residual := make([]float64, len(y))
	pred := make([]float64, len(y))
	for i := range y {
		pred[i] = init
		residual[i] = y[i] - init
	}

	b := &BoostedTrees{Init: init, Rate: BoostConfig.LearningRate, Trees: make([]*Tree, BoostConfig.NumRounds)}
	for r := 0; r < BoostConfig.NumRounds; r++ {
		tree := fitTree(X, residual, all, BoostConfig.TreeConfig)
		b.Trees[r] = tree
		for i := range y {
			step := b.Rate * tree.Predict(X[i])
			pred[i] += step
			residual[i] = y[i] - pred[i]
		}
	}
	return b
}

// Predict sums the initial mean plus every tree's scaled contribution.
func (b *BoostedTrees) Predict(x []float64) float64 {
	pred := b.Init
	for _, t := range b.Trees {
		pred += b.Rate * t.Predict(x)
	}
	return pred
}
