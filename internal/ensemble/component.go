package ensemble

import "math"

// Component holds one score component's two trained regressors; its Name
// selects the declared feature subset in featureMappings.
type Component struct {
	Name    string
	Forest  *Forest
	Boosted *BoostedTrees
}

// Prediction is one component's inference output: the blended point
// estimate and its 95% confidence interval (spec.md §4.5 "Inference").
type Prediction struct {
	Value float64
	Lower float64
	Upper float64
}

// trainComponent fits both regressors for one component on its declared
// feature subset.
func trainComponent(name string, X [][]float64, y []float64) *Component {
	return &Component{
		Name:    name,
		Forest:  fitForest(X, y),
		Boosted: fitBoostedTrees(X, y),
	}
}

// Predict computes ensemble_pred = (tree_pred + boost_pred) / 2, clamped to
// [0,100], and a CI from the additive ensemble's per-tree spread.
func (c *Component) Predict(features map[string]float64) Prediction {
	x := vectorize(c.Name, features)

	treePred := c.Forest.Predict(x)
	boostPred := c.Boosted.Predict(x)
	pred := (treePred + boostPred) / 2
	pred = clamp(pred, 0, 100)

	s := sampleStdDev(c.Forest.PredictAll(x))
	lower := clamp(pred-1.96*s, 0, 100)
	upper := clamp(pred+1.96*s, 0, 100)

	return Prediction{Value: pred, Lower: lower, Upper: upper}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sampleStdDev is the Bessel-corrected (N-1) sample standard deviation
// spec.md §4.5 names explicitly for the per-tree prediction spread, unlike
// the population stdev internal/features uses for its volatility features.
func sampleStdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(n)
	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}
