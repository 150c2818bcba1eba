// Package ensemble implements the Ensemble Scorer of spec.md §4.5: a
// bagged regression-tree ensemble plus a boosted-tree regressor per
// component, composed into an overall risk score with a variance-derived
// confidence interval. Grounded on the original's
// RandomForestRegressor+XGBRegressor pair (ml_risk_scoring_service.py); no
// gradient-boosting or random-forest library exists anywhere in the
// example pack, so the trees themselves are a standard-library
// implementation — the one algorithmic component in this repo built on
// math/rand/v2 rather than a pack dependency.
package ensemble

import "math/rand/v2"

// treeNode is one node of a CART regression tree: either a leaf (value) or
// an internal split (feature index, threshold, two children). Fields are
// exported so a Tree can round-trip through encoding/gob for model
// persistence (internal/ensemble/serialize.go).
type treeNode struct {
	IsLeaf    bool
	Value     float64
	Feature   int
	Threshold float64
	Left      *treeNode
	Right     *treeNode
}

// Tree is a single trained regression tree.
type Tree struct {
	Root *treeNode
}

// TreeConfig bounds tree growth.
type TreeConfig struct {
	MaxDepth int
	MinSplit int // minimum samples required to attempt a split
}

// fitTree grows a CART regression tree over rows indexed by idx, using
// greedy variance-reduction splits over every feature at every candidate
// threshold (midpoints between sorted distinct values).
func fitTree(X [][]float64, y []float64, idx []int, cfg TreeConfig) *Tree {
	return &Tree{Root: buildNode(X, y, idx, cfg, 0)}
}

func buildNode(X [][]float64, y []float64, idx []int, cfg TreeConfig, depth int) *treeNode {
	if depth >= cfg.MaxDepth || len(idx) < cfg.MinSplit {
		return &treeNode{IsLeaf: true, Value: meanOf(y, idx)}
	}

	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0
	parentVar := varianceOf(y, idx) * float64(len(idx))

	numFeatures := len(X[idx[0]])
	for f := 0; f < numFeatures; f++ {
		thresholds := candidateThresholds(X, idx, f)
		for _, t := range thresholds {
			var leftIdx, rightIdx []int
			for _, i := range idx {
				if X[i][f] <= t {
					leftIdx = append(leftIdx, i)
				} else {
					rightIdx = append(rightIdx, i)
				}
			}
			if len(leftIdx) == 0 || len(rightIdx) == 0 {
				continue
			}
			childVar := varianceOf(y, leftIdx)*float64(len(leftIdx)) + varianceOf(y, rightIdx)*float64(len(rightIdx))
			gain := parentVar - childVar
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = t
			}
		}
	}

	if bestFeature < 0 {
		return &treeNode{IsLeaf: true, Value: meanOf(y, idx)}
	}

	var leftIdx, rightIdx []int
	for _, i := range idx {
		if X[i][bestFeature] <= bestThreshold {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	return &treeNode{
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      buildNode(X, y, leftIdx, cfg, depth+1),
		Right:     buildNode(X, y, rightIdx, cfg, depth+1),
	}
}

// candidateThresholds returns midpoints between consecutive distinct sorted
// values of feature f over idx.
func candidateThresholds(X [][]float64, idx []int, f int) []float64 {
	values := make([]float64, len(idx))
	for i, row := range idx {
		values[i] = X[row][f]
	}
	sortFloats(values)

	var thresholds []float64
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			thresholds = append(thresholds, (values[i]+values[i-1])/2)
		}
	}
	return thresholds
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func meanOf(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func varianceOf(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	m := meanOf(y, idx)
	var sumSq float64
	for _, i := range idx {
		d := y[i] - m
		sumSq += d * d
	}
	return sumSq / float64(len(idx))
}

// Predict walks x down the tree to its leaf value.
func (t *Tree) Predict(x []float64) float64 {
	n := t.Root
	for !n.IsLeaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// bootstrapSample draws len(idx) indices from idx with replacement using rng.
func bootstrapSample(idx []int, rng *rand.Rand) []int {
	out := make([]int, len(idx))
	for i := range out {
		out[i] = idx[rng.IntN(len(idx))]
	}
	return out
}
