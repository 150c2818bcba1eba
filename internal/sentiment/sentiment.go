// Package sentiment implements a lexicon-based polarity scorer for the
// Event Processor (spec.md §4.3 step 2). No sentiment-analysis library
// appears anywhere in the example pack's dependency surface, and the spec
// requires a pure, deterministic function a hosted or ML-backed analyzer
// cannot guarantee re-run-stable; this is implemented on the standard
// library, the one sentiment-layer component justified that way in
// DESIGN.md.
package sentiment

import "strings"

// lexicon maps a lowercased word to its polarity weight, AFINN-style.
var lexicon = map[string]float64{
	"attack": -0.9, "violence": -0.9, "war": -0.9, "conflict": -0.7,
	"terrorism": -1.0, "bombing": -1.0, "killed": -0.9, "dead": -0.8,
	"crisis": -0.6, "threat": -0.6, "sanctions": -0.5, "collapse": -0.8,
	"protest": -0.4, "riot": -0.7, "unrest": -0.6, "strike": -0.3,
	"corruption": -0.7, "fraud": -0.7, "crash": -0.6, "recession": -0.6,
	"decline": -0.4, "tension": -0.5, "instability": -0.6,
	"peace": 0.8, "agreement": 0.5, "treaty": 0.5, "cooperation": 0.6,
	"growth": 0.6, "recovery": 0.6, "stability": 0.7, "success": 0.7,
	"deal": 0.4, "partnership": 0.5, "investment": 0.4, "progress": 0.5,
	"summit": 0.2, "talks": 0.2,
}

// Score returns the mean lexicon weight across the words present in text,
// clamped to [-1, 1]. Words not found in the lexicon contribute nothing; an
// all-neutral text scores 0.
func Score(text string) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	var sum float64
	var hits int
	for _, w := range words {
		w = strings.Trim(w, ".,!?;:\"'()")
		if weight, ok := lexicon[w]; ok {
			sum += weight
			hits++
		}
	}
	if hits == 0 {
		return 0
	}

	avg := sum / float64(hits)
	if avg < -1 {
		return -1
	}
	if avg > 1 {
		return 1
	}
	return avg
}
