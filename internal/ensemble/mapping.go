package ensemble

// featureMappings declares each component's fixed feature subset, grounded
// on the original's self.feature_mappings table (ml_risk_scoring_service.py)
// and re-used unchanged for both training and inference per spec.md §4.5.
// "trade_gdp_ratio_latest" is renamed to "trade_openness_latest" to match
// this rewrite's indicator feature name (internal/features/names.go).
var featureMappings = map[string][]string{
	"political_stability": {
		"political_stability_latest", "government_effectiveness_latest",
		"protest_events_7d", "protest_events_30d", "protest_events_90d",
		"avg_sentiment_7d", "avg_sentiment_30d", "sentiment_volatility_7d",
	},
	"conflict_risk": {
		"conflict_events_7d", "conflict_events_30d", "conflict_events_90d",
		"severity_max_7d", "severity_max_30d", "regional_instability",
		"event_trend_7d", "event_trend_30d",
	},
	"economic_risk": {
		"gdp_growth_latest", "inflation_latest", "debt_to_gdp_latest",
		"trade_openness_latest", "gdp_growth_yoy_change", "inflation_yoy_change",
		"gdp_growth_volatility", "inflation_volatility", "economic_events_30d",
	},
	"institutional_quality": {
		"regulatory_quality_latest", "rule_of_law_latest", "control_of_corruption_latest",
		"government_effectiveness_latest", "political_stability_latest",
		"diplomatic_events_30d", "diplomatic_events_90d",
	},
}

// Components lists the four score components in a stable order.
var Components = []string{"political_stability", "conflict_risk", "economic_risk", "institutional_quality"}

// vectorize projects a named feature map onto the declared subset for
// component, missing keys defaulting to 0.0 (spec.md §4.5 training/inference
// both tolerate missing columns this way).
func vectorize(component string, features map[string]float64) []float64 {
	names := featureMappings[component]
	out := make([]float64, len(names))
	for i, name := range names {
		out[i] = features[name]
	}
	return out
}
