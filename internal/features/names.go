package features

import (
	"strconv"

	"geopulse/internal/domain"
)

// EventWindows are the four window sizes spec.md §4.4a requires event
// time-series features computed for.
var EventWindows = []int{7, 30, 90, 365}

// indicatorFeatureName maps each enumerated indicator code (spec.md §6) to
// the feature-name stem used for its _latest/_yoy_change/_volatility/_trend
// family (spec.md §4.4b), grounded on the original's feature_mappings table
// (ml_risk_scoring_service.py).
var indicatorFeatureName = map[domain.IndicatorCode]string{
	domain.IndicatorPoliticalStability: "political_stability",
	domain.IndicatorGovernmentEffect:   "government_effectiveness",
	domain.IndicatorRegulatoryQuality:  "regulatory_quality",
	domain.IndicatorRuleOfLaw:          "rule_of_law",
	domain.IndicatorControlCorruption:  "control_of_corruption",
	domain.IndicatorGDPGrowth:          "gdp_growth",
	domain.IndicatorInflation:          "inflation",
	domain.IndicatorDebtToGDP:          "debt_to_gdp",
	domain.IndicatorTradeOpenness:      "trade_openness",
}

// FeatureKeys returns every feature name a complete FeatureVector must
// contain, in stable order — used to guarantee spec.md §8 invariant 7
// ("feature vectors share identical key sets across all countries and
// dates").
func FeatureKeys() []string {
	var keys []string
	for _, w := range EventWindows {
		keys = append(keys,
			eventKey("conflict_events", w),
			eventKey("protest_events", w),
			eventKey("diplomatic_events", w),
			eventKey("economic_events", w),
			eventKey("avg_sentiment", w),
			eventKey("sentiment_volatility", w),
			eventKey("severity_max", w),
			eventKey("event_trend", w),
		)
	}
	for _, code := range domain.IndicatorCodes {
		name := indicatorFeatureName[code]
		keys = append(keys, name+"_latest", name+"_yoy_change", name+"_volatility", name+"_trend")
	}
	keys = append(keys, "trade_dependence", "alliance_strength", "regional_instability")
	return keys
}

func eventKey(stem string, window int) string {
	return stem + "_" + strconv.Itoa(window) + "d"
}
