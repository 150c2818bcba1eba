// Package domain holds the plain, JSON-tagged record types shared across
// every pipeline stage, following the flat-struct-no-behavior shape of
// libs/contracts/domain/position.go.
package domain

import "time"

// Country is a stable, read-only-after-bootstrap identity.
type Country struct {
	ID     int    `json:"id"`
	Code   string `json:"code"` // 2-3 letter alpha code
	Name   string `json:"name"`
	Region string `json:"region"`
}

// RawEvent is one ingested news item. Natural key: (CountryID, SourceURL).
type RawEvent struct {
	ID         int64     `json:"id"`
	CountryID  int       `json:"country_id"`
	EventDate  time.Time `json:"event_date"` // UTC calendar day
	Title      string    `json:"title"`
	SourceURL  string    `json:"source_url"`
	Domain     string    `json:"domain"`
	Language   string    `json:"language"`
	CreatedAt  time.Time `json:"created_at"`
}

// RiskCategory enumerates the Event Processor's classification outcomes.
type RiskCategory string

const (
	CategoryConflict   RiskCategory = "conflict"
	CategoryProtest    RiskCategory = "protest"
	CategoryDiplomatic RiskCategory = "diplomatic"
	CategoryEconomic   RiskCategory = "economic"
	CategoryOther      RiskCategory = "other"
)

// ProcessedEvent is the NLP output for exactly one RawEvent.
type ProcessedEvent struct {
	RawEventID     int64        `json:"raw_event_id"`
	RiskCategory   RiskCategory `json:"risk_category"`
	SentimentScore float64      `json:"sentiment_score"` // [-1, 1]
	SeverityScore  float64      `json:"severity_score"`  // [0, 1]
	Confidence     float64      `json:"confidence"`      // [0, 1]
	NLPVersion     string       `json:"nlp_version"`
	ProcessedAt    time.Time    `json:"processed_at"`
}

// IndicatorCode enumerates the nine fixed indicator codes of spec.md §6.
type IndicatorCode string

const (
	IndicatorPoliticalStability IndicatorCode = "PV.EST"
	IndicatorGovernmentEffect   IndicatorCode = "GE.EST"
	IndicatorRegulatoryQuality  IndicatorCode = "RQ.EST"
	IndicatorRuleOfLaw          IndicatorCode = "RL.EST"
	IndicatorControlCorruption  IndicatorCode = "CC.EST"
	IndicatorGDPGrowth          IndicatorCode = "NY.GDP.MKTP.KD.ZG"
	IndicatorInflation          IndicatorCode = "FP.CPI.TOTL.ZG"
	IndicatorDebtToGDP          IndicatorCode = "GC.DOD.TOTL.GD.ZS"
	IndicatorTradeOpenness      IndicatorCode = "NE.TRD.GNFS.ZS"
)

// IndicatorCodes lists the nine enumerated codes in declared order.
var IndicatorCodes = []IndicatorCode{
	IndicatorPoliticalStability,
	IndicatorGovernmentEffect,
	IndicatorRegulatoryQuality,
	IndicatorRuleOfLaw,
	IndicatorControlCorruption,
	IndicatorGDPGrowth,
	IndicatorInflation,
	IndicatorDebtToGDP,
	IndicatorTradeOpenness,
}

// GovernanceIndicators are native-scale [-2.5, 2.5] and require rescaling to
// [0,100] for any downstream exposure, per spec.md §6.
var GovernanceIndicators = map[IndicatorCode]bool{
	IndicatorPoliticalStability: true,
	IndicatorGovernmentEffect:   true,
	IndicatorRegulatoryQuality:  true,
	IndicatorRuleOfLaw:         true,
	IndicatorControlCorruption: true,
}

// EconomicIndicator is one yearly value for (CountryID, IndicatorCode, Year).
type EconomicIndicator struct {
	CountryID     int           `json:"country_id"`
	IndicatorCode IndicatorCode `json:"indicator_code"`
	Year          int           `json:"year"`
	Value         float64       `json:"value"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// FeatureVector is one named map of numeric features for (CountryID, FeatureDate).
type FeatureVector struct {
	CountryID   int                `json:"country_id"`
	FeatureDate time.Time          `json:"feature_date"`
	Features    map[string]float64 `json:"features"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// RiskScore is one row per (CountryID, ScoreDate).
type RiskScore struct {
	CountryID            int       `json:"country_id"`
	ScoreDate            time.Time `json:"score_date"`
	OverallScore         float64   `json:"overall_score"`
	PoliticalStability   float64   `json:"political_stability"`
	ConflictRisk         float64   `json:"conflict_risk"`
	EconomicRisk         float64   `json:"economic_risk"`
	InstitutionalQuality float64   `json:"institutional_quality"`
	ConfidenceLower      float64   `json:"confidence_lower"`
	ConfidenceUpper      float64   `json:"confidence_upper"`
	ModelVersion         string    `json:"model_version"`
	CreatedAt            time.Time `json:"created_at"`
}

// AlertDirection enumerates the direction of a RiskAlert's score change.
type AlertDirection string

const (
	DirectionIncrease AlertDirection = "increase"
	DirectionDecrease AlertDirection = "decrease"
)

// RiskAlert captures a significant overall-score change between two
// consecutive RiskScore rows for the same country.
type RiskAlert struct {
	ID             int64          `json:"id"`
	CountryID      int            `json:"country_id"`
	PreviousDate   time.Time      `json:"previous_date"`
	CurrentDate    time.Time      `json:"current_date"`
	PreviousScore  float64        `json:"previous_score"`
	CurrentScore   float64        `json:"current_score"`
	Change         float64        `json:"change"`
	Magnitude      float64        `json:"magnitude"`
	Direction      AlertDirection `json:"direction"`
	AlertKind      string         `json:"alert_kind"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// ComponentWeights are the fixed overall-score composition weights of
// spec.md §4.5.
var ComponentWeights = map[string]float64{
	"conflict_risk":         0.30,
	"political_stability":   0.25,
	"economic_risk":         0.25,
	"institutional_quality": 0.20,
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
