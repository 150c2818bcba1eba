// Package features implements the Feature Builder of spec.md §4.4: event
// time-series aggregates, economic-indicator derived features, and a small
// network/regional block, assembled into one FeatureVector per
// (country, date). Grounded on the original's FeatureEngineeringService,
// rewritten around internal/storage's query surface.
package features

import (
	"context"
	"fmt"
	"time"

	"geopulse/internal/domain"
	"geopulse/internal/storage"
)

// RegionalWindow is how far back RiskScoresByRegion looks for neighboring
// countries' latest scores, per spec.md §4.4c.
const RegionalWindow = 30 * 24 * time.Hour

// Builder assembles FeatureVectors from stored events, indicators and scores.
type Builder struct {
	store *storage.Store
}

func NewBuilder(store *storage.Store) *Builder {
	return &Builder{store: store}
}

// BuildFeatureVector computes every feature in FeatureKeys() for one country
// on targetDate, imputing 0.0 wherever the underlying input is missing
// (spec.md §4.4 "Output").
func (b *Builder) BuildFeatureVector(ctx context.Context, country domain.Country, targetDate time.Time) (domain.FeatureVector, error) {
	features := make(map[string]float64, len(FeatureKeys()))

	for _, w := range EventWindows {
		eventFeatures, err := b.eventWindowFeatures(ctx, country.ID, targetDate, w)
		if err != nil {
			return domain.FeatureVector{}, fmt.Errorf("features: event window %dd: %w", w, err)
		}
		for k, v := range eventFeatures {
			features[k] = v
		}
	}

	for _, code := range domain.IndicatorCodes {
		indicatorFeatures, err := b.indicatorFeatures(ctx, country.ID, code)
		if err != nil {
			return domain.FeatureVector{}, fmt.Errorf("features: indicator %s: %w", code, err)
		}
		for k, v := range indicatorFeatures {
			features[k] = v
		}
	}

	networkFeatures, err := b.networkFeatures(ctx, country, targetDate)
	if err != nil {
		return domain.FeatureVector{}, fmt.Errorf("features: network: %w", err)
	}
	for k, v := range networkFeatures {
		features[k] = v
	}

	// Guarantee every declared key is present even if some stage above
	// skipped it entirely.
	for _, k := range FeatureKeys() {
		if _, ok := features[k]; !ok {
			features[k] = 0.0
		}
	}

	return domain.FeatureVector{
		CountryID:   country.ID,
		FeatureDate: targetDate,
		Features:    features,
	}, nil
}

// eventWindowFeatures computes the eight features of spec.md §4.4a for one
// window size, zero-filling days with no events for the trend series. The
// window covers exactly `window` calendar days ending at targetDate inclusive.
func (b *Builder) eventWindowFeatures(ctx context.Context, countryID int, targetDate time.Time, window int) (map[string]float64, error) {
	start := targetDate.AddDate(0, 0, -(window - 1))

	events, err := b.store.ProcessedEventsInWindow(ctx, countryID, start, targetDate)
	if err != nil {
		return nil, err
	}

	out := map[string]float64{
		eventKey("conflict_events", window):      0,
		eventKey("protest_events", window):       0,
		eventKey("diplomatic_events", window):    0,
		eventKey("economic_events", window):      0,
		eventKey("avg_sentiment", window):        0,
		eventKey("sentiment_volatility", window): 0,
		eventKey("severity_max", window):         0,
		eventKey("event_trend", window):          0,
	}
	if len(events) == 0 {
		return out, nil
	}

	var sentiments, severities []float64
	dailyCounts := make(map[string]int)

	for _, ev := range events {
		switch ev.RiskCategory {
		case domain.CategoryConflict:
			out[eventKey("conflict_events", window)]++
		case domain.CategoryProtest:
			out[eventKey("protest_events", window)]++
		case domain.CategoryDiplomatic:
			out[eventKey("diplomatic_events", window)]++
		case domain.CategoryEconomic:
			out[eventKey("economic_events", window)]++
		}
		sentiments = append(sentiments, ev.SentimentScore)
		severities = append(severities, ev.SeverityScore)
		dailyCounts[ev.EventDate.Format("2006-01-02")]++
	}

	out[eventKey("avg_sentiment", window)] = mean(sentiments)
	out[eventKey("sentiment_volatility", window)] = popStdDev(sentiments)
	out[eventKey("severity_max", window)] = maxOf(severities)
	out[eventKey("event_trend", window)] = olsSlope(dailySeries(dailyCounts, start, targetDate))

	return out, nil
}

// dailySeries turns a date->count map into a complete, zero-filled count
// series over [start, end] inclusive, one entry per calendar day.
func dailySeries(counts map[string]int, start, end time.Time) []float64 {
	var series []float64
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		series = append(series, float64(counts[d.Format("2006-01-02")]))
	}
	return series
}

// historyYears bounds the indicator history window used for trend and
// volatility, matching the original's "last 3 years" plus the latest value.
const historyYears = 3

// indicatorFeatures computes the four features of spec.md §4.4b for one
// indicator code: <name>_latest, _yoy_change, _volatility, _trend.
func (b *Builder) indicatorFeatures(ctx context.Context, countryID int, code domain.IndicatorCode) (map[string]float64, error) {
	name := indicatorFeatureName[code]
	out := map[string]float64{
		name + "_latest":     0,
		name + "_yoy_change": 0,
		name + "_volatility": 0,
		name + "_trend":      0,
	}

	history, err := b.store.IndicatorHistory(ctx, countryID, code)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return out, nil
	}

	// history is newest-year-first; latest is history[0].
	latest := history[0]
	out[name+"_latest"] = latest.Value

	cutoff := latest.Year - historyYears
	var years []int
	var values []float64
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Year >= cutoff {
			years = append(years, history[i].Year)
			values = append(values, history[i].Value)
		}
	}

	if len(values) < 2 {
		return out, nil
	}

	prev := values[len(values)-2]
	last := values[len(values)-1]
	if prev != 0 {
		out[name+"_yoy_change"] = (last - prev) / abs(prev) * 100
	}

	out[name+"_volatility"] = popStdDev(values)

	if len(values) >= 3 {
		out[name+"_trend"] = olsSlopeOverYears(years, values)
	}

	return out, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// networkFeatures computes the three features of spec.md §4.4c: two fixed
// placeholders plus a regional-instability average over neighboring
// countries' recent scores.
func (b *Builder) networkFeatures(ctx context.Context, country domain.Country, targetDate time.Time) (map[string]float64, error) {
	out := map[string]float64{
		"trade_dependence":     0.5,
		"alliance_strength":    0.5,
		"regional_instability": 50.0,
	}

	if country.Region == "" {
		return out, nil
	}

	scores, err := b.store.RiskScoresByRegion(ctx, country.Region, country.ID, targetDate, RegionalWindow)
	if err != nil {
		return nil, err
	}
	if len(scores) > 0 {
		out["regional_instability"] = mean(scores)
	}
	return out, nil
}
