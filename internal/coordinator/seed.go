package coordinator

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"geopulse/internal/domain"
	"geopulse/internal/storage"
)

// seedHistoryDays is how many days of synthetic RiskScore history the
// cold-start seed writes per country, grounded on the original's
// seed_data.py generating "sample risk score data" for the last 30 days.
const seedHistoryDays = 30

// SeedProfile is a hand-authored baseline for one country's four score
// components, used only to synthesize history when a country has no
// RiskScore rows yet (spec.md §4.9 cold start). Values are the original's
// seed_data.py "base_risk" idea split across components instead of one
// scalar, since this rewrite scores four components independently.
type SeedProfile struct {
	Code                 string
	PoliticalStability   float64
	ConflictRisk         float64
	EconomicRisk         float64
	InstitutionalQuality float64
}

// defaultSeedProfile is used for any roster country not named in
// seedProfiles below — a neutral midpoint rather than a fabricated guess.
var defaultSeedProfile = SeedProfile{
	PoliticalStability: 50, ConflictRisk: 50, EconomicRisk: 50, InstitutionalQuality: 50,
}

// seedProfiles is deliberately small and hand-authored, not a mirror of the
// full roster (spec.md §4.9 "a small embedded table of hand-authored
// country risk profiles"), kept as a Go literal; every country missing here
// falls back to defaultSeedProfile.
var seedProfiles = []SeedProfile{
	{Code: "US", PoliticalStability: 25, ConflictRisk: 15, EconomicRisk: 25, InstitutionalQuality: 15},
	{Code: "CA", PoliticalStability: 15, ConflictRisk: 10, EconomicRisk: 20, InstitutionalQuality: 10},
	{Code: "GB", PoliticalStability: 25, ConflictRisk: 15, EconomicRisk: 30, InstitutionalQuality: 15},
	{Code: "DE", PoliticalStability: 20, ConflictRisk: 10, EconomicRisk: 25, InstitutionalQuality: 10},
	{Code: "RU", PoliticalStability: 70, ConflictRisk: 75, EconomicRisk: 60, InstitutionalQuality: 70},
	{Code: "UA", PoliticalStability: 80, ConflictRisk: 90, EconomicRisk: 75, InstitutionalQuality: 65},
	{Code: "CN", PoliticalStability: 45, ConflictRisk: 35, EconomicRisk: 35, InstitutionalQuality: 55},
	{Code: "IN", PoliticalStability: 40, ConflictRisk: 35, EconomicRisk: 40, InstitutionalQuality: 45},
	{Code: "IL", PoliticalStability: 65, ConflictRisk: 80, EconomicRisk: 35, InstitutionalQuality: 30},
	{Code: "SA", PoliticalStability: 50, ConflictRisk: 45, EconomicRisk: 40, InstitutionalQuality: 55},
	{Code: "IR", PoliticalStability: 75, ConflictRisk: 65, EconomicRisk: 70, InstitutionalQuality: 75},
	{Code: "IQ", PoliticalStability: 80, ConflictRisk: 85, EconomicRisk: 65, InstitutionalQuality: 75},
	{Code: "SY", PoliticalStability: 95, ConflictRisk: 95, EconomicRisk: 90, InstitutionalQuality: 90},
	{Code: "YE", PoliticalStability: 90, ConflictRisk: 90, EconomicRisk: 85, InstitutionalQuality: 85},
	{Code: "NG", PoliticalStability: 60, ConflictRisk: 65, EconomicRisk: 55, InstitutionalQuality: 60},
	{Code: "SD", PoliticalStability: 85, ConflictRisk: 85, EconomicRisk: 75, InstitutionalQuality: 80},
	{Code: "SO", PoliticalStability: 90, ConflictRisk: 90, EconomicRisk: 80, InstitutionalQuality: 85},
	{Code: "VE", PoliticalStability: 70, ConflictRisk: 55, EconomicRisk: 80, InstitutionalQuality: 70},
	{Code: "BR", PoliticalStability: 45, ConflictRisk: 40, EconomicRisk: 45, InstitutionalQuality: 45},
	{Code: "ZA", PoliticalStability: 40, ConflictRisk: 40, EconomicRisk: 45, InstitutionalQuality: 40},
	{Code: "AU", PoliticalStability: 15, ConflictRisk: 10, EconomicRisk: 20, InstitutionalQuality: 10},
	{Code: "NZ", PoliticalStability: 10, ConflictRisk: 10, EconomicRisk: 20, InstitutionalQuality: 10},
}

func seedProfileFor(code string) SeedProfile {
	for _, p := range seedProfiles {
		if p.Code == code {
			return p
		}
	}
	profile := defaultSeedProfile
	profile.Code = code
	return profile
}

// SeedColdStartHistory synthesizes seedHistoryDays of RiskScore rows for
// every roster country that has none yet, from seedProfiles, so
// Trainer.Train has something to fit on the very first run instead of
// deadlocking on ErrInsufficientTrainingData forever (spec.md §4.9).
// Countries that already have at least one RiskScore row are left
// untouched. Returns the number of rows written.
func SeedColdStartHistory(ctx context.Context, store *storage.Store) (int, error) {
	countries, err := store.ListCountries(ctx)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, country := range countries {
		has, err := store.HasRiskScores(ctx, country.ID)
		if err != nil {
			return written, err
		}
		if has {
			continue
		}

		profile := seedProfileFor(country.Code)
		rng := rand.New(rand.NewPCG(uint64(country.ID), seedStreamSalt))
		today := time.Now().UTC().Truncate(24 * time.Hour)

		for day := seedHistoryDays - 1; day >= 0; day-- {
			date := today.AddDate(0, 0, -day)
			score := syntheticScore(profile, rng, date)
			score.CountryID = country.ID
			if err := store.UpsertRiskScore(ctx, score); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

// seedStreamSalt keeps the per-country PRNG stream distinct from any other
// use of math/rand/v2.PCG seeded on a country id elsewhere in the pipeline.
const seedStreamSalt = 0x6765656f

// syntheticScore jitters profile's four baselines by up to ±10 points
// (clamped to [0,100]) and composes the overall score with
// domain.ComponentWeights, mirroring seed_data.py's
// "base_risk + random variation per component" approach.
func syntheticScore(profile SeedProfile, rng *rand.Rand, date time.Time) domain.RiskScore {
	political := jitter(rng, profile.PoliticalStability, 10)
	conflict := jitter(rng, profile.ConflictRisk, 10)
	economic := jitter(rng, profile.EconomicRisk, 10)
	institutional := jitter(rng, profile.InstitutionalQuality, 10)

	overall := domain.ComponentWeights["political_stability"]*political +
		domain.ComponentWeights["conflict_risk"]*conflict +
		domain.ComponentWeights["economic_risk"]*economic +
		domain.ComponentWeights["institutional_quality"]*institutional

	return domain.RiskScore{
		ScoreDate:            date,
		OverallScore:         round2(overall),
		PoliticalStability:   political,
		ConflictRisk:         conflict,
		EconomicRisk:         economic,
		InstitutionalQuality: institutional,
		ConfidenceLower:      domain.Clamp(overall-15, 0, 100),
		ConfidenceUpper:      domain.Clamp(overall+15, 0, 100),
		ModelVersion:         "seed",
	}
}

func jitter(rng *rand.Rand, base float64, spread int) float64 {
	delta := rng.IntN(2*spread+1) - spread
	return domain.Clamp(base+float64(delta), 0, 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
