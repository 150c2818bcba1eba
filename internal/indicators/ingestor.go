package indicators

import (
	"context"
	"time"

	"geopulse/internal/domain"
	"geopulse/internal/observability"
	"geopulse/internal/register"
	"geopulse/internal/resilience"
	"geopulse/internal/storage"
)

// historyYears is "up to five years of history" per spec.md §4.2.
const historyYears = 5

// rateLimitKey and IndicatorsRateLimitDelay implement D_ind, analogous to
// events.rateLimitKey but at the smaller default of spec.md §4.2 (8.64s).
const rateLimitKey = "ratelimit:indicators"

var IndicatorsRateLimitDelay = time.Duration(8.64 * float64(time.Second))

// Ingestor drives the Indicator Ingestor stage.
type Ingestor struct {
	client   *Client
	breaker  *resilience.CircuitBreaker
	register register.Register
	store    *storage.Store
	metrics  *observability.PipelineMetrics
}

func NewIngestor(client *Client, reg register.Register, store *storage.Store, metrics *observability.PipelineMetrics) *Ingestor {
	return &Ingestor{
		client:   client,
		breaker:  resilience.NewCircuitBreaker(resilience.DefaultConfig("indicators")),
		register: reg,
		store:    store,
		metrics:  metrics,
	}
}

// Result mirrors events.Result for the coordinator's advance decision.
type Result struct {
	CountriesAttempted int
	CountriesFailed    int
	ObservationsStored int
}

func (r Result) AllFailed() bool {
	return r.CountriesAttempted > 0 && r.CountriesFailed == r.CountriesAttempted
}

// Run fetches all nine indicator codes for every country, sequentially.
func (ig *Ingestor) Run(ctx context.Context, countries []domain.Country) (Result, error) {
	var result Result
	now := time.Now().UTC()
	fromYear, toYear := now.Year()-historyYears, now.Year()

	for _, country := range countries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.CountriesAttempted++
		countryCtx := observability.WithCountry(ctx, country.Code)

		stored, failed := ig.ingestCountry(countryCtx, country, fromYear, toYear)
		if failed {
			result.CountriesFailed++
			continue
		}
		result.ObservationsStored += stored
		if ig.metrics != nil {
			ig.metrics.IndicatorsIngested.Add(float64(stored), country.Code)
		}
	}
	return result, nil
}

// ingestCountry fetches every indicator code for one country. A missing
// indicator for that country is not an error per spec.md §4.2 ("a missing
// indicator for a country is not an error"); only a transient/malformed
// failure on every code marks the country failed.
func (ig *Ingestor) ingestCountry(ctx context.Context, country domain.Country, fromYear, toYear int) (stored int, failed bool) {
	codesAttempted, codesFailed := 0, 0

	for _, code := range domain.IndicatorCodes {
		if err := ig.awaitRateLimit(ctx); err != nil {
			codesAttempted++
			codesFailed++
			continue
		}

		codesAttempted++
		raw, err := ig.breaker.ExecuteWithContext(ctx, func() (any, error) {
			return ig.client.FetchSeries(ctx, country.Code, code, fromYear, toYear)
		})
		if err != nil {
			observability.LogEvent(ctx, "warn", "indicator_fetch_failed",
				map[string]any{"indicator": code, "error": err})
			codesFailed++
			continue
		}

		series, _ := raw.([]Observation)
		for _, obs := range series {
			if obs.Value == nil {
				continue
			}
			year, ok := parseYear(obs.Date)
			if !ok {
				continue
			}
			err := ig.store.UpsertEconomicIndicator(ctx, domain.EconomicIndicator{
				CountryID:     country.ID,
				IndicatorCode: code,
				Year:          year,
				Value:         *obs.Value,
			})
			if err != nil {
				observability.LogEvent(ctx, "error", "indicator_store_failed",
					map[string]any{"indicator": code, "year": year, "error": err})
				continue
			}
			stored++
		}
	}

	return stored, codesAttempted > 0 && codesFailed == codesAttempted
}

func (ig *Ingestor) awaitRateLimit(ctx context.Context) error {
	last, err := ig.register.GetTimestamp(ctx, rateLimitKey)
	if err == nil {
		wait := IndicatorsRateLimitDelay - time.Since(last)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	} else if err != register.ErrNotFound {
		return err
	}
	return ig.register.SetTimestamp(ctx, rateLimitKey, time.Now().UTC(), time.Hour)
}
