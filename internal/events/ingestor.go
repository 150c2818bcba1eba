package events

import (
	"context"
	"fmt"
	"time"

	"geopulse/internal/domain"
	"geopulse/internal/observability"
	"geopulse/internal/register"
	"geopulse/internal/resilience"
	"geopulse/internal/storage"
)

const (
	// DefaultLookbackDays and DefaultMaxRecords are spec.md §4.1's stated
	// defaults.
	DefaultLookbackDays = 7
	MaxLookbackDays     = 30
	DefaultMaxRecords   = 250
)

// rateLimitKey is the shared register key gating calls to the news-events
// feed across every process.
const rateLimitKey = "ratelimit:events"

// EventsRateLimitDelay is the minimum inter-request gap to the news-events
// feed, D_events in spec.md §4.1 (86.4s default).
var EventsRateLimitDelay = time.Duration(86.4 * float64(time.Second))

// Ingestor drives the Event Ingestor stage: one sequential pass over every
// country, gated by the shared rate-limit register, grounded on
// gdelt_service.py's collect_all_countries_events per-country loop plus
// inter-country sleep.
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
		breaker:  resilience.NewCircuitBreaker(resilience.DefaultConfig("events")),
		register: reg,
		store:    store,
		metrics:  metrics,
	}
}

// Result summarizes one ingestor run for the coordinator's task-advance
// decision (spec.md §7: advance last_run_at unless every country failed).
type Result struct {
	CountriesAttempted int
	CountriesFailed    int
	EventsInserted     int
}

// AllFailed reports whether every attempted country failed, the one case
// spec.md §7 says must NOT advance last_run_at.
func (r Result) AllFailed() bool {
	return r.CountriesAttempted > 0 && r.CountriesFailed == r.CountriesAttempted
}

// Run ingests events for every country, sequentially, honoring the shared
// rate-limit register before each upstream call.
func (ig *Ingestor) Run(ctx context.Context, countries []domain.Country, lookbackDays, maxRecords int) (Result, error) {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if lookbackDays > MaxLookbackDays {
		lookbackDays = MaxLookbackDays
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}

	var result Result
	for _, country := range countries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.CountriesAttempted++
		countryCtx := observability.WithCountry(ctx, country.Code)

		if err := ig.awaitRateLimit(countryCtx); err != nil {
			observability.LogEvent(countryCtx, "error", "events_rate_limit_failed", map[string]any{"error": err})
			result.CountriesFailed++
			continue
		}

		inserted, err := ig.ingestCountry(countryCtx, country, lookbackDays, maxRecords)
		if err != nil {
			observability.LogEvent(countryCtx, "error", "events_ingest_failed", map[string]any{"error": err})
			result.CountriesFailed++
			continue
		}
		result.EventsInserted += inserted
		if ig.metrics != nil {
			ig.metrics.EventsIngested.Add(float64(inserted), country.Code)
		}
	}
	return result, nil
}

func (ig *Ingestor) ingestCountry(ctx context.Context, country domain.Country, lookbackDays, maxRecords int) (int, error) {
	raw, err := ig.breaker.ExecuteWithContext(ctx, func() (any, error) {
		return ig.client.FetchArticles(ctx, country.Code, lookbackDays, maxRecords)
	})
	if err != nil {
		return 0, err
	}
	articles, _ := raw.([]Article)

	inserted := 0
	for _, a := range articles {
		event, ok := toRawEvent(country.ID, a)
		if !ok {
			continue
		}
		wasInserted, err := ig.store.InsertRawEvent(ctx, event)
		if err != nil {
			return inserted, fmt.Errorf("store article: %w", err)
		}
		if wasInserted {
			inserted++
		}
	}
	return inserted, nil
}

// awaitRateLimit sleeps until now >= last_call + D_events, then atomically
// records now as the new last-call timestamp (spec.md §4.1).
func (ig *Ingestor) awaitRateLimit(ctx context.Context) error {
	last, err := ig.register.GetTimestamp(ctx, rateLimitKey)
	if err == nil {
		wait := EventsRateLimitDelay - time.Since(last)
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

const (
	titleMaxLen  = 1000
	urlMaxLen    = 500
	domainMaxLen = 100
	langMaxLen   = 10
)

// toRawEvent parses one Article per spec.md §4.1's storage policy: truncate
// title/url, parse seendate's first 8 characters as a UTC calendar day
// (ignoring the time component), default language to "eng".
func toRawEvent(countryID int, a Article) (domain.RawEvent, bool) {
	if a.URL == "" {
		return domain.RawEvent{}, false
	}
	eventDate := time.Now().UTC()
	if len(a.SeenDate) >= 8 {
		if parsed, err := time.Parse("20060102", a.SeenDate[:8]); err == nil {
			eventDate = parsed
		}
	}

	language := a.Language
	if language == "" {
		language = "eng"
	}

	return domain.RawEvent{
		CountryID: countryID,
		EventDate: eventDate,
		Title:     truncate(a.Title, titleMaxLen),
		SourceURL: truncate(a.URL, urlMaxLen),
		Domain:    truncate(a.Domain, domainMaxLen),
		Language:  truncate(language, langMaxLen),
	}, true
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
