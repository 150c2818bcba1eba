package main

import (
	"errors"
	"os"
)

// defaultNewsEventsBaseURL and defaultIndicatorsBaseURL are the upstream
// feeds' base URLs (spec.md §6), grounded on the original's
// gdelt_service.py and worldbank_service.py base_url constants. The spec
// does not name a configuration env var for either — only the API keys are
// listed as recognized environment variables — so these are compiled-in
// defaults, not overridable.
const (
	defaultNewsEventsBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	defaultIndicatorsBaseURL = "https://api.worldbank.org/v2/country"
	defaultMetricsAddr       = ":9090"
)

// config holds the process's environment-derived configuration, per
// spec.md §6 "Environment variables (recognized)".
type config struct {
	databaseURL       string
	redisURL          string
	newsEventsAPIKey  string
	indicatorsAPIKey  string
	newsEventsBaseURL string
	indicatorsBaseURL string
	metricsAddr       string
}

// errMissingDatabaseURL is the one fatal configuration error: DATABASE_URL
// is required (spec.md §6).
var errMissingDatabaseURL = errors.New("DATABASE_URL is required")

func loadConfig() (config, error) {
	cfg := config{
		databaseURL:       os.Getenv("DATABASE_URL"),
		redisURL:          os.Getenv("REDIS_URL"),
		newsEventsAPIKey:  os.Getenv("NEWS_EVENTS_API_KEY"),
		indicatorsAPIKey:  os.Getenv("INDICATORS_API_KEY"),
		newsEventsBaseURL: defaultNewsEventsBaseURL,
		indicatorsBaseURL: defaultIndicatorsBaseURL,
		metricsAddr:       defaultMetricsAddr,
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.metricsAddr = v
	}
	if cfg.databaseURL == "" {
		return config{}, errMissingDatabaseURL
	}
	return cfg, nil
}
