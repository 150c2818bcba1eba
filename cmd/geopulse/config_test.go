package main

import (
	"os"
	"testing"
)

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	os.Unsetenv("DATABASE_URL")
	if _, err := loadConfig(); err != errMissingDatabaseURL {
		t.Fatalf("err = %v, want errMissingDatabaseURL", err)
	}
}

func TestLoadConfig_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/geopulse")
	t.Setenv("NEWS_EVENTS_API_KEY", "news-key")
	os.Unsetenv("REDIS_URL")
	os.Unsetenv("INDICATORS_API_KEY")
	os.Unsetenv("METRICS_ADDR")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.databaseURL != "postgres://localhost/geopulse" {
		t.Fatalf("databaseURL = %q", cfg.databaseURL)
	}
	if cfg.newsEventsAPIKey != "news-key" {
		t.Fatalf("newsEventsAPIKey = %q", cfg.newsEventsAPIKey)
	}
	if cfg.redisURL != "" {
		t.Fatalf("redisURL = %q, want empty", cfg.redisURL)
	}
	if cfg.newsEventsBaseURL != defaultNewsEventsBaseURL {
		t.Fatalf("newsEventsBaseURL = %q", cfg.newsEventsBaseURL)
	}
	if cfg.indicatorsBaseURL != defaultIndicatorsBaseURL {
		t.Fatalf("indicatorsBaseURL = %q", cfg.indicatorsBaseURL)
	}
	if cfg.metricsAddr != defaultMetricsAddr {
		t.Fatalf("metricsAddr = %q", cfg.metricsAddr)
	}
}

func TestLoadConfig_MetricsAddrOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/geopulse")
	t.Setenv("METRICS_ADDR", ":9999")

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.metricsAddr != ":9999" {
		t.Fatalf("metricsAddr = %q, want :9999", cfg.metricsAddr)
	}
}
