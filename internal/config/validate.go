package config

import (
	"fmt"
	"net/url"
	"regexp"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Browser.ViewportWidth < 1 || cfg.Browser.ViewportHeight < 1 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d", cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
	}
	if cfg.Browser.UserAgent == "" {
		return fmt.Errorf("browser.user_agent must not be empty")
	}
	if cfg.Browser.ElementTimeout <= 0 {
		return fmt.Errorf("browser.element_timeout must be > 0")
	}

	if _, err := regexp.Compile(cfg.Crawler.LinkPattern); err != nil {
		return fmt.Errorf("crawler.link_pattern is not a valid regexp: %w", err)
	}
	if cfg.Crawler.NavigationTimeout <= 0 {
		return fmt.Errorf("crawler.navigation_timeout must be > 0")
	}
	if cfg.Crawler.IdleTimeout <= 0 {
		return fmt.Errorf("crawler.idle_timeout must be > 0")
	}
	if cfg.Crawler.IdleFallback < 0 || cfg.Crawler.SortPause < 0 || cfg.Crawler.SpamPause < 0 {
		return fmt.Errorf("crawler pauses must be >= 0")
	}
	if cfg.Crawler.MetricPasses < 1 {
		return fmt.Errorf("crawler.metric_passes must be >= 1, got %d", cfg.Crawler.MetricPasses)
	}
	if cfg.Crawler.ScrollStep <= 0 || cfg.Crawler.StallStep <= 0 {
		return fmt.Errorf("crawler scroll steps must be > 0")
	}
	if cfg.Crawler.ScrollPauseMin < 0 || cfg.Crawler.ScrollPauseMax < cfg.Crawler.ScrollPauseMin {
		return fmt.Errorf("crawler.scroll_pause_min/max must satisfy 0 <= min <= max")
	}
	if cfg.Crawler.MaxScrollIterations < 1 {
		return fmt.Errorf("crawler.max_scroll_iterations must be >= 1, got %d", cfg.Crawler.MaxScrollIterations)
	}
	if cfg.Crawler.PaceMin < 0 || cfg.Crawler.PaceMax < cfg.Crawler.PaceMin {
		return fmt.Errorf("crawler.pace_min/max must satisfy 0 <= min <= max")
	}

	validProviders := map[string]bool{
		"lexicon": true, "ollama": true, "openai": true,
	}
	if !validProviders[cfg.Sentiment.Provider] {
		return fmt.Errorf("sentiment.provider %q is not supported (valid: lexicon, ollama, openai)", cfg.Sentiment.Provider)
	}
	if cfg.Sentiment.Provider != "lexicon" {
		if _, err := url.Parse(cfg.Sentiment.Endpoint); err != nil {
			return fmt.Errorf("invalid sentiment.endpoint %q: %w", cfg.Sentiment.Endpoint, err)
		}
	}
	if cfg.Sentiment.BatchSize < 1 {
		return fmt.Errorf("sentiment.batch_size must be >= 1, got %d", cfg.Sentiment.BatchSize)
	}
	if cfg.Sentiment.RequestsPerSecond <= 0 {
		return fmt.Errorf("sentiment.requests_per_second must be > 0")
	}

	validStorageTypes := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	storageTypes := cfg.Storage.Types()
	if len(storageTypes) == 0 {
		return fmt.Errorf("storage.type must not be empty")
	}
	for _, t := range storageTypes {
		if !validStorageTypes[t] {
			return fmt.Errorf("storage.type %q is not supported (valid: json, jsonl, csv, mongodb)", t)
		}
		if t == "mongodb" && cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
		}
	}

	if cfg.Dashboard.Port < 1 || cfg.Dashboard.Port > 65535 {
		return fmt.Errorf("dashboard.port must be 1-65535, got %d", cfg.Dashboard.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}
