package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad link pattern", func(c *Config) { c.Crawler.LinkPattern = "([" }},
		{"zero navigation timeout", func(c *Config) { c.Crawler.NavigationTimeout = 0 }},
		{"pause max below min", func(c *Config) { c.Crawler.ScrollPauseMax = c.Crawler.ScrollPauseMin - time.Millisecond }},
		{"no scroll iterations", func(c *Config) { c.Crawler.MaxScrollIterations = 0 }},
		{"no metric passes", func(c *Config) { c.Crawler.MetricPasses = 0 }},
		{"unknown provider", func(c *Config) { c.Sentiment.Provider = "bert" }},
		{"unknown storage", func(c *Config) { c.Storage.Type = "parquet" }},
		{"mongo without uri", func(c *Config) { c.Storage.Type = "mongodb" }},
		{"unknown storage in list", func(c *Config) { c.Storage.Type = "csv,parquet" }},
		{"mongo in list without uri", func(c *Config) { c.Storage.Type = "csv, mongodb" }},
		{"empty storage list", func(c *Config) { c.Storage.Type = " , " }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
		{"empty user agent", func(c *Config) { c.Browser.UserAgent = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestStorageTypes(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"csv", "csv"},
		{"CSV, jsonl", "csv|jsonl"},
		{"csv,mongodb,csv", "csv|mongodb"},
		{" , ", ""},
	}
	for _, tt := range tests {
		got := strings.Join(StorageConfig{Type: tt.in}.Types(), "|")
		if got != tt.want {
			t.Errorf("Types(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	cfg := DefaultConfig()
	cfg.Storage.Type = "csv,jsonl"
	if err := Validate(cfg); err != nil {
		t.Errorf("expected multi-backend list to be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postpulse.yaml")
	content := `
crawler:
  max_scroll_iterations: 50
  pace_min: 3s
  pace_max: 4s
storage:
  type: jsonl
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Crawler.MaxScrollIterations != 50 {
		t.Errorf("expected 50 iterations, got %d", cfg.Crawler.MaxScrollIterations)
	}
	if cfg.Crawler.PaceMin != 3*time.Second || cfg.Crawler.PaceMax != 4*time.Second {
		t.Errorf("unexpected pacing %s-%s", cfg.Crawler.PaceMin, cfg.Crawler.PaceMax)
	}
	if cfg.Storage.Type != "jsonl" {
		t.Errorf("expected jsonl storage, got %q", cfg.Storage.Type)
	}
	if cfg.Browser.ViewportWidth != 1920 {
		t.Errorf("defaults should survive partial files, got width %d", cfg.Browser.ViewportWidth)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
