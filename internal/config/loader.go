package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// A .env file in the working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("POSTPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("postpulse")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".postpulse"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env vars can override them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.bin", cfg.Browser.Bin)
	v.SetDefault("browser.no_sandbox", cfg.Browser.NoSandbox)
	v.SetDefault("browser.user_agent", cfg.Browser.UserAgent)
	v.SetDefault("browser.viewport_width", cfg.Browser.ViewportWidth)
	v.SetDefault("browser.viewport_height", cfg.Browser.ViewportHeight)
	v.SetDefault("browser.element_timeout", cfg.Browser.ElementTimeout)

	v.SetDefault("crawler.link_pattern", cfg.Crawler.LinkPattern)
	v.SetDefault("crawler.navigation_timeout", cfg.Crawler.NavigationTimeout)
	v.SetDefault("crawler.idle_timeout", cfg.Crawler.IdleTimeout)
	v.SetDefault("crawler.idle_fallback", cfg.Crawler.IdleFallback)
	v.SetDefault("crawler.reaction_wait", cfg.Crawler.ReactionWait)
	v.SetDefault("crawler.container_wait", cfg.Crawler.ContainerWait)
	v.SetDefault("crawler.metric_passes", cfg.Crawler.MetricPasses)
	v.SetDefault("crawler.sort_pause", cfg.Crawler.SortPause)
	v.SetDefault("crawler.spam_pause", cfg.Crawler.SpamPause)
	v.SetDefault("crawler.scroll_step", cfg.Crawler.ScrollStep)
	v.SetDefault("crawler.stall_step", cfg.Crawler.StallStep)
	v.SetDefault("crawler.scroll_pause_min", cfg.Crawler.ScrollPauseMin)
	v.SetDefault("crawler.scroll_pause_max", cfg.Crawler.ScrollPauseMax)
	v.SetDefault("crawler.max_scroll_iterations", cfg.Crawler.MaxScrollIterations)
	v.SetDefault("crawler.pace_min", cfg.Crawler.PaceMin)
	v.SetDefault("crawler.pace_max", cfg.Crawler.PaceMax)
	v.SetDefault("crawler.snapshot_dir", cfg.Crawler.SnapshotDir)

	v.SetDefault("cleaning.empty_content", cfg.Cleaning.EmptyContent)
	v.SetDefault("cleaning.strip_emoji", cfg.Cleaning.StripEmoji)
	v.SetDefault("cleaning.drop_empty", cfg.Cleaning.DropEmpty)

	v.SetDefault("sentiment.provider", cfg.Sentiment.Provider)
	v.SetDefault("sentiment.endpoint", cfg.Sentiment.Endpoint)
	v.SetDefault("sentiment.model", cfg.Sentiment.Model)
	v.SetDefault("sentiment.api_key", cfg.Sentiment.APIKey)
	v.SetDefault("sentiment.batch_size", cfg.Sentiment.BatchSize)
	v.SetDefault("sentiment.requests_per_second", cfg.Sentiment.RequestsPerSecond)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo_uri", cfg.Storage.MongoURI)
	v.SetDefault("storage.mongo_database", cfg.Storage.MongoDatabase)

	v.SetDefault("dashboard.port", cfg.Dashboard.Port)
	v.SetDefault("dashboard.data_dir", cfg.Dashboard.DataDir)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
