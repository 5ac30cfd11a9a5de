package config

import (
	"slices"
	"strings"
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// DefaultUserAgent is the fixed desktop user-agent every crawl presents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultLinkPattern accepts scheme://host/<page>/posts/<id> post links.
const DefaultLinkPattern = `^https?://[^/\s]+/[^/\s]+/posts/[^/?#\s]+`

// Config is the root configuration for PostPulse.
type Config struct {
	Browser   BrowserConfig   `mapstructure:"browser"   yaml:"browser"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"   yaml:"crawler"`
	Cleaning  CleaningConfig  `mapstructure:"cleaning"  yaml:"cleaning"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"   yaml:"metrics"`
}

// BrowserConfig controls the headless browser session.
type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless"        yaml:"headless"`
	Bin            string        `mapstructure:"bin"             yaml:"bin"`
	NoSandbox      bool          `mapstructure:"no_sandbox"      yaml:"no_sandbox"`
	UserAgent      string        `mapstructure:"user_agent"      yaml:"user_agent"`
	ViewportWidth  int           `mapstructure:"viewport_width"  yaml:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height" yaml:"viewport_height"`
	ElementTimeout time.Duration `mapstructure:"element_timeout" yaml:"element_timeout"`
}

// CrawlerConfig controls the per-post crawl and the batch loop.
type CrawlerConfig struct {
	LinkPattern string `mapstructure:"link_pattern" yaml:"link_pattern"`

	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"       yaml:"idle_timeout"`
	IdleFallback      time.Duration `mapstructure:"idle_fallback"      yaml:"idle_fallback"`
	ReactionWait      time.Duration `mapstructure:"reaction_wait"      yaml:"reaction_wait"`
	ContainerWait     time.Duration `mapstructure:"container_wait"     yaml:"container_wait"`
	MetricPasses      int           `mapstructure:"metric_passes"      yaml:"metric_passes"`

	SortPause           time.Duration `mapstructure:"sort_pause"            yaml:"sort_pause"`
	SpamPause           time.Duration `mapstructure:"spam_pause"            yaml:"spam_pause"`
	ScrollStep          int           `mapstructure:"scroll_step"           yaml:"scroll_step"`
	StallStep           int           `mapstructure:"stall_step"            yaml:"stall_step"`
	ScrollPauseMin      time.Duration `mapstructure:"scroll_pause_min"      yaml:"scroll_pause_min"`
	ScrollPauseMax      time.Duration `mapstructure:"scroll_pause_max"      yaml:"scroll_pause_max"`
	MaxScrollIterations int           `mapstructure:"max_scroll_iterations" yaml:"max_scroll_iterations"`

	PaceMin time.Duration `mapstructure:"pace_min" yaml:"pace_min"`
	PaceMax time.Duration `mapstructure:"pace_max" yaml:"pace_max"`

	SnapshotDir string `mapstructure:"snapshot_dir" yaml:"snapshot_dir"`
}

// CleaningConfig controls the cleaning stage that runs after a crawl.
type CleaningConfig struct {
	EmptyContent string `mapstructure:"empty_content" yaml:"empty_content"`
	StripEmoji   bool   `mapstructure:"strip_emoji"   yaml:"strip_emoji"`
	DropEmpty    bool   `mapstructure:"drop_empty"    yaml:"drop_empty"`
}

// SentimentConfig controls comment sentiment labelling.
type SentimentConfig struct {
	Provider          string            `mapstructure:"provider"            yaml:"provider"` // lexicon, ollama, openai
	Endpoint          string            `mapstructure:"endpoint"            yaml:"endpoint"`
	Model             string            `mapstructure:"model"               yaml:"model"`
	APIKey            string            `mapstructure:"api_key"             yaml:"api_key"`
	BatchSize         int               `mapstructure:"batch_size"          yaml:"batch_size"`
	RequestsPerSecond float64           `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Labels            map[string]string `mapstructure:"labels"              yaml:"labels"`
}

// StorageConfig controls output/storage. Type may list several backends
// separated by commas ("csv,mongodb"); every table is written to each.
type StorageConfig struct {
	Type          string `mapstructure:"type"           yaml:"type"`
	OutputPath    string `mapstructure:"output_path"    yaml:"output_path"`
	MongoURI      string `mapstructure:"mongo_uri"      yaml:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database" yaml:"mongo_database"`
}

// Types returns the configured backends, lowercased and without duplicates.
func (c StorageConfig) Types() []string {
	var out []string
	for _, t := range strings.Split(c.Type, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// DashboardConfig controls the results dashboard.
type DashboardConfig struct {
	Port    int    `mapstructure:"port"     yaml:"port"`
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus-style metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       true,
			NoSandbox:      true,
			UserAgent:      DefaultUserAgent,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			ElementTimeout: 1 * time.Second,
		},
		Crawler: CrawlerConfig{
			LinkPattern:         DefaultLinkPattern,
			NavigationTimeout:   30 * time.Second,
			IdleTimeout:         10 * time.Second,
			IdleFallback:        2 * time.Second,
			ReactionWait:        15 * time.Second,
			ContainerWait:       5 * time.Second,
			MetricPasses:        1,
			SortPause:           1 * time.Second,
			SpamPause:           2 * time.Second,
			ScrollStep:          1500,
			StallStep:           2500,
			ScrollPauseMin:      1 * time.Second,
			ScrollPauseMax:      2 * time.Second,
			MaxScrollIterations: 1000,
			PaceMin:             1 * time.Second,
			PaceMax:             2 * time.Second,
		},
		Cleaning: CleaningConfig{
			EmptyContent: "Cập nhật ảnh bìa",
			StripEmoji:   true,
			DropEmpty:    true,
		},
		Sentiment: SentimentConfig{
			Provider:          "lexicon",
			Endpoint:          "http://localhost:11434",
			Model:             "llama3",
			BatchSize:         16,
			RequestsPerSecond: 2,
		},
		Storage: StorageConfig{
			Type:          "csv",
			OutputPath:    "./output",
			MongoDatabase: "postpulse",
		},
		Dashboard: DashboardConfig{
			Port:    8501,
			DataDir: "./output",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
