package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/browser"
	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/crawler"
	"github.com/IshaanNene/PostPulse/internal/ingest"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/storage"
	"github.com/IshaanNene/PostPulse/internal/types"
)

var (
	cfgFile     string
	verbose     bool
	outputPath  string
	outputType  string
	linksFile   string
	snapshotDir string
	replayDir   string
	analyze     bool
	headful     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "postpulse",
		Short: "PostPulse: social post engagement and comment sentiment",
		Long: `PostPulse crawls public social-media posts with a headless browser and
reports their engagement and comment sentiment.

Features:
  • Reactions, comments and shares counts, including abbreviated (1.2K) and localized labels
  • Full comment expansion by scrolling until the thread stops growing
  • Cleaning (dedup, emoji stripping) and lexicon or LLM sentiment labelling
  • CSV, JSON, JSONL and MongoDB output
  • Compressed page snapshots with offline replay
  • Charts dashboard with filterable comment export`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [post-url...]",
		Short: "Crawl post pages",
		Long:  "Crawl each post link in order and write the posts and comments tables.",
		RunE:  runCrawl,
	}

	cmd.Flags().StringVarP(&linksFile, "file", "f", "", "links file: .txt (one per line) or .csv (first column)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&outputType, "format", "", "output formats, comma-separated: csv, json, jsonl, mongodb")
	cmd.Flags().StringVar(&snapshotDir, "snapshots", "", "save compressed HTML of each expanded post to this directory")
	cmd.Flags().StringVar(&replayDir, "replay", "", "crawl saved snapshots from this directory instead of a live browser")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "clean and label comments after the crawl")
	cmd.Flags().BoolVar(&headful, "headful", false, "show the browser window")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	logger, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	links := ingest.Merge(args)
	if linksFile != "" {
		fromFile, err := ingest.LoadLinks(linksFile)
		if err != nil {
			return fmt.Errorf("load links: %w", err)
		}
		links = ingest.Merge(args, fromFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	opts := []crawler.Option{crawler.WithMetrics(metrics)}
	launch := liveLauncher(cfg, logger)
	if replayDir != "" {
		snaps, err := storage.NewSnapshotStore(replayDir, logger)
		if err != nil {
			return err
		}
		launch = replayLauncher(snaps, logger)
	} else if cfg.Crawler.SnapshotDir != "" {
		snaps, err := storage.NewSnapshotStore(cfg.Crawler.SnapshotDir, logger)
		if err != nil {
			return err
		}
		opts = append(opts, crawler.WithSnapshots(snaps))
	}

	runner, err := crawler.NewRunner(crawler.New(cfg, logger, opts...), launch, logger)
	if err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	logger.Info("starting crawl", "links", len(links), "output", cfg.Storage.OutputPath, "format", cfg.Storage.Type, "replay", replayDir != "")

	start := time.Now()
	posts, comments, crawlErr := runner.Crawl(ctx, links, func(current, total int) {
		fmt.Fprintf(os.Stderr, "\r🔍 Crawled %d/%d posts", current, total)
		if current == total {
			fmt.Fprintln(os.Stderr)
		}
	})

	var verr *types.ValidationError
	var lerr *types.LaunchError
	if errors.As(crawlErr, &verr) || errors.As(crawlErr, &lerr) {
		return crawlErr
	}
	if crawlErr != nil {
		logger.Warn("crawl interrupted, keeping partial results", "error", crawlErr, "posts", len(posts))
	}

	// Storage gets a fresh context so an interrupted crawl still saves what it has.
	saveCtx := context.WithoutCancel(ctx)
	if err := storage.StoreTables(saveCtx, store, metrics,
		storage.NewTable(storage.TablePosts, posts),
		storage.NewTable(storage.TableComments, comments),
	); err != nil {
		return fmt.Errorf("store results: %w", err)
	}

	if analyze && crawlErr == nil {
		if err := runAnalysis(ctx, cfg, posts, comments, store, metrics, logger); err != nil {
			return err
		}
	}

	stats := metrics.Snapshot()
	fmt.Printf("\n✅ Crawl complete in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("   Posts:     %v crawled, %v failed\n", stats["posts_crawled"], stats["posts_failed"])
	fmt.Printf("   Comments:  %v harvested\n", stats["comments_found"])
	fmt.Printf("   Output:    %s (%s)\n", cfg.Storage.OutputPath, store.Name())

	return crawlErr
}

// liveLauncher starts Chromium for the batch.
func liveLauncher(cfg *config.Config, logger *slog.Logger) crawler.Launcher {
	return func(ctx context.Context) (crawler.Session, error) {
		s, err := browser.Launch(ctx, cfg.Browser, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// replaySession serves saved snapshots through the offline page.
type replaySession struct {
	page *automation.DocumentPage
}

func (s replaySession) Page() automation.Page { return s.page }
func (s replaySession) Close() error          { return nil }

func replayLauncher(snaps *storage.SnapshotStore, logger *slog.Logger) crawler.Launcher {
	return func(ctx context.Context) (crawler.Session, error) {
		return replaySession{page: automation.NewDocumentPage(snaps.Open, logger)}, nil
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("PostPulse %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Browser:\n")
			fmt.Printf("  Headless:           %v\n", cfg.Browser.Headless)
			fmt.Printf("  Viewport:           %dx%d\n", cfg.Browser.ViewportWidth, cfg.Browser.ViewportHeight)
			fmt.Printf("  User Agent:         %s\n", cfg.Browser.UserAgent)
			fmt.Printf("\nCrawler:\n")
			fmt.Printf("  Link Pattern:       %s\n", cfg.Crawler.LinkPattern)
			fmt.Printf("  Navigation Timeout: %s\n", cfg.Crawler.NavigationTimeout)
			fmt.Printf("  Reaction Wait:      %s\n", cfg.Crawler.ReactionWait)
			fmt.Printf("  Max Scrolls:        %d\n", cfg.Crawler.MaxScrollIterations)
			fmt.Printf("  Pacing:             %s-%s\n", cfg.Crawler.PaceMin, cfg.Crawler.PaceMax)
			fmt.Printf("  Snapshot Dir:       %s\n", cfg.Crawler.SnapshotDir)
			fmt.Printf("\nSentiment:\n")
			fmt.Printf("  Provider:           %s\n", cfg.Sentiment.Provider)
			fmt.Printf("  Model:              %s\n", cfg.Sentiment.Model)
			fmt.Printf("  Batch Size:         %d\n", cfg.Sentiment.BatchSize)
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Type:               %s\n", cfg.Storage.Type)
			fmt.Printf("  Output Path:        %s\n", cfg.Storage.OutputPath)
			fmt.Printf("\nDashboard:\n")
			fmt.Printf("  Port:               %d\n", cfg.Dashboard.Port)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:            %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:               %d\n", cfg.Metrics.Port)
			return nil
		},
	}
	return cmd
}

// loadConfig loads and validates configuration and builds the logger.
func loadConfig() (*slog.Logger, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return setupLogger(cfg.Logging), cfg, nil
}

// setupLogger creates a structured logger.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
		cfg.Dashboard.DataDir = outputPath
	}
	if outputType != "" {
		cfg.Storage.Type = strings.ToLower(outputType)
	}
	if snapshotDir != "" {
		cfg.Crawler.SnapshotDir = snapshotDir
	}
	if headful {
		cfg.Browser.Headless = false
	}
}
