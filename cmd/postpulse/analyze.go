package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/pipeline"
	"github.com/IshaanNene/PostPulse/internal/sentiment"
	"github.com/IshaanNene/PostPulse/internal/storage"
	"github.com/IshaanNene/PostPulse/internal/types"
)

var inputDir string

// analyzeCmd creates the "analyze" subcommand.
func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Clean crawl output and label comment sentiment",
		Long: `Read the posts and comments tables of a previous crawl, clean them and
label every comment as negative, neutral or positive.

Providers:
  lexicon  built-in English/Vietnamese word lists (default, offline)
  ollama   local LLM via Ollama
  openai   OpenAI-compatible chat completions API`,
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory with posts/comments tables (default: storage output path)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&outputType, "format", "", "output formats, comma-separated: csv, json, jsonl, mongodb")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := inputDir
	if dir == "" {
		dir = cfg.Storage.OutputPath
	}

	postsPath, err := storage.FindTable(dir, storage.TablePosts)
	if err != nil {
		return err
	}
	posts, err := storage.ReadPosts(postsPath)
	if err != nil {
		return err
	}
	commentsPath, err := storage.FindTable(dir, storage.TableComments)
	if err != nil {
		return err
	}
	comments, err := storage.ReadComments(commentsPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer store.Close()

	metrics := observability.NewMetrics(logger)
	if err := runAnalysis(ctx, cfg, posts, comments, store, metrics, logger); err != nil {
		return err
	}

	stats := metrics.Snapshot()
	fmt.Printf("\n✅ Analysis complete\n")
	fmt.Printf("   Comments:  %v labeled, %v dropped\n", stats["comments_labeled"], stats["comments_dropped"])
	fmt.Printf("   Output:    %s (%s)\n", cfg.Storage.OutputPath, store.Name())
	return nil
}

// runAnalysis cleans the crawl tables, labels comments and stores the
// cleaned and labelled tables.
func runAnalysis(ctx context.Context, cfg *config.Config, posts []types.PostRecord, comments []types.CommentRecord,
	store storage.Storage, metrics *observability.Metrics, logger *slog.Logger) error {

	cleanPosts, cleanComments, err := pipeline.NewCleaner(cfg.Cleaning, logger, metrics).Clean(posts, comments)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}

	classifier, err := sentiment.New(cfg.Sentiment, logger)
	if err != nil {
		return err
	}
	labeled, err := sentiment.NewAnalyzer(classifier, cfg.Sentiment, logger, metrics).Label(ctx, cleanComments)
	if err != nil {
		return fmt.Errorf("label sentiment: %w", err)
	}

	return storage.StoreTables(ctx, store, metrics,
		storage.NewTable(storage.TableCleanPosts, cleanPosts),
		storage.NewTable(storage.TableCleanComments, cleanComments),
		storage.NewTable(storage.TableLabeledComments, labeled),
	)
}
