package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// Cleaner prepares crawl output for analysis.
type Cleaner struct {
	cfg     config.CleaningConfig
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCleaner creates a Cleaner. metrics may be nil.
func NewCleaner(cfg config.CleaningConfig, logger *slog.Logger, metrics *observability.Metrics) *Cleaner {
	return &Cleaner{
		cfg:     cfg,
		logger:  logger.With("component", "cleaner"),
		metrics: metrics,
	}
}

// Clean derives total engagement for every post, fills empty content, and
// deduplicates comments per post before stripping emoji from them. Post
// order and count are preserved.
func (c *Cleaner) Clean(posts []types.PostRecord, comments []types.CommentRecord) ([]types.CleanPost, []types.CleanComment, error) {
	postPipe := New[types.CleanPost](c.logger)
	postPipe.Use(&DefaultContentMiddleware{Placeholder: c.cfg.EmptyContent})
	postPipe.Use(&EngagementMiddleware{})

	in := make([]types.CleanPost, len(posts))
	for i, p := range posts {
		in[i] = types.CleanPost{PostRecord: p}
	}
	cleanPosts, _, err := postPipe.Run(in)
	if err != nil {
		return nil, nil, err
	}

	commentPipe := New[types.CleanComment](c.logger)
	commentPipe.Use(&TrimMiddleware{})
	commentPipe.Use(NewDedupMiddleware())
	if c.cfg.StripEmoji {
		commentPipe.Use(NewEmojiStripMiddleware())
	}
	if c.cfg.DropEmpty {
		commentPipe.Use(&RequiredTextMiddleware{})
	}

	raw := make([]types.CleanComment, len(comments))
	for i, cm := range comments {
		raw[i] = types.CleanComment{URL: cm.URL, Comment: cm.CommentText}
	}
	cleanComments, dropped, err := commentPipe.Run(raw)
	if err != nil {
		return nil, nil, err
	}

	if c.metrics != nil {
		c.metrics.CommentsDropped.Add(int64(dropped))
	}
	c.logger.Info("cleaning finished",
		"posts", len(cleanPosts),
		"comments", len(cleanComments),
		"comments_dropped", dropped,
	)
	return cleanPosts, cleanComments, nil
}
