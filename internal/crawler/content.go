package crawler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// PostMetadata is what is known about the publisher of a post.
type PostMetadata struct {
	Author string
}

// ContentExtractor reads the body text and author of a post.
type ContentExtractor struct {
	content []types.Selector
	author  []types.Selector
	wait    time.Duration
	logger  *slog.Logger
}

// NewContentExtractor builds an extractor that waits up to wait for the first
// candidate of each field.
func NewContentExtractor(sel Selectors, wait time.Duration, logger *slog.Logger) *ContentExtractor {
	return &ContentExtractor{
		content: sel.Content,
		author:  sel.Author,
		wait:    wait,
		logger:  logger.With("component", "content_extractor"),
	}
}

// Content returns the trimmed post body, or "" when no candidate matches.
func (c *ContentExtractor) Content(ctx context.Context, page automation.Page) string {
	return c.firstText(ctx, page, "content", c.content)
}

// Metadata returns the post author. Individual selector failures are logged
// and skipped.
func (c *ContentExtractor) Metadata(ctx context.Context, page automation.Page) PostMetadata {
	return PostMetadata{Author: c.firstText(ctx, page, "author", c.author)}
}

func (c *ContentExtractor) firstText(ctx context.Context, page automation.Page, field string, candidates []types.Selector) string {
	for i, sel := range candidates {
		wait := c.wait
		if i > 0 {
			wait = 0
		}
		el, _, ok := automation.FirstVisible(ctx, page, wait, sel)
		if !ok {
			c.logger.Debug("no visible match", "field", field, "selector", sel.String())
			continue
		}
		text, err := el.Text()
		if err != nil {
			c.logger.Debug("text read failed", "field", field, "selector", sel.String(), "error", err)
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}
