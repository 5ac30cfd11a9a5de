package crawler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// Harvester turns the expanded comment list into comment records.
type Harvester struct {
	bodies []types.Selector
	emoji  types.Selector
	logger *slog.Logger
}

func NewHarvester(sel Selectors, logger *slog.Logger) *Harvester {
	return &Harvester{
		bodies: sel.CommentBody,
		emoji:  sel.CommentEmoji,
		logger: logger.With("component", "comment_harvester"),
	}
}

// Harvest returns one record per visible comment body, using the first body
// selector that matches anything. Emoji rendered as images are appended to
// the text as their alt descriptions. Nodes that fail are skipped.
func (h *Harvester) Harvest(ctx context.Context, page automation.Page, url string) []types.CommentRecord {
	nodes := h.bodyNodes(ctx, page)

	comments := make([]types.CommentRecord, 0, len(nodes))
	for _, node := range nodes {
		text, ok := h.commentText(node)
		if !ok {
			continue
		}
		comments = append(comments, types.CommentRecord{URL: url, CommentText: text})
	}
	return comments
}

func (h *Harvester) bodyNodes(ctx context.Context, page automation.Page) []automation.Element {
	for _, sel := range h.bodies {
		nodes, err := page.FindAll(ctx, sel)
		if err != nil {
			h.logger.Debug("comment lookup failed", "selector", sel.String(), "error", err)
			continue
		}
		if len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

func (h *Harvester) commentText(node automation.Element) (string, bool) {
	visible, err := node.Visible()
	if err != nil || !visible {
		return "", false
	}
	text, err := node.Text()
	if err != nil {
		h.logger.Debug("comment text", "error", err)
		return "", false
	}

	parts := []string{strings.TrimSpace(text)}
	imgs, err := node.FindAll(h.emoji)
	if err != nil {
		h.logger.Debug("comment emoji", "error", err)
		return "", false
	}
	for _, img := range imgs {
		alt, ok, err := img.Attribute("alt")
		if err != nil || !ok || alt == "" {
			continue
		}
		parts = append(parts, alt)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), true
}
