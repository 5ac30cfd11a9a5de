package crawler

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// Session is a browser with one page that lives for a single batch.
type Session interface {
	Page() automation.Page
	Close() error
}

// Launcher opens a Session.
type Launcher func(ctx context.Context) (Session, error)

// ProgressFunc is called once per finished post with a 1-based position.
type ProgressFunc func(current, total int)

// Runner crawls a batch of links on one shared browser page.
type Runner struct {
	crawler *Crawler
	launch  Launcher
	links   *regexp.Regexp
	paceMin time.Duration
	paceMax time.Duration
	logger  *slog.Logger
}

// NewRunner creates a Runner. The link pattern and pacing come from the
// crawler's configuration.
func NewRunner(c *Crawler, launch Launcher, logger *slog.Logger) (*Runner, error) {
	re, err := CompileLinkPattern(c.cfg.Crawler.LinkPattern)
	if err != nil {
		return nil, err
	}
	return &Runner{
		crawler: c,
		launch:  launch,
		links:   re,
		paceMin: c.cfg.Crawler.PaceMin,
		paceMax: c.cfg.Crawler.PaceMax,
		logger:  logger.With("component", "runner"),
	}, nil
}

// Crawl validates links, then crawls them in order on a single page.
//
// A *types.ValidationError is returned before any browser is started, and a
// *types.LaunchError when the browser cannot be started. Per-post failures
// never fail the batch: the post row carries the error instead. If ctx is
// cancelled, the batch stops before the next link and returns the rows
// gathered so far together with ctx.Err().
func (r *Runner) Crawl(ctx context.Context, links []string, onProgress ProgressFunc) ([]types.PostRecord, []types.CommentRecord, error) {
	if err := ValidateLinks(links, r.links); err != nil {
		return nil, nil, err
	}

	session, err := r.launch(ctx)
	if err != nil {
		var le *types.LaunchError
		if !errors.As(err, &le) {
			err = &types.LaunchError{Stage: "launch", Err: err}
		}
		return nil, nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Warn("close browser session", "error", err)
		}
	}()

	page := session.Page()
	total := len(links)
	posts := make([]types.PostRecord, 0, total)
	var comments []types.CommentRecord

	r.logger.Info("batch started", "links", total)
	start := time.Now()

	for i, link := range links {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("batch cancelled", "done", i, "total", total)
			return posts, comments, err
		}

		res := r.crawler.CrawlPost(ctx, page, link)
		posts = append(posts, res.Post)
		comments = append(comments, res.Comments...)

		if onProgress != nil {
			onProgress(i+1, total)
		}

		if i < total-1 {
			_ = r.crawler.clock.Sleep(ctx, jitter(r.paceMin, r.paceMax))
		}
	}

	r.logger.Info("batch finished",
		"posts", len(posts),
		"comments", len(comments),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return posts, comments, nil
}
