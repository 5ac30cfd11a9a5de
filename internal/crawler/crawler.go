// Package crawler extracts engagement counters and comments from post pages.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// SnapshotSaver persists the rendered HTML of a crawled post.
type SnapshotSaver interface {
	Save(url, html string) (string, error)
}

// PostResult is everything one post crawl produced.
type PostResult struct {
	Post     types.PostRecord
	Comments []types.CommentRecord
	Scroll   ScrollReport
}

// Crawler crawls single posts on a page it is handed.
type Crawler struct {
	cfg       *config.Config
	sel       Selectors
	clock     Clock
	snapshots SnapshotSaver
	logger    *slog.Logger
	metrics   *observability.Metrics

	extractor *MetricExtractor
	content   *ContentExtractor
	expander  *Expander
	harvester *Harvester
}

// Option configures the Crawler.
type Option func(*Crawler)

// WithClock replaces the wall clock used for every pause.
func WithClock(c Clock) Option {
	return func(cr *Crawler) { cr.clock = c }
}

// WithSelectors replaces the default selector candidates.
func WithSelectors(s Selectors) Option {
	return func(cr *Crawler) { cr.sel = s }
}

// WithSnapshots saves the expanded page of every successful crawl.
func WithSnapshots(s SnapshotSaver) Option {
	return func(cr *Crawler) { cr.snapshots = s }
}

// WithMetrics records crawl counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(cr *Crawler) { cr.metrics = m }
}

// New creates a Crawler.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Crawler {
	c := &Crawler{
		cfg:    cfg,
		sel:    DefaultSelectors(),
		clock:  realClock{},
		logger: logger.With("component", "crawler"),
	}
	for _, opt := range opts {
		opt(c)
	}

	elementWait := cfg.Browser.ElementTimeout
	c.extractor = NewMetricExtractor(c.sel, cfg.Crawler.ReactionWait, elementWait, cfg.Crawler.MetricPasses, logger, c.metrics)
	c.content = NewContentExtractor(c.sel, elementWait, logger)
	c.expander = NewExpander(c.sel, cfg.Crawler, elementWait, c.clock, logger, c.metrics)
	c.harvester = NewHarvester(c.sel, logger)
	return c
}

// CrawlPost crawls url on page. It always returns a result: any failure,
// panics included, yields a degraded post record with the error set and no
// comments.
func (c *Crawler) CrawlPost(ctx context.Context, page automation.Page, url string) (res PostResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = c.degraded(url, fmt.Errorf("panic: %v", r))
		}
		if c.metrics != nil {
			c.metrics.PostsCrawled.Add(1)
			if res.Post.Failed() {
				c.metrics.PostsFailed.Add(1)
			}
			c.metrics.CommentsFound.Add(int64(len(res.Comments)))
		}
		c.logger.Info("post crawled",
			"url", url,
			"comments", len(res.Comments),
			"failed", res.Post.Failed(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	}()

	res, err := c.crawl(ctx, page, url)
	if err != nil {
		return c.degraded(url, err)
	}
	return res
}

func (c *Crawler) degraded(url string, err error) PostResult {
	c.logger.Warn("post crawl failed", "error", &types.PostCrawlError{URL: url, Err: err})
	return PostResult{Post: types.FailedPost(url, err)}
}

func (c *Crawler) crawl(ctx context.Context, page automation.Page, url string) (PostResult, error) {
	navCtx, cancel := context.WithTimeout(ctx, c.cfg.Crawler.NavigationTimeout)
	err := page.Navigate(navCtx, url)
	cancel()
	if err != nil {
		return PostResult{}, err
	}
	c.settle(ctx, page)

	content := c.content.Content(ctx, page)
	meta := c.content.Metadata(ctx, page)
	counts := c.extractor.Extract(ctx, page)
	report := c.expander.Expand(ctx, page)
	c.snapshot(ctx, page, url)
	comments := c.harvester.Harvest(ctx, page, url)

	if err := ctx.Err(); err != nil {
		return PostResult{}, err
	}

	return PostResult{
		Post: types.PostRecord{
			URL:                  url,
			Author:               meta.Author,
			Content:              content,
			ReactionsCount:       counts.Reactions,
			CommentsCount:        counts.Comments,
			SharesCount:          counts.Shares,
			TotalCommentsCrawled: len(comments),
		},
		Comments: comments,
		Scroll:   report,
	}, nil
}

// settle waits for the network to go idle, falling back to a fixed pause.
func (c *Crawler) settle(ctx context.Context, page automation.Page) {
	idleCtx, cancel := context.WithTimeout(ctx, c.cfg.Crawler.IdleTimeout)
	defer cancel()
	if err := page.WaitSettled(idleCtx); err != nil {
		c.logger.Debug("page did not settle, using fallback pause", "error", err)
		_ = c.clock.Sleep(ctx, c.cfg.Crawler.IdleFallback)
	}
}

func (c *Crawler) snapshot(ctx context.Context, page automation.Page, url string) {
	if c.snapshots == nil {
		return
	}
	html, err := page.HTML(ctx)
	if err != nil {
		c.logger.Warn("read page html", "url", url, "error", err)
		return
	}
	path, err := c.snapshots.Save(url, html)
	if err != nil {
		c.logger.Warn("save snapshot", "url", url, "error", err)
		return
	}
	if c.metrics != nil {
		c.metrics.SnapshotsSaved.Add(1)
	}
	c.logger.Debug("snapshot saved", "url", url, "path", path)
}
