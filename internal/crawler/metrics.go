package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// metricProbe describes how one counter is located and read.
type metricProbe struct {
	kind       types.MetricKind
	candidates []types.Selector
	// wait applies to the first candidate only; later ones are checked once.
	wait       time.Duration
	allowLabel bool
}

// MetricExtractor reads the reaction, comment and share counters of a post.
type MetricExtractor struct {
	probes   []metricProbe
	passes  int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewMetricExtractor builds an extractor. Each of passes re-reads every
// counter and the largest reading per counter is kept.
func NewMetricExtractor(sel Selectors, reactionWait, labelWait time.Duration, passes int, logger *slog.Logger, metrics *observability.Metrics) *MetricExtractor {
	return &MetricExtractor{
		probes: []metricProbe{
			{kind: types.MetricReactions, candidates: sel.Reactions, wait: reactionWait},
			{kind: types.MetricComments, candidates: sel.Comments, wait: labelWait, allowLabel: true},
			{kind: types.MetricShares, candidates: sel.Shares, wait: labelWait, allowLabel: true},
		},
		passes:  max(passes, 1),
		logger:  logger.With("component", "metric_extractor"),
		metrics: metrics,
	}
}

// Extract never fails: counters that cannot be read stay at 0.
func (m *MetricExtractor) Extract(ctx context.Context, page automation.Page) types.EngagementMetrics {
	var out types.EngagementMetrics
	for pass := 0; pass < m.passes; pass++ {
		for _, probe := range m.probes {
			if ctx.Err() != nil {
				return out
			}
			if n, ok := m.read(ctx, page, probe); ok {
				out.Merge(probe.kind, n)
			}
		}
	}
	return out
}

// read returns the first count any candidate yields.
func (m *MetricExtractor) read(ctx context.Context, page automation.Page, probe metricProbe) (int, bool) {
	for i, sel := range probe.candidates {
		wait := probe.wait
		if i > 0 {
			wait = 0
		}

		el, err := page.Find(ctx, sel, wait)
		if err != nil {
			m.miss(probe.kind, sel, err)
			continue
		}
		if visible, err := el.Visible(); err != nil || !visible {
			m.miss(probe.kind, sel, err)
			continue
		}
		text, err := el.Text()
		if err != nil {
			m.miss(probe.kind, sel, err)
			continue
		}
		n, ok := ParseCount(text, probe.allowLabel)
		if !ok {
			m.logger.Debug("unparsable count", "metric", probe.kind, "selector", sel.String(), "text", text)
			m.miss(probe.kind, sel, nil)
			continue
		}
		return n, true
	}
	return 0, false
}

func (m *MetricExtractor) miss(kind types.MetricKind, sel types.Selector, err error) {
	if m.metrics != nil {
		m.metrics.SelectorMisses.Add(1)
	}
	if err != nil {
		m.logger.Debug("selector miss", "metric", kind, "selector", sel.String(), "error", err)
	}
}
