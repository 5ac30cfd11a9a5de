package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/IshaanNene/PostPulse/internal/observability"
)

func newTestExtractor(passes int, m *observability.Metrics) *MetricExtractor {
	return NewMetricExtractor(testSelectors(), 0, 0, passes, testLogger, m)
}

func TestMetricExtractorReadsCounts(t *testing.T) {
	page := newFakePage(fakeDoc{
		"reactions": {textEl("1.2K")},
		"comments":  {textEl("34 comments")},
		"shares":    {textEl("5 shares")},
	})

	got := newTestExtractor(1, nil).Extract(context.Background(), page)
	if got.Reactions != 1200 || got.Comments != 34 || got.Shares != 5 {
		t.Errorf("unexpected metrics %+v", got)
	}
}

func TestMetricExtractorFallsThroughCandidates(t *testing.T) {
	metrics := observability.NewMetrics(testLogger)
	page := newFakePage(fakeDoc{
		"reactions":     {textEl("All reactions:")},
		"reactions-alt": {textEl("77")},
		"comments":      {{texts: []string{"9 comments"}, hidden: true}},
		"comments-vi":   {textEl("12 bình luận")},
		"shares":        {{textErr: errors.New("detached")}},
	})

	got := newTestExtractor(1, metrics).Extract(context.Background(), page)
	if got.Reactions != 77 {
		t.Errorf("expected reactions from second candidate, got %d", got.Reactions)
	}
	if got.Comments != 12 {
		t.Errorf("hidden candidate should be skipped, got %d", got.Comments)
	}
	if got.Shares != 0 {
		t.Errorf("unreadable shares should default to 0, got %d", got.Shares)
	}
	if metrics.SelectorMisses.Load() == 0 {
		t.Error("expected selector misses to be counted")
	}
}

func TestMetricExtractorKeepsMaximum(t *testing.T) {
	tests := []struct {
		name     string
		readings []string
		want     int
	}{
		{"small first", []string{"5", "1.2K"}, 1200},
		{"large first", []string{"1.2K", "5"}, 1200},
		{"unparsable later", []string{"40", "loading"}, 40},
		{"never parsable", []string{"loading", "…"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := newFakePage(fakeDoc{"reactions": {textEl(tt.readings...)}})
			got := newTestExtractor(len(tt.readings), nil).Extract(context.Background(), page)
			if got.Reactions != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got.Reactions)
			}
		})
	}
}

func TestMetricExtractorStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	page := newFakePage(fakeDoc{"reactions": {textEl("10")}})
	got := newTestExtractor(1, nil).Extract(ctx, page)
	if got.Reactions != 0 {
		t.Errorf("cancelled extraction should read nothing, got %d", got.Reactions)
	}
}
