package crawler

import (
	"context"
	"reflect"
	"testing"

	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
)

func newTestExpander(cfg config.CrawlerConfig, clock Clock, m *observability.Metrics) *Expander {
	return NewExpander(testSelectors(), cfg, 0, clock, testLogger, m)
}

func TestExpandStopsAfterSecondStall(t *testing.T) {
	container := &fakeElement{heights: []int{100, 250, 250, 250}}
	page := newFakePage(fakeDoc{"container": {container}})

	report := newTestExpander(config.DefaultConfig().Crawler, &fakeClock{}, nil).Expand(context.Background(), page)

	if report.Reason != StopExhausted {
		t.Fatalf("expected exhausted, got %s", report.Reason)
	}
	if report.Iterations != 3 || report.Stalls != 2 {
		t.Errorf("expected 3 iterations and 2 stalls, got %+v", report)
	}
	if container.heightReads != 4 {
		t.Errorf("expected 4 height observations, got %d", container.heightReads)
	}
	if want := []int{1500, 1500, 2500}; !reflect.DeepEqual(container.scrolls, want) {
		t.Errorf("expected scroll steps %v, got %v", want, container.scrolls)
	}
	if report.FinalHeight != 250 {
		t.Errorf("expected final height 250, got %d", report.FinalHeight)
	}
}

func TestExpandResumesAfterSingleStall(t *testing.T) {
	container := &fakeElement{heights: []int{100, 200, 200, 300, 300, 300}}
	page := newFakePage(fakeDoc{"container": {container}})

	report := newTestExpander(config.DefaultConfig().Crawler, &fakeClock{}, nil).Expand(context.Background(), page)

	if report.Reason != StopExhausted {
		t.Fatalf("expected exhausted, got %s", report.Reason)
	}
	if want := []int{1500, 1500, 2500, 1500, 2500}; !reflect.DeepEqual(container.scrolls, want) {
		t.Errorf("expected scroll steps %v, got %v", want, container.scrolls)
	}
}

func TestExpandIterationCap(t *testing.T) {
	heights := make([]int, 20)
	for i := range heights {
		heights[i] = (i + 1) * 100
	}
	container := &fakeElement{heights: heights}
	page := newFakePage(fakeDoc{"container": {container}})
	metrics := observability.NewMetrics(testLogger)

	cfg := config.DefaultConfig().Crawler
	cfg.MaxScrollIterations = 5
	report := newTestExpander(cfg, &fakeClock{}, metrics).Expand(context.Background(), page)

	if report.Reason != StopIterationCap || report.Iterations != 5 {
		t.Errorf("expected cap after 5 iterations, got %+v", report)
	}
	if metrics.ScrollCapHits.Load() != 1 || metrics.ScrollIterations.Load() != 5 {
		t.Errorf("unexpected metrics %v", metrics.Snapshot())
	}
}

func TestExpandClicksButtons(t *testing.T) {
	sort := textEl("Most relevant")
	reveal := textEl("Show all comments, including potential spam.")
	page := newFakePage(fakeDoc{
		"sort":      {sort},
		"reveal":    {reveal},
		"container": {{heights: []int{10}}},
	})
	clock := &fakeClock{}
	cfg := config.DefaultConfig().Crawler

	newTestExpander(cfg, clock, nil).Expand(context.Background(), page)

	if sort.clicks != 1 || reveal.clicks != 1 {
		t.Errorf("expected one click each, got sort=%d reveal=%d", sort.clicks, reveal.clicks)
	}
	if clock.count(cfg.SortPause) < 1 || clock.count(cfg.SpamPause) < 1 {
		t.Errorf("expected pauses after clicks, got %v", clock.sleeps)
	}
}

func TestExpandWithoutContainer(t *testing.T) {
	page := newFakePage(fakeDoc{})
	report := newTestExpander(config.DefaultConfig().Crawler, &fakeClock{}, nil).Expand(context.Background(), page)
	if report.Reason != StopNoContainer || report.Iterations != 0 {
		t.Errorf("expected no_container, got %+v", report)
	}
}

func TestExpandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	container := &fakeElement{heights: []int{100, 200, 300}}
	page := newFakePage(fakeDoc{"container": {container}})

	report := newTestExpander(config.DefaultConfig().Crawler, &fakeClock{}, nil).Expand(ctx, page)
	if report.Reason != StopCancelled || report.Iterations != 1 {
		t.Errorf("expected cancellation after the first step, got %+v", report)
	}
}

func TestNextState(t *testing.T) {
	tests := []struct {
		from scrollState
		grew bool
		want scrollState
	}{
		{stateGrowing, true, stateGrowing},
		{stateGrowing, false, stateStalledOnce},
		{stateStalledOnce, true, stateGrowing},
		{stateStalledOnce, false, stateDone},
		{stateDone, true, stateDone},
		{stateDone, false, stateDone},
	}

	for _, tt := range tests {
		if got := nextState(tt.from, tt.grew); got != tt.want {
			t.Errorf("nextState(%s, %v) = %s, want %s", tt.from, tt.grew, got, tt.want)
		}
	}
}
