package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// scrollState is the state of the comment expansion loop.
//
//	Growing --no growth--> StalledOnce --no growth--> Done
//	   ^                        |
//	   +--------growth----------+
//
// Reaching the iteration cap also ends in Done.
type scrollState int

const (
	stateGrowing scrollState = iota
	stateStalledOnce
	stateDone
)

func (s scrollState) String() string {
	switch s {
	case stateGrowing:
		return "growing"
	case stateStalledOnce:
		return "stalled_once"
	default:
		return "done"
	}
}

// StopReason says why comment expansion ended.
type StopReason string

const (
	StopExhausted    StopReason = "exhausted"
	StopIterationCap StopReason = "iteration_cap"
	StopNoContainer  StopReason = "no_container"
	StopScrollError  StopReason = "scroll_error"
	StopCancelled    StopReason = "cancelled"
)

// ScrollReport summarises one expansion.
type ScrollReport struct {
	Iterations  int
	Stalls      int
	FinalHeight int
	Reason      StopReason
}

// Expander reveals every comment of a post: it switches the sort order,
// uncovers filtered comments and scrolls the comment list until it stops
// growing.
type Expander struct {
	sel         Selectors
	cfg         config.CrawlerConfig
	elementWait time.Duration
	clock       Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewExpander creates an expander. elementWait bounds the lookup of each
// button.
func NewExpander(sel Selectors, cfg config.CrawlerConfig, elementWait time.Duration, clock Clock, logger *slog.Logger, metrics *observability.Metrics) *Expander {
	return &Expander{
		sel:         sel,
		cfg:         cfg,
		elementWait: elementWait,
		clock:       clock,
		logger:      logger.With("component", "comment_expander"),
		metrics:     metrics,
	}
}

// Expand is best effort. It never fails; the report says how far it got.
func (e *Expander) Expand(ctx context.Context, page automation.Page) ScrollReport {
	e.clickIfPresent(ctx, page, "sort_toggle", e.sel.SortToggle, e.cfg.SortPause)
	e.clickIfPresent(ctx, page, "reveal_all", e.sel.RevealAll, e.cfg.SpamPause)

	container, sel, ok := automation.FirstVisible(ctx, page, e.cfg.ContainerWait, e.sel.Container...)
	if !ok {
		e.logger.Debug("no comment container")
		return ScrollReport{Reason: StopNoContainer}
	}
	e.logger.Debug("scrolling comment container", "selector", sel.String())

	report := e.scroll(ctx, container)
	if e.metrics != nil {
		e.metrics.ScrollIterations.Add(int64(report.Iterations))
		if report.Reason == StopIterationCap {
			e.metrics.ScrollCapHits.Add(1)
		}
	}
	e.logger.Debug("comment expansion finished",
		"iterations", report.Iterations,
		"stalls", report.Stalls,
		"height", report.FinalHeight,
		"reason", report.Reason,
	)
	return report
}

func (e *Expander) clickIfPresent(ctx context.Context, page automation.Page, name string, candidates []types.Selector, pause time.Duration) {
	el, _, ok := automation.FirstVisible(ctx, page, e.elementWait, candidates...)
	if !ok {
		return
	}
	if err := el.Click(); err != nil {
		e.logger.Debug("click failed", "button", name, "error", err)
		return
	}
	_ = e.clock.Sleep(ctx, pause)
}

// scroll runs the growth loop against container.
func (e *Expander) scroll(ctx context.Context, container automation.Element) ScrollReport {
	var report ScrollReport

	last, err := container.ScrollHeight()
	if err != nil {
		e.logger.Debug("read scroll height", "error", err)
		report.Reason = StopScrollError
		return report
	}
	report.FinalHeight = last

	state := stateGrowing
	for report.Iterations < e.cfg.MaxScrollIterations {
		step := e.cfg.ScrollStep
		if state == stateStalledOnce {
			step = e.cfg.StallStep
		}

		if err := container.ScrollBy(step); err != nil {
			e.logger.Debug("scroll", "error", err)
			report.Reason = StopScrollError
			return report
		}
		report.Iterations++

		if err := e.clock.Sleep(ctx, jitter(e.cfg.ScrollPauseMin, e.cfg.ScrollPauseMax)); err != nil {
			report.Reason = StopCancelled
			return report
		}

		height, err := container.ScrollHeight()
		if err != nil {
			e.logger.Debug("read scroll height", "error", err)
			report.Reason = StopScrollError
			return report
		}

		state = nextState(state, height > last)
		if height > last {
			last = height
		} else {
			report.Stalls++
		}
		report.FinalHeight = height

		if state == stateDone {
			report.Reason = StopExhausted
			return report
		}
	}

	report.Reason = StopIterationCap
	return report
}

// nextState is the transition function of the growth loop.
func nextState(s scrollState, grew bool) scrollState {
	switch {
	case s == stateDone:
		return stateDone
	case grew:
		return stateGrowing
	case s == stateGrowing:
		return stateStalledOnce
	default:
		return stateDone
	}
}
