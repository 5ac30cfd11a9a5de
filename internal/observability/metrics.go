package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters for crawls and the analysis stages.
type Metrics struct {
	// Crawl metrics
	PostsCrawled     atomic.Int64
	PostsFailed      atomic.Int64
	CommentsFound    atomic.Int64
	ScrollIterations atomic.Int64
	ScrollCapHits    atomic.Int64
	SelectorMisses   atomic.Int64
	SnapshotsSaved   atomic.Int64

	// Analysis metrics
	CommentsDropped atomic.Int64
	CommentsLabeled atomic.Int64
	RecordsStored   atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"postpulse_posts_crawled_total", "Total posts crawled", m.PostsCrawled.Load()},
		{"postpulse_posts_failed_total", "Total posts degraded by a crawl error", m.PostsFailed.Load()},
		{"postpulse_comments_harvested_total", "Total comment rows harvested", m.CommentsFound.Load()},
		{"postpulse_scroll_iterations_total", "Total comment scroll steps", m.ScrollIterations.Load()},
		{"postpulse_scroll_cap_hits_total", "Expansions stopped by the iteration cap", m.ScrollCapHits.Load()},
		{"postpulse_selector_misses_total", "Selector candidates that matched nothing usable", m.SelectorMisses.Load()},
		{"postpulse_snapshots_saved_total", "Total page snapshots written", m.SnapshotsSaved.Load()},
		{"postpulse_comments_dropped_total", "Comments removed by cleaning", m.CommentsDropped.Load()},
		{"postpulse_comments_labeled_total", "Comments given a sentiment label", m.CommentsLabeled.Load()},
		{"postpulse_records_stored_total", "Rows written to storage", m.RecordsStored.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// StartServer serves the metrics endpoint until ctx is cancelled.
func (m *Metrics) StartServer(ctx context.Context, port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, m)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	m.logger.Info("metrics server starting", "addr", srv.Addr, "path", path)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("metrics server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return nil
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"posts_crawled":     m.PostsCrawled.Load(),
		"posts_failed":      m.PostsFailed.Load(),
		"comments_found":    m.CommentsFound.Load(),
		"scroll_iterations": m.ScrollIterations.Load(),
		"scroll_cap_hits":   m.ScrollCapHits.Load(),
		"selector_misses":   m.SelectorMisses.Load(),
		"snapshots_saved":   m.SnapshotsSaved.Load(),
		"comments_dropped":  m.CommentsDropped.Load(),
		"comments_labeled":  m.CommentsLabeled.Load(),
		"records_stored":    m.RecordsStored.Load(),
	}
}
