package dashboard

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/storage"
	"github.com/IshaanNene/PostPulse/internal/types"
)

// Data is what the dashboard renders: cleaned posts and labelled comments.
type Data struct {
	Posts    []types.CleanPost
	Comments []types.LabeledComment
}

// Load reads the output of a previous run from dir. Cleaned posts are
// preferred; raw posts are used when no cleaned table exists.
func Load(dir string) (*Data, error) {
	data := &Data{}

	if path, err := storage.FindTable(dir, storage.TableCleanPosts); err == nil {
		if data.Posts, err = storage.ReadCleanPosts(path); err != nil {
			return nil, err
		}
	} else if path, err := storage.FindTable(dir, storage.TablePosts); err == nil {
		posts, err := storage.ReadPosts(path)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			data.Posts = append(data.Posts, types.CleanPost{
				PostRecord:      p,
				TotalEngagement: p.ReactionsCount + p.SharesCount + p.CommentsCount,
			})
		}
	}

	path, err := storage.FindTable(dir, storage.TableLabeledComments)
	if err != nil {
		return nil, fmt.Errorf("no labelled comments, run analyze first: %w", err)
	}
	if data.Comments, err = storage.ReadLabeledComments(path); err != nil {
		return nil, err
	}
	return data, nil
}

// FilterBySentiment returns the non-blank comments whose label matches
// sentiment. An empty sentiment or "all" selects every comment.
func FilterBySentiment(comments []types.LabeledComment, sentiment string) []types.LabeledComment {
	sentiment = strings.TrimSpace(sentiment)
	all := sentiment == "" || strings.EqualFold(sentiment, "all")

	out := make([]types.LabeledComment, 0, len(comments))
	for _, c := range comments {
		if strings.TrimSpace(c.Comment) == "" {
			continue
		}
		if all || strings.EqualFold(c.Sentiment, sentiment) {
			out = append(out, c)
		}
	}
	return out
}

// labelCount is one slice of the sentiment distribution.
type labelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// sentimentCounts counts labels in order of first appearance.
func sentimentCounts(comments []types.LabeledComment) []labelCount {
	var counts []labelCount
	index := make(map[string]int)
	for _, c := range comments {
		if strings.TrimSpace(c.Comment) == "" {
			continue
		}
		i, ok := index[c.Sentiment]
		if !ok {
			i = len(counts)
			index[c.Sentiment] = i
			counts = append(counts, labelCount{Label: c.Sentiment})
		}
		counts[i].Count++
	}
	return counts
}

// Dashboard serves charts and the comment table for one result set.
type Dashboard struct {
	port    int
	data    *Data
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates a dashboard over data. metrics may be nil.
func New(cfg config.DashboardConfig, data *Data, metrics *observability.Metrics, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		port:    cfg.Port,
		data:    data,
		metrics: metrics,
		logger:  logger.With("component", "dashboard"),
	}
}

// Handler returns the dashboard routes.
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.handleCharts)
	mux.HandleFunc("/comments", d.handleComments)
	mux.HandleFunc("/export.csv", d.handleExport)
	mux.HandleFunc("/api/stats", d.handleAPIStats)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	if d.metrics != nil {
		mux.Handle("/metrics", d.metrics)
	}
	return mux
}

// Serve listens on the configured port until ctx is cancelled.
func (d *Dashboard) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", d.port),
		Handler:           d.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	d.logger.Info("dashboard starting", "addr", srv.Addr, "posts", len(d.data.Posts), "comments", len(d.data.Comments))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (d *Dashboard) handleCharts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderCharts(w, d.data, r.URL.Query().Get("sentiment")); err != nil {
		d.logger.Error("render charts", "error", err)
	}
}

func (d *Dashboard) handleComments(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("sentiment")
	view := commentsView{
		Selected: selected,
		Labels:   sentimentCounts(d.data.Comments),
		Rows:     FilterBySentiment(d.data.Comments, selected),
		Total:    len(FilterBySentiment(d.data.Comments, "")),
	}
	if view.Selected == "" {
		view.Selected = "all"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := commentsTemplate.Execute(w, view); err != nil {
		d.logger.Error("render comments", "error", err)
	}
}

func (d *Dashboard) handleExport(w http.ResponseWriter, r *http.Request) {
	selected := r.URL.Query().Get("sentiment")
	rows := FilterBySentiment(d.data.Comments, selected)

	name := "all"
	if s := strings.TrimSpace(selected); s != "" {
		name = strings.ReplaceAll(strings.ToLower(s), " ", "_")
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "sentiment_results_"+name+".csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write(types.LabeledComment{}.Columns())
	for _, c := range rows {
		_ = cw.Write(c.Values())
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		d.logger.Error("export csv", "error", err)
	}
}

func (d *Dashboard) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	var reactions, shares, comments, crawled, failed int
	for _, p := range d.data.Posts {
		reactions += p.ReactionsCount
		shares += p.SharesCount
		comments += p.CommentsCount
		crawled += p.TotalCommentsCrawled
		if p.Failed() {
			failed++
		}
	}

	stats := map[string]any{
		"timestamp":        time.Now().Format(time.RFC3339),
		"posts":            len(d.data.Posts),
		"posts_failed":     failed,
		"comments":         len(FilterBySentiment(d.data.Comments, "")),
		"reactions_total":  reactions,
		"shares_total":     shares,
		"comments_total":   comments,
		"comments_crawled": crawled,
		"sentiment":        sentimentCounts(d.data.Comments),
	}
	if d.metrics != nil {
		stats["metrics"] = d.metrics.Snapshot()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(stats)
}
