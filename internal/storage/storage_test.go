package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
	"github.com/IshaanNene/PostPulse/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testPosts = []types.PostRecord{
	{
		URL: "https://fb.example/page/posts/1", Author: "Trang A", Content: "Xin chào, \"mọi người\"\ndòng 2",
		ReactionsCount: 2300, CommentsCount: 1234, SharesCount: 56, TotalCommentsCrawled: 2,
	},
	{URL: "https://fb.example/page/posts/2", Error: "navigate: timeout"},
}

var testComments = []types.CommentRecord{
	{URL: "https://fb.example/page/posts/1", CommentText: "Tin tốt quá 😍"},
	{URL: "https://fb.example/page/posts/1", CommentText: "ok, thanks"},
}

func TestNewTableHeaderWithoutRecords(t *testing.T) {
	tbl := NewTable[types.CommentRecord](TableComments, nil)
	if strings.Join(tbl.Columns, ",") != "url,comment_text" {
		t.Errorf("unexpected columns %v", tbl.Columns)
	}
	if len(tbl.Records) != 0 {
		t.Errorf("expected no records")
	}
}

func TestFileStorageRoundTrip(t *testing.T) {
	for _, typ := range []string{"csv", "json", "jsonl"} {
		t.Run(typ, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewFileStorage(typ, dir, testLogger)
			if err != nil {
				t.Fatal(err)
			}
			ctx := context.Background()
			if err := store.Store(ctx, NewTable(TablePosts, testPosts)); err != nil {
				t.Fatal(err)
			}
			if err := store.Store(ctx, NewTable(TableComments, testComments)); err != nil {
				t.Fatal(err)
			}
			if err := store.Close(); err != nil {
				t.Fatal(err)
			}

			path, err := FindTable(dir, TablePosts)
			if err != nil {
				t.Fatal(err)
			}
			if filepath.Ext(path) != "."+typ {
				t.Errorf("expected .%s file, got %s", typ, path)
			}
			posts, err := ReadPosts(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(posts) != 2 || posts[0] != testPosts[0] || posts[1] != testPosts[1] {
				t.Errorf("posts mismatch:\n got %+v\nwant %+v", posts, testPosts)
			}

			path, err = FindTable(dir, TableComments)
			if err != nil {
				t.Fatal(err)
			}
			comments, err := ReadComments(path)
			if err != nil {
				t.Fatal(err)
			}
			if len(comments) != 2 || comments[0] != testComments[0] {
				t.Errorf("comments mismatch: %+v", comments)
			}
		})
	}
}

func TestStoreReplacesTable(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCSVStorage(dir, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	_ = store.Store(ctx, NewTable(TableComments, testComments))
	_ = store.Store(ctx, NewTable(TableComments, testComments[:1]))

	comments, err := ReadComments(store.PathFor(TableComments))
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 1 {
		t.Errorf("expected table to be replaced, got %d rows", len(comments))
	}
}

func TestReadLabeledAndCleanTables(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewCSVStorage(dir, testLogger)
	ctx := context.Background()

	clean := []types.CleanPost{{PostRecord: testPosts[0], TotalEngagement: 3590}}
	labeled := []types.LabeledComment{{URL: "u", Comment: "Tin tốt quá", Sentiment: "Tích cực"}}
	if err := store.Store(ctx, NewTable(TableCleanPosts, clean)); err != nil {
		t.Fatal(err)
	}
	if err := store.Store(ctx, NewTable(TableLabeledComments, labeled)); err != nil {
		t.Fatal(err)
	}

	gotPosts, err := ReadCleanPosts(store.PathFor(TableCleanPosts))
	if err != nil {
		t.Fatal(err)
	}
	if len(gotPosts) != 1 || gotPosts[0].TotalEngagement != 3590 || gotPosts[0].Author != "Trang A" {
		t.Errorf("unexpected clean posts %+v", gotPosts)
	}
	gotLabeled, err := ReadLabeledComments(store.PathFor(TableLabeledComments))
	if err != nil {
		t.Fatal(err)
	}
	if len(gotLabeled) != 1 || gotLabeled[0] != labeled[0] {
		t.Errorf("unexpected labeled comments %+v", gotLabeled)
	}
}

func TestReadCSVWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.csv")
	data := "\uFEFFurl,comment\nhttps://x/p/posts/1,hay quá\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadCleanComments(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].URL != "https://x/p/posts/1" || got[0].Comment != "hay quá" {
		t.Errorf("unexpected rows %+v", got)
	}
}

func TestReadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "posts.csv")
	_ = os.WriteFile(bad, []byte("url,reactions_count\nu,many\n"), 0o644)
	if _, err := ReadPosts(bad); err == nil {
		t.Error("expected error for non-numeric count")
	}

	txt := filepath.Join(dir, "posts.txt")
	_ = os.WriteFile(txt, []byte("x"), 0o644)
	if _, err := ReadPosts(txt); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}

	if _, err := FindTable(dir, TableLabeledComments); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

type recordingStorage struct {
	name   string
	tables []string
	err    error
	closed bool
}

func (r *recordingStorage) Store(_ context.Context, t Table) error {
	r.tables = append(r.tables, t.Name)
	return r.err
}
func (r *recordingStorage) Close() error { r.closed = true; return nil }
func (r *recordingStorage) Name() string { return r.name }

func TestMultiStorage(t *testing.T) {
	a := &recordingStorage{name: "a", err: errors.New("disk full")}
	b := &recordingStorage{name: "b"}
	m := NewMultiStorage([]Storage{a, b}, testLogger)
	if m.Name() != "a+b" {
		t.Errorf("unexpected name %q", m.Name())
	}

	err := m.Store(context.Background(), NewTable(TablePosts, testPosts))
	if err == nil || err.Error() != "disk full" {
		t.Errorf("expected first backend error, got %v", err)
	}
	if len(b.tables) != 1 {
		t.Error("second backend should still receive the table")
	}
	if err := m.Close(); err != nil || !a.closed || !b.closed {
		t.Error("expected all backends closed")
	}
}

func TestNewFansOutToListedBackends(t *testing.T) {
	cfg := config.DefaultConfig().Storage
	cfg.Type = "csv, jsonl"
	cfg.OutputPath = t.TempDir()

	s, err := New(context.Background(), cfg, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MultiStorage); !ok || s.Name() != "csv+jsonl" {
		t.Fatalf("expected csv+jsonl multi storage, got %T %q", s, s.Name())
	}
	if err := s.Store(context.Background(), NewTable(TablePosts, testPosts)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	for _, ext := range []string{".csv", ".jsonl"} {
		posts, err := ReadPosts(filepath.Join(cfg.OutputPath, TablePosts+ext))
		if err != nil {
			t.Fatalf("%s: %v", ext, err)
		}
		if len(posts) != len(testPosts) {
			t.Errorf("%s: expected %d posts, got %d", ext, len(testPosts), len(posts))
		}
	}

	cfg.Type = "csv,parquet"
	if _, err := New(context.Background(), cfg, testLogger); err == nil {
		t.Error("expected error for unsupported backend in list")
	}
}

func TestNewUnsupported(t *testing.T) {
	cfg := config.DefaultConfig().Storage
	cfg.Type = "parquet"
	if _, err := New(context.Background(), cfg, testLogger); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestMongoStorage(t *testing.T) {
	uri := os.Getenv("POSTPULSE_TEST_MONGO_URI")
	if testing.Short() || uri == "" {
		t.Skip("set POSTPULSE_TEST_MONGO_URI to run")
	}
	ctx := context.Background()
	store, err := NewMongoStorage(ctx, uri, "postpulse_test", testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if err := store.Store(ctx, NewTable(TablePosts, testPosts)); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSnapshotStore(dir, testLogger)
	if err != nil {
		t.Fatal(err)
	}

	const url = "https://fb.example/page/posts/1"
	html := "<html><body><p>" + strings.Repeat("bình luận ", 200) + "</p></body></html>"
	path, err := s.Save(url, html)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != SnapshotName(url) || !strings.HasSuffix(path, ".html.br") {
		t.Errorf("unexpected snapshot path %s", path)
	}
	if len(SnapshotName(url)) != 16+len(".html.br") {
		t.Errorf("unexpected snapshot name %s", SnapshotName(url))
	}
	if info, _ := os.Stat(path); info.Size() >= int64(len(html)) {
		t.Errorf("expected compressed file, got %d bytes for %d", info.Size(), len(html))
	}

	rc, err := s.Open(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != html {
		t.Error("decompressed snapshot differs")
	}

	if _, err := s.Open(context.Background(), "https://fb.example/page/posts/404"); err == nil {
		t.Error("expected error for missing snapshot")
	}
	if _, err := s.Save(url, "  "); !errors.Is(err, types.ErrEmptySnapshot) {
		t.Errorf("expected ErrEmptySnapshot, got %v", err)
	}
}

func TestStoreTablesCountsRecords(t *testing.T) {
	rec := &recordingStorage{name: "r"}
	metrics := observability.NewMetrics(testLogger)
	err := StoreTables(context.Background(), rec, metrics,
		NewTable(TablePosts, testPosts), NewTable(TableComments, testComments))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(rec.tables, ",") != "posts,comments" {
		t.Errorf("unexpected tables %v", rec.tables)
	}
	if metrics.RecordsStored.Load() != 4 {
		t.Errorf("expected 4 stored records, got %d", metrics.RecordsStored.Load())
	}
}
