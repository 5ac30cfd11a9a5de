package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/PostPulse/internal/types"
)

const snapshotExt = ".html.br"

// SnapshotStore keeps brotli-compressed HTML of expanded post pages,
// one file per URL.
type SnapshotStore struct {
	dir    string
	logger *slog.Logger
}

// NewSnapshotStore creates dir if needed.
func NewSnapshotStore(dir string, logger *slog.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &SnapshotStore{
		dir:    dir,
		logger: logger.With("component", "snapshot_store"),
	}, nil
}

// SnapshotName is the file name used for url.
func SnapshotName(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16] + snapshotExt
}

// Path returns where the snapshot for url lives.
func (s *SnapshotStore) Path(url string) string {
	return filepath.Join(s.dir, SnapshotName(url))
}

// Save compresses html to the url's snapshot file and returns its path.
func (s *SnapshotStore) Save(url, html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", types.ErrEmptySnapshot
	}

	path := s.Path(url)
	f, err := os.Create(path)
	if err != nil {
		return "", &types.StorageError{Backend: "snapshot", Err: err}
	}

	w := brotli.NewWriterLevel(f, brotli.DefaultCompression)
	if _, err := io.WriteString(w, html); err != nil {
		f.Close()
		return "", &types.StorageError{Backend: "snapshot", Err: fmt.Errorf("compress %s: %w", path, err)}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return "", &types.StorageError{Backend: "snapshot", Err: err}
	}
	if err := f.Close(); err != nil {
		return "", &types.StorageError{Backend: "snapshot", Err: err}
	}

	s.logger.Debug("snapshot saved", "url", url, "path", path, "bytes", len(html))
	return path, nil
}

// Open returns the decompressed HTML for url. It has the shape of
// automation.DocumentSource so saved pages can be replayed.
func (s *SnapshotStore) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path(url))
	if err != nil {
		return nil, fmt.Errorf("open snapshot for %s: %w", url, err)
	}
	return readCloser{Reader: brotli.NewReader(f), Closer: f}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
