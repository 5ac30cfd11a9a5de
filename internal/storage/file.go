package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// fileStorage holds what every file-based backend shares: an output
// directory with one file per table.
type fileStorage struct {
	dir    string
	ext    string
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

func newFileStorage(dir, ext, component string, logger *slog.Logger) (*fileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &fileStorage{
		dir:    dir,
		ext:    ext,
		logger: logger.With("component", component),
	}, nil
}

// PathFor returns the file a table is written to.
func (s *fileStorage) PathFor(table string) string {
	return filepath.Join(s.dir, table+s.ext)
}

// write creates the table's file and hands it to fn.
func (s *fileStorage) write(backend string, table Table, fn func(f *os.File) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.PathFor(table.Name)
	f, err := os.Create(path)
	if err != nil {
		return &types.StorageError{Backend: backend, Err: fmt.Errorf("create %s: %w", path, err)}
	}
	if err := fn(f); err != nil {
		f.Close()
		return &types.StorageError{Backend: backend, Err: fmt.Errorf("write %s: %w", path, err)}
	}
	if err := f.Close(); err != nil {
		return &types.StorageError{Backend: backend, Err: err}
	}

	s.count += len(table.Records)
	s.logger.Info("table written", "table", table.Name, "path", path, "rows", len(table.Records))
	return nil
}

// --- CSV Storage ---

// CSVStorage writes each table as a CSV file with a header row.
type CSVStorage struct {
	*fileStorage
}

// NewCSVStorage creates a CSV storage in dir.
func NewCSVStorage(dir string, logger *slog.Logger) (*CSVStorage, error) {
	fs, err := newFileStorage(dir, ".csv", "csv_storage", logger)
	if err != nil {
		return nil, err
	}
	return &CSVStorage{fileStorage: fs}, nil
}

func (s *CSVStorage) Name() string { return "csv" }

func (s *CSVStorage) Store(_ context.Context, table Table) error {
	return s.write(s.Name(), table, func(f *os.File) error {
		w := csv.NewWriter(f)
		if err := w.Write(table.Columns); err != nil {
			return fmt.Errorf("write CSV header: %w", err)
		}
		for _, rec := range table.Records {
			if err := w.Write(rec.Values()); err != nil {
				return fmt.Errorf("write CSV row: %w", err)
			}
		}
		w.Flush()
		return w.Error()
	})
}

func (s *CSVStorage) Close() error {
	s.logger.Info("CSV storage closed", "dir", s.dir, "rows", s.count)
	return nil
}

// --- JSON Storage ---

// JSONStorage writes each table as an indented JSON array.
type JSONStorage struct {
	*fileStorage
}

// NewJSONStorage creates a JSON storage in dir.
func NewJSONStorage(dir string, logger *slog.Logger) (*JSONStorage, error) {
	fs, err := newFileStorage(dir, ".json", "json_storage", logger)
	if err != nil {
		return nil, err
	}
	return &JSONStorage{fileStorage: fs}, nil
}

func (s *JSONStorage) Name() string { return "json" }

func (s *JSONStorage) Store(_ context.Context, table Table) error {
	return s.write(s.Name(), table, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(table.Records)
	})
}

func (s *JSONStorage) Close() error {
	s.logger.Info("JSON storage closed", "dir", s.dir, "rows", s.count)
	return nil
}

// --- JSONL Storage ---

// JSONLStorage writes each table as newline-delimited JSON.
type JSONLStorage struct {
	*fileStorage
}

// NewJSONLStorage creates a JSONL storage in dir.
func NewJSONLStorage(dir string, logger *slog.Logger) (*JSONLStorage, error) {
	fs, err := newFileStorage(dir, ".jsonl", "jsonl_storage", logger)
	if err != nil {
		return nil, err
	}
	return &JSONLStorage{fileStorage: fs}, nil
}

func (s *JSONLStorage) Name() string { return "jsonl" }

func (s *JSONLStorage) Store(_ context.Context, table Table) error {
	return s.write(s.Name(), table, func(f *os.File) error {
		enc := json.NewEncoder(f)
		for _, rec := range table.Records {
			if err := enc.Encode(rec); err != nil {
				return fmt.Errorf("encode JSONL: %w", err)
			}
		}
		return nil
	})
}

func (s *JSONLStorage) Close() error {
	s.logger.Info("JSONL storage closed", "dir", s.dir, "rows", s.count)
	return nil
}

// NewFileStorage creates the appropriate file-based storage by type.
func NewFileStorage(storageType, outputDir string, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "json":
		return NewJSONStorage(outputDir, logger)
	case "jsonl":
		return NewJSONLStorage(outputDir, logger)
	case "csv":
		return NewCSVStorage(outputDir, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
