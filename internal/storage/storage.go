package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/observability"
)

// Table names used for files and collections.
const (
	TablePosts           = "posts"
	TableComments        = "comments"
	TableCleanPosts      = "posts_clean"
	TableCleanComments   = "comments_clean"
	TableLabeledComments = "comments_labeled"
)

// Record is a row that knows its own column layout.
type Record interface {
	Columns() []string
	Values() []string
}

// Table is a named, homogeneous set of records.
type Table struct {
	Name    string
	Columns []string
	Records []Record
}

// NewTable builds a table from typed records. Columns come from the zero
// value so empty tables still carry a header.
func NewTable[T Record](name string, recs []T) Table {
	var zero T
	t := Table{
		Name:    name,
		Columns: zero.Columns(),
		Records: make([]Record, len(recs)),
	}
	for i, r := range recs {
		t.Records[i] = r
	}
	return t
}

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a whole table, replacing any previous version of it.
	Store(ctx context.Context, table Table) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the backends listed in cfg.Type. Several backends are wrapped
// in a MultiStorage.
func New(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	storageTypes := cfg.Types()
	if len(storageTypes) == 0 {
		return nil, fmt.Errorf("no storage type configured")
	}

	backends := make([]Storage, 0, len(storageTypes))
	for _, t := range storageTypes {
		s, err := newBackend(ctx, t, cfg, logger)
		if err != nil {
			for _, b := range backends {
				_ = b.Close()
			}
			return nil, err
		}
		backends = append(backends, s)
	}
	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewMultiStorage(backends, logger), nil
}

func newBackend(ctx context.Context, storageType string, cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	switch storageType {
	case "csv", "json", "jsonl":
		return NewFileStorage(storageType, cfg.OutputPath, logger)
	case "mongodb":
		return NewMongoStorage(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// StoreTables writes every table to s, stopping at the first failure.
func StoreTables(ctx context.Context, s Storage, metrics *observability.Metrics, tables ...Table) error {
	for _, t := range tables {
		if err := s.Store(ctx, t); err != nil {
			return err
		}
		if metrics != nil {
			metrics.RecordsStored.Add(int64(len(t.Records)))
		}
	}
	return nil
}
