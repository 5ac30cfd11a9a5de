package pipeline

import (
	"log/slog"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// Middleware processes a record and returns the (possibly modified) record.
// Return nil to drop the record from the pipeline.
type Middleware[T any] interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a record. Return nil to drop it.
	Process(rec *T) (*T, error)
}

// Pipeline chains middleware processors together.
type Pipeline[T any] struct {
	middlewares []Middleware[T]
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New[T any](logger *slog.Logger) *Pipeline[T] {
	return &Pipeline[T]{
		logger: logger.With("component", "pipeline"),
	}
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline[T]) Use(mw Middleware[T]) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the record through all middleware in order.
func (p *Pipeline[T]) Process(rec *T) (*T, error) {
	current := rec

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{Stage: mw.Name(), Err: err}
		}
		if result == nil {
			p.logger.Debug("record dropped", "stage", mw.Name())
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Run processes every record in order and returns the survivors along with
// the number dropped. It stops at the first middleware error.
func (p *Pipeline[T]) Run(recs []T) ([]T, int, error) {
	out := make([]T, 0, len(recs))
	dropped := 0
	for i := range recs {
		rec := recs[i]
		result, err := p.Process(&rec)
		if err != nil {
			return nil, dropped, err
		}
		if result == nil {
			dropped++
			continue
		}
		out = append(out, *result)
	}
	return out, dropped, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline[T]) Len() int {
	return len(p.middlewares)
}
