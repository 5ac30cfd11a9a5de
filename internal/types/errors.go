package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrNoLinks       = errors.New("no post links provided")
	ErrInvalidLink   = errors.New("invalid post link")
	ErrEmptySnapshot = errors.New("empty page snapshot")
)

// ValidationError rejects a link list before any browser work starts.
type ValidationError struct {
	Link  string
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	if errors.Is(e.Err, ErrNoLinks) {
		return fmt.Sprintf("validation failed: %v", e.Err)
	}
	return fmt.Sprintf("validation failed for link #%d %q: %v", e.Index+1, e.Link, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// LaunchError means the browser, its context or its page could not be created.
type LaunchError struct {
	Stage string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("browser launch failed (%s): %v", e.Stage, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// PostCrawlError wraps whatever went wrong while processing a single post.
type PostCrawlError struct {
	URL string
	Err error
}

func (e *PostCrawlError) Error() string {
	return fmt.Sprintf("crawl error for %s: %v", e.URL, e.Err)
}

func (e *PostCrawlError) Unwrap() error { return e.Err }

// StorageError wraps errors that occur during storage/export.
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PipelineError wraps errors that occur in the cleaning pipeline.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline error at stage %q: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
