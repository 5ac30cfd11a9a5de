// Package automation abstracts the browser page the crawler drives so the
// extraction logic can run against a live Chromium tab or a saved snapshot.
package automation

import (
	"context"
	"errors"
	"time"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// ErrElementNotFound is returned when no element matches a selector within
// the allowed wait. Callers treat it as "feature absent".
var ErrElementNotFound = errors.New("element not found")

// Page is a loaded document that can be queried and interacted with.
type Page interface {
	// Navigate loads url and returns once the document has loaded.
	Navigate(ctx context.Context, url string) error

	// WaitSettled blocks until network and DOM activity have settled.
	WaitSettled(ctx context.Context) error

	// Find returns the first element matching sel, polling for up to wait.
	// A zero wait checks once.
	Find(ctx context.Context, sel types.Selector, wait time.Duration) (Element, error)

	// FindAll returns every element currently matching sel.
	FindAll(ctx context.Context, sel types.Selector) ([]Element, error)

	// HTML returns the current serialized document.
	HTML(ctx context.Context) (string, error)
}

// Element is a single node of a Page.
type Element interface {
	Visible() (bool, error)
	Text() (string, error)
	Click() error
	Attribute(name string) (string, bool, error)
	FindAll(sel types.Selector) ([]Element, error)
	ScrollHeight() (int, error)
	ScrollBy(dy int) error
}

// FirstVisible returns the first element, in candidate order, that exists and
// is visible. Lookup errors are treated as a miss for that candidate.
func FirstVisible(ctx context.Context, page Page, wait time.Duration, candidates ...types.Selector) (Element, types.Selector, bool) {
	for _, sel := range candidates {
		el, err := page.Find(ctx, sel, wait)
		if err != nil {
			continue
		}
		visible, err := el.Visible()
		if err != nil || !visible {
			continue
		}
		return el, sel, true
	}
	return nil, types.Selector{}, false
}
