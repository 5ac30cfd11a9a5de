package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/IshaanNene/PostPulse/internal/automation"
	"github.com/IshaanNene/PostPulse/internal/config"
	"github.com/IshaanNene/PostPulse/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

// testSelectors uses short names so fake documents can be keyed by selector.
func testSelectors() Selectors {
	return Selectors{
		Reactions:    []types.Selector{types.CSS("reactions"), types.CSS("reactions-alt")},
		Comments:     []types.Selector{types.CSS("comments"), types.CSS("comments-vi")},
		Shares:       []types.Selector{types.CSS("shares")},
		Content:      []types.Selector{types.CSS("content"), types.CSS("content-alt")},
		Author:       []types.Selector{types.CSS("author")},
		SortToggle:   []types.Selector{types.CSS("sort")},
		RevealAll:    []types.Selector{types.CSS("reveal")},
		Container:    []types.Selector{types.CSS("container")},
		CommentBody:  []types.Selector{types.CSS("comment"), types.CSS("comment-alt")},
		CommentEmoji: types.CSS("img"),
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Crawler.PaceMin = 7 * time.Second
	cfg.Crawler.PaceMax = 7 * time.Second
	return cfg
}

// fakeClock records pauses instead of sleeping.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) count(d time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

// fakeElement is a scripted page node.
type fakeElement struct {
	texts    []string
	hidden   bool
	textErr  error
	panics   bool
	attrs    map[string]string
	children map[string][]*fakeElement

	heights     []int
	heightReads int
	scrolls     []int
	clicks      int
}

func textEl(texts ...string) *fakeElement { return &fakeElement{texts: texts} }

func (e *fakeElement) Visible() (bool, error) { return !e.hidden, nil }

// Text returns the scripted texts in order, repeating the last one.
func (e *fakeElement) Text() (string, error) {
	if e.panics {
		panic("detached node")
	}
	if e.textErr != nil {
		return "", e.textErr
	}
	if len(e.texts) == 0 {
		return "", nil
	}
	t := e.texts[0]
	if len(e.texts) > 1 {
		e.texts = e.texts[1:]
	}
	return t, nil
}

func (e *fakeElement) Click() error {
	e.clicks++
	return nil
}

func (e *fakeElement) Attribute(name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) FindAll(sel types.Selector) ([]automation.Element, error) {
	return toElements(e.children[sel.String()]), nil
}

// ScrollHeight returns the scripted heights in order, repeating the last one.
func (e *fakeElement) ScrollHeight() (int, error) {
	e.heightReads++
	if len(e.heights) == 0 {
		return 0, nil
	}
	h := e.heights[0]
	if len(e.heights) > 1 {
		e.heights = e.heights[1:]
	}
	return h, nil
}

func (e *fakeElement) ScrollBy(dy int) error {
	e.scrolls = append(e.scrolls, dy)
	return nil
}

func toElements(els []*fakeElement) []automation.Element {
	out := make([]automation.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

// fakeDoc maps selector strings to the elements they match.
type fakeDoc map[string][]*fakeElement

// fakePage serves a fakeDoc per URL; the "" entry is the default.
type fakePage struct {
	docs      map[string]fakeDoc
	navErrs   map[string]error
	settleErr error
	html      string

	current   fakeDoc
	navigated []string
}

func newFakePage(doc fakeDoc) *fakePage {
	return &fakePage{docs: map[string]fakeDoc{"": doc}, current: doc}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	if err := p.navErrs[url]; err != nil {
		return err
	}
	if doc, ok := p.docs[url]; ok {
		p.current = doc
	} else {
		p.current = p.docs[""]
	}
	return nil
}

func (p *fakePage) WaitSettled(ctx context.Context) error { return p.settleErr }

func (p *fakePage) Find(ctx context.Context, sel types.Selector, wait time.Duration) (automation.Element, error) {
	els := p.current[sel.String()]
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", automation.ErrElementNotFound, sel)
	}
	return els[0], nil
}

func (p *fakePage) FindAll(ctx context.Context, sel types.Selector) ([]automation.Element, error) {
	return toElements(p.current[sel.String()]), nil
}

func (p *fakePage) HTML(ctx context.Context) (string, error) {
	if p.html == "" {
		return "", errors.New("no html")
	}
	return p.html, nil
}

// postDoc builds a complete post with n comments.
func postDoc(author string, n int) fakeDoc {
	comments := make([]*fakeElement, n)
	for i := range comments {
		comments[i] = textEl(fmt.Sprintf("comment %d by reader", i+1))
	}
	return fakeDoc{
		"content":   {textEl("  Body of the post  ")},
		"author":    {textEl(author)},
		"reactions": {textEl("1.2K")},
		"comments":  {textEl(fmt.Sprintf("%d comments", n))},
		"shares":    {textEl("7 shares")},
		"container": {{heights: []int{100, 250, 250, 250}}},
		"comment":   comments,
	}
}

type fakeSession struct {
	page   automation.Page
	closed int
}

func (s *fakeSession) Page() automation.Page { return s.page }

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}
