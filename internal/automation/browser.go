package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// RodPage adapts a Rod page to the Page interface.
type RodPage struct {
	page           *rod.Page
	elementTimeout time.Duration
	logger         *slog.Logger
}

// NewRodPage wraps a Rod page. elementTimeout bounds every element read.
func NewRodPage(page *rod.Page, elementTimeout time.Duration, logger *slog.Logger) *RodPage {
	return &RodPage{
		page:           page,
		elementTimeout: elementTimeout,
		logger:         logger.With("component", "rod_page"),
	}
}

// Navigate loads url and waits for the load event.
func (p *RodPage) Navigate(ctx context.Context, url string) error {
	pg := p.page.Context(ctx)
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// WaitSettled waits for requests to go idle and the DOM to stop changing.
func (p *RodPage) WaitSettled(ctx context.Context) error {
	return p.page.Context(ctx).WaitStable(300 * time.Millisecond)
}

// Find locates the first element matching sel.
func (p *RodPage) Find(ctx context.Context, sel types.Selector, wait time.Duration) (Element, error) {
	if wait <= 0 {
		return p.has(ctx, sel)
	}

	wctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	pg := p.page.Context(wctx)

	var (
		el  *rod.Element
		err error
	)
	switch {
	case sel.IsXPath():
		el, err = pg.ElementX(sel.XPath)
	case sel.Text != "":
		el, err = pg.ElementR(sel.CSS, sel.JSRegex())
	default:
		el, err = pg.Element(sel.CSS)
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s", ErrElementNotFound, sel)
		}
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	// Re-bind to the caller's context: wctx is cancelled on return.
	return p.wrap(el.Context(ctx)), nil
}

// has checks once, without waiting.
func (p *RodPage) has(ctx context.Context, sel types.Selector) (Element, error) {
	pg := p.page.Context(ctx)

	var (
		found bool
		el    *rod.Element
		err   error
	)
	switch {
	case sel.IsXPath():
		found, el, err = pg.HasX(sel.XPath)
	case sel.Text != "":
		found, el, err = pg.HasR(sel.CSS, sel.JSRegex())
	default:
		found, el, err = pg.Has(sel.CSS)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", sel, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, sel)
	}
	return p.wrap(el), nil
}

// FindAll returns all elements matching sel.
func (p *RodPage) FindAll(ctx context.Context, sel types.Selector) ([]Element, error) {
	pg := p.page.Context(ctx)

	var (
		els rod.Elements
		err error
	)
	if sel.IsXPath() {
		els, err = pg.ElementsX(sel.XPath)
	} else {
		els, err = pg.Elements(sel.CSS)
	}
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", sel, err)
	}
	return p.wrapAll(els, sel)
}

// HTML returns the serialized document.
func (p *RodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *RodPage) wrap(el *rod.Element) *rodElement {
	return &rodElement{el: el, page: p}
}

func (p *RodPage) wrapAll(els rod.Elements, sel types.Selector) ([]Element, error) {
	re, err := sel.TextPattern()
	if err != nil {
		return nil, fmt.Errorf("text pattern %q: %w", sel.Text, err)
	}

	out := make([]Element, 0, len(els))
	for _, el := range els {
		wrapped := p.wrap(el)
		if re != nil && !wrapped.matches(re) {
			continue
		}
		out = append(out, wrapped)
	}
	return out, nil
}

// rodElement adapts a Rod element to the Element interface.
type rodElement struct {
	el   *rod.Element
	page *RodPage
}

func (e *rodElement) bounded() *rod.Element {
	return e.el.Timeout(e.page.elementTimeout)
}

func (e *rodElement) matches(re *regexp.Regexp) bool {
	text, err := e.Text()
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

func (e *rodElement) Visible() (bool, error) {
	el := e.bounded()
	defer el.CancelTimeout()
	return el.Visible()
}

func (e *rodElement) Text() (string, error) {
	el := e.bounded()
	defer el.CancelTimeout()
	return el.Text()
}

func (e *rodElement) Click() error {
	el := e.bounded()
	defer el.CancelTimeout()
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Attribute(name string) (string, bool, error) {
	el := e.bounded()
	defer el.CancelTimeout()
	v, err := el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}

func (e *rodElement) FindAll(sel types.Selector) ([]Element, error) {
	var (
		els rod.Elements
		err error
	)
	if sel.IsXPath() {
		els, err = e.el.ElementsX(sel.XPath)
	} else {
		els, err = e.el.Elements(sel.CSS)
	}
	if err != nil {
		return nil, fmt.Errorf("find all %s: %w", sel, err)
	}
	return e.page.wrapAll(els, sel)
}

func (e *rodElement) ScrollHeight() (int, error) {
	el := e.bounded()
	defer el.CancelTimeout()
	res, err := el.Eval(`() => this.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func (e *rodElement) ScrollBy(dy int) error {
	el := e.bounded()
	defer el.CancelTimeout()
	_, err := el.Eval(`(dy) => this.scrollBy(0, dy)`, dy)
	return err
}
