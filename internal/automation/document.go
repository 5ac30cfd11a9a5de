package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// DocumentSource opens the saved HTML for a URL.
type DocumentSource func(ctx context.Context, url string) (io.ReadCloser, error)

// StaticSource serves the same markup for every URL.
func StaticSource(markup string) DocumentSource {
	return func(context.Context, string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(markup)), nil
	}
}

// DocumentPage is a Page over saved HTML. It cannot run scripts: clicks are
// no-ops and the scroll height never changes, so comment expansion stops
// after its first two observations.
type DocumentPage struct {
	source DocumentSource
	doc    *goquery.Document
	url    string
	logger *slog.Logger
}

// NewDocumentPage creates a page that loads documents from source.
func NewDocumentPage(source DocumentSource, logger *slog.Logger) *DocumentPage {
	return &DocumentPage{
		source: source,
		logger: logger.With("component", "document_page"),
	}
}

// Navigate parses the document saved for url.
func (p *DocumentPage) Navigate(ctx context.Context, url string) error {
	rc, err := p.source(ctx, url)
	if err != nil {
		return fmt.Errorf("open snapshot for %s: %w", url, err)
	}
	defer rc.Close()

	doc, err := goquery.NewDocumentFromReader(rc)
	if err != nil {
		return fmt.Errorf("parse snapshot for %s: %w", url, err)
	}

	p.doc = doc
	p.url = url
	p.logger.Debug("document loaded", "url", url)
	return nil
}

// WaitSettled returns immediately; a parsed document is always settled.
func (p *DocumentPage) WaitSettled(ctx context.Context) error {
	return ctx.Err()
}

func (p *DocumentPage) Find(ctx context.Context, sel types.Selector, _ time.Duration) (Element, error) {
	els, err := p.FindAll(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, sel)
	}
	return els[0], nil
}

func (p *DocumentPage) FindAll(ctx context.Context, sel types.Selector) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.doc == nil {
		return nil, fmt.Errorf("find all %s: no document loaded", sel)
	}
	return findIn(p.doc.Selection, sel)
}

func (p *DocumentPage) HTML(ctx context.Context) (string, error) {
	if p.doc == nil {
		return "", fmt.Errorf("no document loaded")
	}
	return p.doc.Html()
}

// findIn evaluates sel against the descendants of root.
func findIn(root *goquery.Selection, sel types.Selector) ([]Element, error) {
	re, err := sel.TextPattern()
	if err != nil {
		return nil, fmt.Errorf("text pattern %q: %w", sel.Text, err)
	}

	var nodes []*html.Node
	if sel.IsXPath() {
		for _, top := range root.Nodes {
			found, err := htmlquery.QueryAll(top, sel.XPath)
			if err != nil {
				return nil, fmt.Errorf("xpath %q: %w", sel.XPath, err)
			}
			nodes = append(nodes, found...)
		}
	} else {
		nodes = root.Find(sel.CSS).Nodes
	}

	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		el := &docElement{sel: goquery.NewDocumentFromNode(n).Selection}
		if re != nil && !re.MatchString(strings.TrimSpace(el.sel.Text())) {
			continue
		}
		out = append(out, el)
	}
	return out, nil
}

// docElement is a single node of a DocumentPage.
type docElement struct {
	sel *goquery.Selection
}

// Visible approximates CSS visibility from the hidden attribute and inline styles.
func (e *docElement) Visible() (bool, error) {
	for s := e.sel; s.Length() > 0; s = s.Parent() {
		if _, hidden := s.Attr("hidden"); hidden {
			return false, nil
		}
		style, _ := s.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false, nil
		}
	}
	return true, nil
}

func (e *docElement) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *docElement) Click() error { return nil }

func (e *docElement) Attribute(name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *docElement) FindAll(sel types.Selector) ([]Element, error) {
	return findIn(e.sel, sel)
}

func (e *docElement) ScrollHeight() (int, error) { return 0, nil }

func (e *docElement) ScrollBy(int) error { return nil }
