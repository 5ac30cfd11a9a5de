package automation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/IshaanNene/PostPulse/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

const testHTML = `<!DOCTYPE html>
<html>
<body>
    <div data-ad-rendering-role="profile_name"><h3><a role="link" href="/page">Page Name</a></h3></div>
    <div data-ad-preview="message">  Hello from the post  </div>
    <span>12 comments</span>
    <span style="display: none">99 shares</span>
    <div class="comment"><div dir="auto">Nice <img alt="😀" src="e.png"></div></div>
    <div class="comment" hidden><div dir="auto">Hidden one</div></div>
</body>
</html>`

func loadedPage(t *testing.T) *DocumentPage {
	t.Helper()
	p := NewDocumentPage(StaticSource(testHTML), testLogger)
	if err := p.Navigate(context.Background(), "https://example.com/page/posts/1"); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	return p
}

func TestDocumentPageFindCSS(t *testing.T) {
	p := loadedPage(t)

	el, err := p.Find(context.Background(), types.CSS(`[data-ad-preview="message"]`), 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	text, _ := el.Text()
	if strings.TrimSpace(text) != "Hello from the post" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestDocumentPageFindXPath(t *testing.T) {
	p := loadedPage(t)

	el, err := p.Find(context.Background(), types.XPath(`//div[@data-ad-rendering-role="profile_name"]//a[@role="link"]`), 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	text, _ := el.Text()
	if text != "Page Name" {
		t.Errorf("expected Page Name, got %q", text)
	}
}

func TestDocumentPageFindText(t *testing.T) {
	p := loadedPage(t)

	el, err := p.Find(context.Background(), types.HasText("span", "COMMENTS"), 0)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	text, _ := el.Text()
	if text != "12 comments" {
		t.Errorf("expected case-insensitive text match, got %q", text)
	}

	_, err = p.Find(context.Background(), types.HasText("span", "likes"), 0)
	if !errors.Is(err, ErrElementNotFound) {
		t.Errorf("expected ErrElementNotFound, got %v", err)
	}
}

func TestDocumentPageVisibility(t *testing.T) {
	p := loadedPage(t)
	ctx := context.Background()

	if _, _, ok := FirstVisible(ctx, p, 0, types.HasText("span", "shares")); ok {
		t.Error("display:none element should not be visible")
	}

	comments, err := p.FindAll(ctx, types.CSS("div.comment div[dir=auto]"))
	if err != nil {
		t.Fatal(err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comment nodes, got %d", len(comments))
	}
	if v, _ := comments[1].Visible(); v {
		t.Error("child of hidden element should not be visible")
	}
}

func TestDocumentElementChildren(t *testing.T) {
	p := loadedPage(t)

	el, err := p.Find(context.Background(), types.CSS("div.comment div[dir=auto]"), 0)
	if err != nil {
		t.Fatal(err)
	}
	imgs, err := el.FindAll(types.CSS("img[alt]"))
	if err != nil {
		t.Fatal(err)
	}
	if len(imgs) != 1 {
		t.Fatalf("expected 1 emoji image, got %d", len(imgs))
	}
	alt, ok, _ := imgs[0].Attribute("alt")
	if !ok || alt != "😀" {
		t.Errorf("unexpected alt %q", alt)
	}
}

func TestDocumentPageNavigateError(t *testing.T) {
	src := func(context.Context, string) (io.ReadCloser, error) {
		return nil, errors.New("no snapshot")
	}
	p := NewDocumentPage(src, testLogger)
	if err := p.Navigate(context.Background(), "https://example.com/a/posts/1"); err == nil {
		t.Error("expected navigation error")
	}
	if _, err := p.FindAll(context.Background(), types.CSS("div")); err == nil {
		t.Error("expected error without a loaded document")
	}
}
