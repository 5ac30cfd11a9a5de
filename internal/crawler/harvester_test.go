package crawler

import (
	"context"
	"errors"
	"testing"
)

func TestHarvestInlinesEmojiAlt(t *testing.T) {
	withEmoji := &fakeElement{
		texts: []string{"So good"},
		children: map[string][]*fakeElement{
			"img": {
				{attrs: map[string]string{"alt": "😍"}},
				{attrs: map[string]string{}},
				{attrs: map[string]string{"alt": "👍"}},
			},
		},
	}
	onlyEmoji := &fakeElement{
		children: map[string][]*fakeElement{
			"img": {{attrs: map[string]string{"alt": "❤"}}},
		},
	}
	page := newFakePage(fakeDoc{
		"comment": {
			withEmoji,
			{texts: []string{"hidden"}, hidden: true},
			{textErr: errors.New("stale node")},
			textEl("  plain  "),
			onlyEmoji,
		},
	})

	got := NewHarvester(testSelectors(), testLogger).Harvest(context.Background(), page, "https://example.com/p/posts/1")

	want := []string{"So good 😍 👍", "plain", "❤"}
	if len(got) != len(want) {
		t.Fatalf("expected %d comments, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].CommentText != w {
			t.Errorf("comment %d: expected %q, got %q", i, w, got[i].CommentText)
		}
		if got[i].URL != "https://example.com/p/posts/1" {
			t.Errorf("comment %d: wrong url %q", i, got[i].URL)
		}
	}
}

func TestHarvestFallsBackToSecondSelector(t *testing.T) {
	page := newFakePage(fakeDoc{
		"comment-alt": {textEl("first"), textEl("first")},
	})

	got := NewHarvester(testSelectors(), testLogger).Harvest(context.Background(), page, "u")
	if len(got) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(got))
	}
	// Identical texts are kept; deduplication happens during cleaning.
	if got[0].CommentText != got[1].CommentText {
		t.Errorf("expected duplicate texts to be preserved")
	}
}

func TestHarvestEmptyPage(t *testing.T) {
	got := NewHarvester(testSelectors(), testLogger).Harvest(context.Background(), newFakePage(fakeDoc{}), "u")
	if len(got) != 0 {
		t.Errorf("expected no comments, got %d", len(got))
	}
}
