package crawler

import "github.com/IshaanNene/PostPulse/internal/types"

// Selectors holds the ordered candidate lists for every element the crawler
// looks for. Earlier candidates win.
type Selectors struct {
	Reactions []types.Selector
	Comments  []types.Selector
	Shares    []types.Selector

	Content []types.Selector
	Author  []types.Selector

	SortToggle   []types.Selector
	RevealAll    []types.Selector
	Container    []types.Selector
	CommentBody  []types.Selector
	CommentEmoji types.Selector
}

const (
	commentContainerCSS = "div.xb57i2i.x1q594ok.x5lxg6s.x78zum5.xdt5ytf.x6ikm8r.x1ja2u2z.x1pq812k.x1rohswg" +
		".xfk6m8.x1yqm8si.xjx87ck.xx8ngbg.xwo3gff.x1n2onr6.x1oyok0e.x1odjw0f.x1iyjqo2.xy5w88m"

	commentBodyCSS = "div.html-div.xdj266r.x14z9mp.xat24cr.x1lziwak.xexx8yu.x18d9i69.x1g0dm76.xpdmqnj.x1n2onr6 " +
		`div[dir="auto"][style="text-align: start;"]`

	// A count, optionally abbreviated, followed by a label.
	countPrefix = `\d[\d.,]*\s*[km]?\s*`
)

// DefaultSelectors returns the candidates for the current desktop post layout
// in English and Vietnamese.
func DefaultSelectors() Selectors {
	return Selectors{
		Reactions: []types.Selector{
			types.CSS(`span[aria-hidden="true"] span span`),
			types.XPath(`//span[normalize-space(text())="All reactions:"]/following-sibling::span//span`),
		},
		Comments: []types.Selector{
			types.HasText("span", countPrefix+`comments?`),
			types.HasText("span", countPrefix+`bình luận`),
		},
		Shares: []types.Selector{
			types.HasText("span", countPrefix+`shares?`),
			types.HasText("span", countPrefix+`chia sẻ`),
			types.HasText("span", countPrefix+`lượt chia sẻ`),
		},
		Content: []types.Selector{
			types.CSS(`[data-ad-preview="message"]`),
			types.CSS(`div[data-ad-comet-preview="message"]`),
		},
		Author: []types.Selector{
			types.CSS(`div[data-ad-rendering-role="profile_name"] h3 a[role="link"]`),
			types.CSS(`h2 strong a[role="link"]`),
		},
		SortToggle: []types.Selector{
			types.HasText("span", `^\s*most relevant\s*$`),
			types.HasText("span", `^\s*phù hợp nhất\s*$`),
		},
		RevealAll: []types.Selector{
			types.HasText("span", `^\s*show all comments, including potential spam`),
			types.HasText("span", `^\s*hiển thị tất cả bình luận`),
		},
		Container: []types.Selector{
			types.CSS(commentContainerCSS),
			types.CSS(`div[role="dialog"] div.x1iyjqo2.xy5w88m`),
			types.CSS("html"),
		},
		CommentBody: []types.Selector{
			types.CSS(commentBodyCSS),
			types.CSS(`div[role="article"] div[dir="auto"][style="text-align: start;"]`),
		},
		CommentEmoji: types.CSS("img[alt]"),
	}
}
