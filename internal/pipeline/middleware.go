package pipeline

import (
	"regexp"
	"strings"
	"sync"

	"github.com/forPelevin/gomoji"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// --- Post middleware ---

// DefaultContentMiddleware fills in the content of posts that have no text,
// such as cover photo updates. Failed posts are left untouched.
type DefaultContentMiddleware struct {
	Placeholder string
}

func (m *DefaultContentMiddleware) Name() string { return "default_content" }

func (m *DefaultContentMiddleware) Process(p *types.CleanPost) (*types.CleanPost, error) {
	if p.Content == "" && !p.Failed() {
		p.Content = m.Placeholder
	}
	return p, nil
}

// EngagementMiddleware derives the total engagement of a post.
type EngagementMiddleware struct{}

func (m *EngagementMiddleware) Name() string { return "engagement_total" }

func (m *EngagementMiddleware) Process(p *types.CleanPost) (*types.CleanPost, error) {
	p.TotalEngagement = p.ReactionsCount + p.SharesCount + p.CommentsCount
	return p, nil
}

// --- Comment middleware ---

// TrimMiddleware trims whitespace from comment text.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(c *types.CleanComment) (*types.CleanComment, error) {
	c.Comment = strings.TrimSpace(c.Comment)
	return c, nil
}

// DedupMiddleware drops repeated (url, comment) pairs.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[[2]string]struct{}
}

func NewDedupMiddleware() *DedupMiddleware {
	return &DedupMiddleware{seen: make(map[[2]string]struct{})}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(c *types.CleanComment) (*types.CleanComment, error) {
	key := [2]string{c.URL, c.Comment}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.seen[key]; exists {
		return nil, nil
	}
	m.seen[key] = struct{}{}
	return c, nil
}

// EmojiStripMiddleware removes emoji from comments that also contain letters
// or digits. Emoji-only comments are kept as they are so their sentiment is
// not lost.
type EmojiStripMiddleware struct {
	wordRe *regexp.Regexp
}

func NewEmojiStripMiddleware() *EmojiStripMiddleware {
	return &EmojiStripMiddleware{wordRe: regexp.MustCompile(`[\p{L}\p{N}]`)}
}

func (m *EmojiStripMiddleware) Name() string { return "emoji_strip" }

func (m *EmojiStripMiddleware) Process(c *types.CleanComment) (*types.CleanComment, error) {
	if !m.wordRe.MatchString(c.Comment) {
		return c, nil
	}
	c.Comment = strings.Join(strings.Fields(gomoji.RemoveEmojis(c.Comment)), " ")
	return c, nil
}

// RequiredTextMiddleware drops comments whose text is empty.
type RequiredTextMiddleware struct{}

func (m *RequiredTextMiddleware) Name() string { return "required_text" }

func (m *RequiredTextMiddleware) Process(c *types.CleanComment) (*types.CleanComment, error) {
	if c.Comment == "" {
		return nil, nil
	}
	return c, nil
}
