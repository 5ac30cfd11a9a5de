package sentiment

import (
	"context"
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// defaultLexicon weights sentiment-bearing phrases in English and
// Vietnamese. Negated phrases outweigh the word they contain.
var defaultLexicon = map[string]int{
	// English
	"good": 1, "great": 2, "excellent": 2, "love": 2, "nice": 1, "amazing": 2,
	"awesome": 2, "thanks": 1, "thank you": 1, "happy": 1, "best": 2, "beautiful": 1,
	"bad": -1, "terrible": -2, "awful": -2, "hate": -2, "worst": -2, "sad": -1,
	"angry": -2, "scam": -2, "fake": -1, "disappointed": -2, "poor": -1,
	"not good": -2, "not bad": 2, "not happy": -2,

	// Vietnamese
	"tốt": 1, "hay": 1, "đẹp": 1, "tuyệt": 2, "tuyệt vời": 2, "thích": 1, "yêu": 2,
	"cảm ơn": 1, "hài lòng": 2, "xuất sắc": 2, "ủng hộ": 1, "vui": 1, "chúc mừng": 2,
	"tệ": -2, "xấu": -1, "ghét": -2, "buồn": -1, "thất vọng": -2, "lừa đảo": -2,
	"dở": -1, "kém": -1, "chán": -1, "bực": -2, "vô lý": -2, "tức": -1,
	"không tốt": -2, "không hay": -2, "không thích": -2, "không hài lòng": -3,
	"không tệ": 3,

	// Emoji kept by cleaning for emoji-only comments
	"😍": 2, "❤": 2, "👍": 1, "😂": 1, "🥰": 2, "😊": 1,
	"😡": -2, "😠": -2, "👎": -1, "😢": -1, "😭": -1,
}

// LexiconClassifier scores texts by summing the weights of the phrases they
// contain. Positive sums are positive, negative sums negative, zero neutral.
type LexiconClassifier struct {
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
	weights []int
}

// NewLexiconClassifier builds a classifier over the built-in lexicon.
func NewLexiconClassifier() *LexiconClassifier {
	return NewLexiconClassifierWith(defaultLexicon)
}

// NewLexiconClassifierWith builds a classifier over a custom lexicon.
func NewLexiconClassifierWith(lexicon map[string]int) *LexiconClassifier {
	keywords := make([]string, 0, len(lexicon))
	weights := make([]int, 0, len(lexicon))
	for phrase, w := range lexicon {
		kw := normalize(phrase)
		if kw == "" {
			continue
		}
		keywords = append(keywords, " "+kw+" ")
		weights = append(weights, w)
	}
	return &LexiconClassifier{
		matcher: ahocorasick.NewStringMatcher(keywords),
		weights: weights,
	}
}

func (c *LexiconClassifier) Classify(ctx context.Context, texts []string) ([]Label, error) {
	labels := make([]Label, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		labels[i] = c.classify(text)
	}
	return labels, nil
}

// Score returns the summed weight of the phrases found in text.
func (c *LexiconClassifier) Score(text string) int {
	padded := " " + normalize(text) + " "

	// Matcher state is reused between calls.
	c.mu.Lock()
	hits := c.matcher.Match([]byte(padded))
	c.mu.Unlock()

	score := 0
	for _, idx := range hits {
		score += c.weights[idx]
	}
	return score
}

func (c *LexiconClassifier) classify(text string) Label {
	switch score := c.Score(text); {
	case score > 0:
		return Positive
	case score < 0:
		return Negative
	default:
		return Neutral
	}
}

// normalize lowercases s in NFC form and reduces it to space-separated
// tokens of letters and digits. Symbols such as emoji become tokens of
// their own.
func normalize(s string) string {
	s = cases.Lower(language.Und).String(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.Is(unicode.So, r):
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
