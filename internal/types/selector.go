package types

import (
	"regexp"
	"strings"
)

// Selector is one candidate expression for locating an element. Exactly one
// of CSS or XPath is normally set; Text additionally restricts CSS matches to
// elements whose visible text matches the pattern, case-insensitively.
type Selector struct {
	CSS   string
	XPath string
	Text  string
}

// CSS returns a plain CSS selector.
func CSS(sel string) Selector { return Selector{CSS: sel} }

// XPath returns an XPath selector.
func XPath(expr string) Selector { return Selector{XPath: expr} }

// HasText returns a selector matching css elements whose text matches pattern.
func HasText(css, pattern string) Selector { return Selector{CSS: css, Text: pattern} }

// IsXPath reports whether the selector is an XPath expression.
func (s Selector) IsXPath() bool { return s.XPath != "" }

// TextPattern compiles the Text constraint as a case-insensitive regexp.
// It returns nil when the selector has no text constraint.
func (s Selector) TextPattern() (*regexp.Regexp, error) {
	if s.Text == "" {
		return nil, nil
	}
	return regexp.Compile("(?i)" + s.Text)
}

// JSRegex formats the Text constraint for in-page JavaScript matching.
func (s Selector) JSRegex() string {
	return "/" + strings.ReplaceAll(s.Text, "/", `\/`) + "/i"
}

func (s Selector) String() string {
	switch {
	case s.XPath != "":
		return "xpath:" + s.XPath
	case s.Text != "":
		return s.CSS + ` :text(` + s.Text + `)`
	default:
		return s.CSS
	}
}
