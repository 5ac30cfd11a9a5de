package crawler

import (
	"fmt"
	"regexp"

	"github.com/IshaanNene/PostPulse/internal/types"
)

// CompileLinkPattern compiles the regular expression post links must match.
func CompileLinkPattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile link pattern: %w", err)
	}
	return re, nil
}

// ValidateLinks rejects an empty list or the first link that does not match
// pattern. The returned error is a *types.ValidationError.
func ValidateLinks(links []string, pattern *regexp.Regexp) error {
	if len(links) == 0 {
		return &types.ValidationError{Index: -1, Err: types.ErrNoLinks}
	}
	for i, link := range links {
		if !pattern.MatchString(link) {
			return &types.ValidationError{Link: link, Index: i, Err: types.ErrInvalidLink}
		}
	}
	return nil
}
