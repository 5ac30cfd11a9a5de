package crawler

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	exactCountRe   = regexp.MustCompile(`^\d[\d,]*$`)
	dottedCountRe  = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	groupedCountRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
	abbrevCountRe  = regexp.MustCompile(`(\d+)(?:[.,](\d+))?\s*([kKmM])(?:$|[^\p{L}])`)
	labelCountRe   = regexp.MustCompile(`\d[\d.,]*`)
)

// ParseCount reads an engagement counter as displayed by the site.
//
// Accepted forms are exact integers with thousands separators ("1,234"),
// abbreviated counts anywhere in the text ("1.2K", "3M", "View all 1,5K
// comments") truncated to an integer, and, when allowLabel is set, the first
// number inside a label ("12 comments", "1.234 bình luận"). It reports false
// when no count can be read or the value does not fit in an int.
func ParseCount(text string, allowLabel bool) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	if exactCountRe.MatchString(text) {
		return atoi(strings.ReplaceAll(text, ",", ""))
	}
	if dottedCountRe.MatchString(text) {
		return atoi(strings.ReplaceAll(text, ".", ""))
	}
	if m := abbrevCountRe.FindStringSubmatch(text); m != nil {
		return abbreviated(m[1], m[2], m[3])
	}
	if !allowLabel {
		return 0, false
	}

	run := labelCountRe.FindString(text)
	if run == "" {
		return 0, false
	}
	run = strings.TrimRight(run, ".,")
	if groupedCountRe.MatchString(run) {
		return atoi(strings.NewReplacer(",", "", ".", "").Replace(run))
	}
	if i := strings.IndexAny(run, ".,"); i >= 0 {
		run = run[:i]
	}
	return atoi(run)
}

// abbreviated computes whole.frac * suffix without floating point, so that
// "2.3K" is 2300 rather than 2299.
func abbreviated(whole, frac, suffix string) (int, bool) {
	mult := 1_000
	if strings.EqualFold(suffix, "m") {
		mult = 1_000_000
	}

	w, ok := atoi(whole)
	if !ok {
		return 0, false
	}
	if w >= math.MaxInt/mult {
		return 0, false
	}
	n := w * mult

	if frac != "" {
		// Digits beyond the multiplier's precision cannot change the result.
		if digits := len(strconv.Itoa(mult)) - 1; len(frac) > digits {
			frac = frac[:digits]
		}
		f, ok := atoi(frac)
		if !ok {
			return 0, false
		}
		scale := 1
		for range len(frac) {
			scale *= 10
		}
		n += f * mult / scale
	}
	return n, true
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
