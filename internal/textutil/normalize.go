// Package textutil holds text normalization shared by the classification
// and extraction stages.
package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC, drops control characters other than newlines and
// tabs, normalizes line endings and trims surrounding whitespace. Line
// structure is preserved because MRZ detection and layout rules are line based.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	normed := norm.NFKC.String(text)
	normed = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normed)
	return strings.TrimSpace(normed)
}

// CollapseSpaces joins all whitespace runs into single spaces
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold lowercases and collapses s for keyword comparison
func Fold(s string) string {
	return strings.ToLower(CollapseSpaces(s))
}

// Head returns at most n runes of s
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Window returns the substring of s around [start, end) extended by radius
// bytes on each side, clipped to valid rune boundaries.
func Window(s string, start, end, radius int) string {
	lo := start - radius
	if lo < 0 {
		lo = 0
	}
	hi := end + radius
	if hi > len(s) {
		hi = len(s)
	}
	for lo > 0 && !utf8.RuneStart(s[lo]) {
		lo--
	}
	for hi < len(s) && !utf8.RuneStart(s[hi]) {
		hi++
	}
	return s[lo:hi]
}

// IsBlank reports whether s has fewer than min non-space characters
func IsBlank(s string, min int) bool {
	return len(strings.TrimSpace(s)) < min
}
