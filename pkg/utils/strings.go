package utils

import (
	"strings"
	"unicode"
)

// NormalizeText lower-cases text, turns every run of non-alphanumeric
// characters into a single space and trims the result.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	space := true
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// ContainsAnyWord reports whether any keyword appears in text as whole
// words. Both sides are normalised, so "Ring-Road" matches "ring road"
// but "planes" does not match "lane".
func ContainsAnyWord(text string, keywords []string) bool {
	padded := " " + NormalizeText(text) + " "
	for _, keyword := range keywords {
		kw := NormalizeText(keyword)
		if kw == "" {
			continue
		}
		if strings.Contains(padded, " "+kw+" ") {
			return true
		}
	}
	return false
}
