package ats

import (
	"regexp"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	disallowedChars = regexp.MustCompile(`[^a-z0-9\s\-/.+#&]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases text with full Unicode case mapping (İ becomes
// "i" plus a combining dot), replaces every character outside
// [a-z0-9 whitespace - / . + # &] with a space, collapses whitespace
// runs and trims. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	// A Caser is stateful, so each call gets its own
	s := cases.Lower(language.Und).String(text)
	s = disallowedChars.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContainsPhrase reports whether the normalized phrase occurs as a substring
// of the normalized haystack. "java" matches inside "javascript".
func ContainsPhrase(haystack, phrase string) bool {
	return strings.Contains(Normalize(haystack), Normalize(phrase))
}

// utf16Len counts UTF-16 code units, the unit lengths and offsets are
// expressed in by browser clients.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
