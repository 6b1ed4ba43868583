package util

import (
	"strings"
	"unicode/utf8"
)

// NormalizeSpaces collapses runs of whitespace, non-breaking spaces included,
// into a single space.
func NormalizeSpaces(input string) string {
	result := strings.ReplaceAll(input, "\u00a0", " ")

	return strings.Join(strings.Fields(result), " ")
}

// TruncateRunes cuts input to at most max runes without splitting a
// multi-byte character.
func TruncateRunes(input string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= max {
		return input
	}

	runes := []rune(input)
	return strings.TrimSpace(string(runes[:max]))
}

func RuneLen(input string) int {
	return utf8.RuneCountInString(input)
}
