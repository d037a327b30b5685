// Package preview bounds text for log records.
package preview

import "unicode/utf8"

// DefaultMaxChars is the preview length used in observability records.
const DefaultMaxChars = 250

// Ellipsis marks a truncated preview.
const Ellipsis = "..."

// Truncate returns the first max characters of s, with an ellipsis marker
// appended when anything was cut. Counts runes, not bytes, so multibyte
// text is never split mid-character.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + Ellipsis
}

// Len returns the character count of s.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}
