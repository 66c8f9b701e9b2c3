package util

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText drops invalid UTF-8 and NUL bytes, which the Bolt protocol
// rejects in string properties.
func SanitizeText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// Truncate cuts value to at most max runes. The cut is lossy and cannot be
// reversed; callers use it for display copies only.
func Truncate(value string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	n := 0
	for i := range value {
		if n == max {
			return value[:i]
		}
		n++
	}
	return value
}
