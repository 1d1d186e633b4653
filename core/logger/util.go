package logger

import (
	"strings"
	"time"
	"unicode/utf8"
)

// RoundMS rounds duration to the nearest millisecond.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Chars counts characters, not bytes, for the *_chars attributes.
func Chars(s string) int {
	return utf8.RuneCountInString(s)
}

// SummarizeStrings joins up to limit elements and reports whether truncation happened.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit <= 0 {
		return "", len(values) > 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}
