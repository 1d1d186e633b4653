package helpers

import "strings"

// MaxMessageRunes is the Telegram limit for a single text message.
const MaxMessageRunes = 4096

// SplitMessage cuts text into chunks of at most limit runes, preferring line boundaries.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 || len([]rune(text)) <= limit {
		return []string{text}
	}
	var (
		parts   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			parts = append(parts, strings.TrimRight(string(current), "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		r := []rune(line)
		if len(current)+len(r) > limit {
			flush()
		}
		for len(r) > limit {
			parts = append(parts, string(r[:limit]))
			r = r[limit:]
		}
		current = append(current, r...)
	}
	flush()
	return parts
}
