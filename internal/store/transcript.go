package store

import (
	"strings"
	"unicode/utf8"
)

// DefaultHistoryChars is the transcript budget used when none is configured.
const DefaultHistoryChars = 2048

const (
	userPrefix = "User:"
	botPrefix  = "Bot:"
)

var lineBreaks = strings.NewReplacer("\r\n", `\n`, "\n", `\n`, "\r", `\n`)

// FormatTurn serializes one exchange as exactly two lines:
//
//	User: <user text>
//	Bot: <bot text>
//
// Line breaks inside either text are written as the two characters `\n`.
func FormatTurn(userText, botText string) string {
	return userPrefix + " " + lineBreaks.Replace(userText) + "\n" +
		botPrefix + " " + lineBreaks.Replace(botText) + "\n"
}

// TrimTranscript returns the longest chronological suffix of whole turns whose total length,
// in characters, does not exceed maxChars. A turn is a "User:" line immediately followed by
// a "Bot:" line; any other line is dropped.
func TrimTranscript(raw string, maxChars int) string {
	if maxChars <= 0 || raw == "" {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}

	var turns []string
	for i := 0; i < len(lines)-1; {
		if strings.HasPrefix(lines[i], userPrefix) && strings.HasPrefix(lines[i+1], botPrefix) {
			turns = append(turns, lines[i]+"\n"+lines[i+1]+"\n")
			i += 2
			continue
		}
		i++
	}

	first, total := len(turns), 0
	for i := len(turns) - 1; i >= 0; i-- {
		n := utf8.RuneCountInString(turns[i])
		if total+n > maxChars {
			break
		}
		total += n
		first = i
	}
	return strings.Join(turns[first:], "")
}
