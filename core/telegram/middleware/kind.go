package middleware

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Update kinds used by rate limit exclusions and receipt logs.
const (
	KindMessage = "message"
	KindCommand = "command"
	KindPhoto   = "photo"
	KindOther   = "other"
)

// UpdateKind classifies an update as a command, a photo (or document) or a plain message.
// Animations carry a Document too but telebot dispatches them to OnAnimation, so they count as other.
func UpdateKind(upd *tele.Update) string {
	if upd == nil || upd.Message == nil {
		return KindOther
	}
	m := upd.Message
	switch {
	case m.Animation != nil:
		return KindOther
	case m.Photo != nil || m.Document != nil:
		return KindPhoto
	case strings.HasPrefix(m.Text, "/"):
		return KindCommand
	case m.Text != "":
		return KindMessage
	}
	return KindOther
}

func chatIDOf(upd *tele.Update) int64 {
	if upd == nil || upd.Message == nil || upd.Message.Chat == nil {
		return 0
	}
	return upd.Message.Chat.ID
}
