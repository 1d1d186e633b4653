package router

import (
	"strings"

	tg "github.com/m3rciful/insurancebot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// MessageOptions holds the handlers for non-command updates. Nil handlers skip the update.
type MessageOptions struct {
	// Text receives free text that is not a slash command.
	Text tele.HandlerFunc
	// Photo receives photos and documents with an image MIME type.
	Photo tele.HandlerFunc
	// UnsupportedDocument receives any other document and animations.
	UnsupportedDocument tele.HandlerFunc
}

// MessageRoutes builds the text, photo and document routes.
// Slash commands that did not hit a command endpoint are resolved through the registry
// (case-insensitively and with aliases) or handed to its unknown-command handler.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	text := func(c tele.Context) error {
		msg := c.Text()
		if tg.CommandName(msg) != "" && reg != nil {
			if key, cmd, ok := reg.LookupCommand(msg); ok {
				return summarize(c, normalizeHandlerName(key), cmd.Handler)
			}
			if h := reg.UnknownCommand(); h != nil {
				return summarize(c, "unknown_command", h)
			}
			return nil
		}
		if opts.Text == nil {
			return nil
		}
		return summarize(c, "text", opts.Text)
	}

	photo := func(c tele.Context) error {
		if opts.Photo == nil {
			return nil
		}
		return summarize(c, "photo", opts.Photo)
	}

	document := func(c tele.Context) error {
		doc := c.Message().Document
		if doc != nil && IsImageDocument(doc) {
			return photo(c)
		}
		if opts.UnsupportedDocument == nil {
			return nil
		}
		return summarize(c, "unsupported_document", opts.UnsupportedDocument)
	}

	animation := func(c tele.Context) error {
		if opts.UnsupportedDocument == nil {
			return nil
		}
		return summarize(c, "unsupported_document", opts.UnsupportedDocument)
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnPhoto, Handler: photo},
		{Endpoint: tele.OnDocument, Handler: document},
		{Endpoint: tele.OnAnimation, Handler: animation},
	}
}

// IsImageDocument reports whether a document upload is an image sent uncompressed.
func IsImageDocument(doc *tele.Document) bool {
	if doc == nil {
		return false
	}
	if strings.HasPrefix(strings.ToLower(doc.MIME), "image/") {
		return true
	}
	name := strings.ToLower(doc.FileName)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp", ".heic", ".tif", ".tiff", ".bmp"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
