package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
	tghelpers "github.com/m3rciful/insurancebot/core/telegram/helpers"
	"github.com/m3rciful/insurancebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// summarize runs fn under the handler name and writes one handler.handled line for it.
// Handler errors end here: they are logged with their err_code and not passed on to OnError.
func summarize(c tele.Context, handlerName string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, handlerName)
	err := fn(c)

	status, level := "ok", slog.LevelInfo
	if err != nil {
		status, level = "fail", slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("outcome", status),
		slog.Int("messages", middleware.SentMessages(c)),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	attrs = append(attrs, extras...)
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
	return nil
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ToLower(name)
}

// deriveErrorCode prefers a Code() method anywhere in the chain, then the concrete type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var c interface{ Code() string }
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
