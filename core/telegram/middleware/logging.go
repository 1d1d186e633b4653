package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
	tghelpers "github.com/m3rciful/insurancebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware attaches the correlation context to the update and logs its receipt.
// Receipt lines are debug level and sampled.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		var chatID, userID int64
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() {
			attrs := []slog.Attr{
				slog.String("status", "ok"),
				slog.String("kind", UpdateKind(&upd)),
			}
			if chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user != nil && user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
			if upd.Message != nil {
				attrs = append(attrs, slog.Duration("lag", time.Since(upd.Message.Time())))
			}
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}
