package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/insurancebot/core/logger"
	tghelpers "github.com/m3rciful/insurancebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware catches panics in handlers and turns them into errors so the bot keeps running.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error(tghelpers.BuildContext(c), "tg", "panic",
					slog.String("status", "fail"),
					slog.Any("err", r),
					slog.String("stack", string(debug.Stack())),
				)
				err = fmt.Errorf("telegram: handler panic: %v", r)
			}
		}()
		return next(c)
	}
}
