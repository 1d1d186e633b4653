package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/insurancebot/core/logger"
	"github.com/m3rciful/insurancebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current chat.
// Telegram rejects messages over 4096 characters, so longer text is split on line breaks.
func SendText(c tele.Context, text string) error {
	for _, part := range SplitMessage(text, MaxMessageRunes) {
		part := part
		if err := sendAsync(c, "send.text", "sendMessage", func() error {
			return c.Send(part, &tele.SendOptions{DisableWebPagePreview: true})
		}); err != nil {
			return err
		}
	}
	return nil
}

// NotifyTyping shows the typing indicator while a slow reply is prepared.
// Failures are logged and otherwise ignored.
func NotifyTyping(c tele.Context) {
	if err := c.Notify(tele.Typing); err != nil {
		logger.Debug(BuildContext(c), "tg", "chat_action.fail",
			slog.String("err", err.Error()),
		)
	}
}
