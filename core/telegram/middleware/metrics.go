package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const messagesKey = "messages"

// metricsContext wraps tele.Context to count outbound messages of one update.
type metricsContext struct {
	tele.Context
	sent *atomic.Int64
}

// Send proxies tele.Context.Send while updating the message counter.
func (m metricsContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.sent.Add(1)
	}
	return err
}

// Reply proxies tele.Context.Reply while updating the message counter.
func (m metricsContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.sent.Add(1)
	}
	return err
}

// MessageMetricsMiddleware instruments the context so handler summaries can report replies sent.
// Sends run on dispatcher workers, so the counter is atomic.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		sent := new(atomic.Int64)
		c.Set(messagesKey, sent)
		return next(metricsContext{Context: c, sent: sent})
	}
}

// SentMessages reports how many messages were sent for the current update so far.
func SentMessages(c tele.Context) int {
	if sent, ok := c.Get(messagesKey).(*atomic.Int64); ok {
		return int(sent.Load())
	}
	return 0
}
