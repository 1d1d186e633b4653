package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/m3rciful/insurancebot/core/logger"
)

// NATS publishes events on <prefix>.<name> subjects.
type NATS struct {
	conn   *nats.Conn
	prefix string
	now    func() time.Time
}

// ConnectNATS dials url and keeps reconnecting in the background for the process lifetime.
func ConnectNATS(url, token, prefix string) (*NATS, error) {
	ctx := context.Background()
	opts := []nats.Option{
		nats.Name("insurancebot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn(ctx, "events", "nats.disconnected", slog.String("err", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info(ctx, "events", "nats.reconnected", slog.String("url", nc.ConnectedUrlRedacted()))
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATS{conn: nc, prefix: strings.Trim(prefix, "."), now: time.Now}, nil
}

// Subject returns the subject an event name is published on.
func (n *NATS) Subject(name string) string {
	if n.prefix == "" {
		return name
	}
	return n.prefix + "." + name
}

func (n *NATS) Publish(ctx context.Context, name string, data any) error {
	payload, err := encode(name, data, n.now())
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := n.Subject(name)
	if err := n.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	logger.Debug(ctx, "events", "event.published",
		slog.String("subject", subject),
		slog.Int("payload", len(payload)),
	)
	return nil
}

// Close flushes buffered events and closes the connection.
func (n *NATS) Close() error {
	if n == nil || n.conn == nil {
		return nil
	}
	err := n.conn.Drain()
	if err != nil {
		n.conn.Close()
	}
	return err
}
