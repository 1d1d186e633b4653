package health

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
)

// Pinger requests URL on a fixed interval so that hosting platforms which idle quiet
// services see regular traffic.
type Pinger struct {
	URL      string
	Interval time.Duration
	Client   *http.Client
}

// Run pings immediately and then once per interval until ctx is done. Ping failures are logged only.
func (p *Pinger) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = 14 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		p.pingAndLog(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (p *Pinger) pingAndLog(ctx context.Context) {
	start := time.Now()
	code, err := p.Ping(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn(ctx, "http", "keepalive.ping",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return
	}
	logger.Debug(ctx, "http", "keepalive.ping",
		slog.String("status", "ok"),
		slog.Int("http_code", code),
		slog.Duration("duration", time.Since(start)),
	)
}

// Ping performs one GET and returns the status code.
func (p *Pinger) Ping(ctx context.Context) (int, error) {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return 0, fmt.Errorf("keepalive request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
