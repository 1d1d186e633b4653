package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/m3rciful/insurancebot/core/logger"
	appconfig "github.com/m3rciful/insurancebot/internal/config"
	"github.com/m3rciful/insurancebot/internal/health"
)

// services supervises the background goroutines that live as long as the bot.
type services struct {
	cancel context.CancelFunc
	group  *errgroup.Group
}

func startServices(ctx context.Context, cfg *appconfig.Config, ready health.Checker) *services {
	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.HTTP.Listen != "" {
		srv := health.NewServer(cfg.HTTP.Listen, ready)
		g.Go(func() error { return srv.Run(gctx) })
	}
	if cfg.KeepAlive.URL != "" {
		p := &health.Pinger{
			URL:      cfg.KeepAlive.URL,
			Interval: time.Duration(cfg.KeepAlive.IntervalMinutes) * time.Minute,
		}
		g.Go(func() error { return p.Run(gctx) })
	}
	return &services{cancel: cancel, group: g}
}

func (s *services) stop(ctx context.Context) {
	s.cancel()
	if err := s.group.Wait(); err != nil {
		logger.Warn(ctx, "app", "services.stop",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
