package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/insurancebot/core/config"
	"github.com/m3rciful/insurancebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the shared middleware chain:
// recover, per-chat sequencing, rate limit, logging context and reply metrics.
// A nil sequencer leaves handlers of one chat unordered.
func DefaultMiddlewares(cfg *coreconfig.Config, seq *middleware.Sequencer, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
	if seq != nil {
		mws = append(mws, Middleware{Name: "sequence", Use: seq.Middleware})
	}

	if cfg != nil {
		if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, kind := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(kind)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: onLimited,
				}),
			})
		}
	}

	return append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
}
