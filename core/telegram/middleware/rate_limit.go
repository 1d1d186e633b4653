package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
	tghelpers "github.com/m3rciful/insurancebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
// Exclude holds update kinds (see UpdateKind) that bypass the limiter.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware enforces a minimum interval between updates from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
	)
	allow := func(userID int64, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if last, ok := lastSeen[userID]; ok && now.Sub(last) < opts.Interval {
			return false
		}
		lastSeen[userID] = now
		if len(lastSeen) > 4096 {
			for id, ts := range lastSeen {
				if now.Sub(ts) >= opts.Interval {
					delete(lastSeen, id)
				}
			}
		}
		return true
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			upd := c.Update()
			kind := UpdateKind(&upd)
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}
			if allow(user.ID, time.Now()) {
				return next(c)
			}

			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}
