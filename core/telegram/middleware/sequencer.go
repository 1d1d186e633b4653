package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
	tghelpers "github.com/m3rciful/insurancebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// Sequencer runs handlers of one chat strictly one after another, in update order,
// while different chats proceed in parallel.
//
// Telebot starts every handler in its own goroutine, so arrival order is lost by the
// time a middleware runs. Reserve is meant to be installed as a poller filter: it is
// called synchronously for each update and hands out a ticket that the middleware
// later redeems. Updates that never reach a handler leave their ticket unclaimed;
// such tickets expire after MaxWait and stop blocking the chat.
type Sequencer struct {
	MaxWait time.Duration

	mu      sync.Mutex
	tails   map[int64]chan struct{}
	pending map[int]*ticket
}

type ticket struct {
	chatID   int64
	prev     chan struct{}
	done     chan struct{}
	reserved time.Time
}

// NewSequencer returns a Sequencer whose unclaimed tickets expire after maxWait.
func NewSequencer(maxWait time.Duration) *Sequencer {
	if maxWait <= 0 {
		maxWait = 2 * time.Minute
	}
	return &Sequencer{
		MaxWait: maxWait,
		tails:   make(map[int64]chan struct{}),
		pending: make(map[int]*ticket),
	}
}

// Reserve records the update's position in its chat queue. It always lets the update through.
func (s *Sequencer) Reserve(upd *tele.Update) bool {
	chatID := chatIDOf(upd)
	if chatID == 0 || UpdateKind(upd) == KindOther {
		return true
	}
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	s.pending[upd.ID] = s.enqueueLocked(chatID, now)
	return true
}

// Middleware blocks until every earlier update of the same chat has been handled.
func (s *Sequencer) Middleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return next(c)
		}
		upd := c.Update()

		s.mu.Lock()
		t, ok := s.pending[upd.ID]
		if ok {
			delete(s.pending, upd.ID)
		} else {
			t = s.enqueueLocked(chat.ID, time.Now())
		}
		s.mu.Unlock()
		defer s.release(t)

		if t.prev != nil {
			timer := time.NewTimer(s.MaxWait)
			select {
			case <-t.prev:
				timer.Stop()
			case <-timer.C:
				logger.Warn(tghelpers.BuildContext(c), "tg", "sequence.timeout",
					slog.String("status", "skip"),
					slog.Duration("duration", s.MaxWait),
				)
			}
		}
		return next(c)
	}
}

func (s *Sequencer) enqueueLocked(chatID int64, now time.Time) *ticket {
	t := &ticket{
		chatID:   chatID,
		prev:     s.tails[chatID],
		done:     make(chan struct{}),
		reserved: now,
	}
	s.tails[chatID] = t.done
	return t
}

func (s *Sequencer) release(t *ticket) {
	close(t.done)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tails[t.chatID] == t.done {
		delete(s.tails, t.chatID)
	}
}

func (s *Sequencer) expireLocked(now time.Time) {
	for id, t := range s.pending {
		if now.Sub(t.reserved) < s.MaxWait {
			continue
		}
		delete(s.pending, id)
		close(t.done)
		if s.tails[t.chatID] == t.done {
			delete(s.tails, t.chatID)
		}
	}
}
