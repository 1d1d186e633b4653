// Package events publishes conversation milestones to an optional message bus.
package events

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Event names.
const (
	StepChanged  = "step.changed"
	PolicyIssued = "policy.issued"
)

// Publisher delivers domain events. Publishing is best effort; callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, name string, data any) error
	Close() error
}

// StepChange is the payload of StepChanged.
type StepChange struct {
	ChatID string `json:"chat_id"`
	From   int    `json:"from"`
	To     int    `json:"to"`
	Source string `json:"source"`
}

// PolicyIssue is the payload of PolicyIssued.
type PolicyIssue struct {
	ChatID       string `json:"chat_id"`
	PolicyNumber string `json:"policy_number"`
	PremiumUSD   int    `json:"premium_usd"`
}

// Envelope wraps every published payload.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func encode(name string, data any, now time.Time) ([]byte, error) {
	return sonic.Marshal(Envelope{
		ID:         uuid.NewString(),
		Type:       name,
		OccurredAt: now.UTC(),
		Data:       data,
	})
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }
