package events

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestEncodeEnvelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	raw, err := encode(StepChanged, StepChange{ChatID: "42", From: 1, To: 3, Source: "photo"}, at)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var got struct {
		ID         string     `json:"id"`
		Type       string     `json:"type"`
		OccurredAt time.Time  `json:"occurred_at"`
		Data       StepChange `json:"data"`
	}
	if err := sonic.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.ID) != 36 || got.Type != StepChanged {
		t.Fatalf("envelope = %+v", got)
	}
	if !got.OccurredAt.Equal(at) || got.OccurredAt.Location() != time.UTC {
		t.Fatalf("occurred_at = %v", got.OccurredAt)
	}
	if got.Data != (StepChange{ChatID: "42", From: 1, To: 3, Source: "photo"}) {
		t.Fatalf("data = %+v", got.Data)
	}
}

func TestSubject(t *testing.T) {
	n := &NATS{prefix: "insurance"}
	if got := n.Subject(PolicyIssued); got != "insurance.policy.issued" {
		t.Fatalf("subject = %q", got)
	}
	n.prefix = ""
	if got := n.Subject(PolicyIssued); got != "policy.issued" {
		t.Fatalf("subject = %q", got)
	}
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	if err := p.Publish(context.Background(), StepChanged, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
}
