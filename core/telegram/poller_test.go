package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPoller(t *testing.T) {
	lp, ok := BuildPoller(PollerOptions{RunMode: "longpoll"}).(*tele.LongPoller)
	if !ok {
		t.Fatal("expected long poller")
	}
	if lp.Timeout != 10*time.Second {
		t.Fatalf("timeout = %v, want default 10s", lp.Timeout)
	}

	wh, ok := BuildPoller(PollerOptions{
		RunMode: "Webhook",
		Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example.com/hook"},
	}).(*tele.Webhook)
	if !ok {
		t.Fatal("expected webhook poller")
	}
	if wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://bot.example.com/hook" {
		t.Fatalf("unexpected webhook %+v", wh)
	}
}
