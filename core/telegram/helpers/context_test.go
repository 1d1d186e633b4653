package helpers

import (
	"testing"

	"github.com/m3rciful/insurancebot/core/logger"

	tele "gopkg.in/telebot.v4"
)

func TestChatKey(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	c := bot.NewContext(tele.Update{ID: 7, Message: &tele.Message{Chat: &tele.Chat{ID: -100123}}})
	if got := ChatKey(c); got != "-100123" {
		t.Fatalf("chat key = %q", got)
	}
	if got := ChatKey(bot.NewContext(tele.Update{ID: 8})); got != "" {
		t.Fatalf("chat key without chat = %q", got)
	}
}

func TestBuildContextIsCached(t *testing.T) {
	bot, err := tele.NewBot(tele.Settings{Offline: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	c := bot.NewContext(tele.Update{ID: 7, Message: &tele.Message{
		Chat:   &tele.Chat{ID: 42},
		Sender: &tele.User{ID: 42},
	}})
	first := BuildContext(c)
	if rid := logger.RIDFrom(first); rid == "" {
		t.Fatal("expected a correlation id")
	}
	if second := BuildContext(c); second != first {
		t.Fatal("expected the cached context on the second call")
	}
}
