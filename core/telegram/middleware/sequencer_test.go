package middleware

import (
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	bot, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	if err != nil {
		t.Fatalf("bot: %v", err)
	}
	return bot
}

func textUpdate(id int, chatID int64, text string) tele.Update {
	return tele.Update{
		ID: id,
		Message: &tele.Message{
			Chat:   &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
			Sender: &tele.User{ID: chatID},
			Text:   text,
		},
	}
}

func TestSequencerRunsChatUpdatesInReserveOrder(t *testing.T) {
	bot := offlineBot(t)
	seq := NewSequencer(time.Second)

	var (
		mu    sync.Mutex
		order []int
	)
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	handler := seq.Middleware(func(c tele.Context) error {
		if c.Update().ID == 1 {
			close(firstStarted)
			<-releaseFirst
		}
		mu.Lock()
		order = append(order, c.Update().ID)
		mu.Unlock()
		return nil
	})

	u1, u2, other := textUpdate(1, 7, "one"), textUpdate(2, 7, "two"), textUpdate(3, 8, "other")
	for _, u := range []*tele.Update{&u1, &u2, &other} {
		seq.Reserve(u)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = handler(bot.NewContext(u1)) }()
	<-firstStarted
	go func() { defer wg.Done(); _ = handler(bot.NewContext(u2)) }()

	// a different chat is not blocked by chat 7
	if err := handler(bot.NewContext(other)); err != nil {
		t.Fatalf("other chat: %v", err)
	}
	close(releaseFirst)
	wg.Wait()

	want := []int{3, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestSequencerExpiresUnclaimedTickets(t *testing.T) {
	bot := offlineBot(t)
	seq := NewSequencer(20 * time.Millisecond)

	lost := textUpdate(1, 7, "/start@otherbot")
	seq.Reserve(&lost)
	time.Sleep(30 * time.Millisecond)

	next := textUpdate(2, 7, "hello")
	seq.Reserve(&next)

	done := make(chan struct{})
	go func() {
		_ = seq.Middleware(func(tele.Context) error { return nil })(bot.NewContext(next))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler blocked by an expired ticket")
	}
}

func TestUpdateKind(t *testing.T) {
	cmd := textUpdate(1, 1, "/start")
	msg := textUpdate(2, 1, "hi")
	photo := tele.Update{ID: 3, Message: &tele.Message{Photo: &tele.Photo{}}}
	doc := tele.Update{ID: 4, Message: &tele.Message{Document: &tele.Document{}}}
	cases := map[string]*tele.Update{
		KindCommand: &cmd,
		KindMessage: &msg,
		KindPhoto:   &photo,
		KindOther:   {ID: 5},
	}
	for want, upd := range cases {
		if got := UpdateKind(upd); got != want {
			t.Fatalf("UpdateKind(%d) = %s, want %s", upd.ID, got, want)
		}
	}
	if UpdateKind(&doc) != KindPhoto {
		t.Fatal("documents count as photo uploads")
	}
	gif := tele.Update{ID: 6, Message: &tele.Message{Animation: &tele.Animation{}, Document: &tele.Document{}}}
	if UpdateKind(&gif) != KindOther {
		t.Fatal("animations are not photo uploads")
	}
}

func TestSequencerSkipsAnimations(t *testing.T) {
	bot := offlineBot(t)
	seq := NewSequencer(0)

	gif := tele.Update{ID: 1, Message: &tele.Message{
		Chat:      &tele.Chat{ID: 7, Type: tele.ChatPrivate},
		Sender:    &tele.User{ID: 7},
		Animation: &tele.Animation{MIME: "video/mp4"},
		Document:  &tele.Document{MIME: "video/mp4"},
	}}
	seq.Reserve(&gif)
	next := textUpdate(2, 7, "looks right")
	seq.Reserve(&next)

	// telebot hands animations to OnAnimation, so the gif may never pass the middleware.
	done := make(chan struct{})
	go func() {
		_ = seq.Middleware(func(tele.Context) error { return nil })(bot.NewContext(next))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("text after an animation blocked (MaxWait %s)", seq.MaxWait)
	}
}
