package netutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestWithoutURL(t *testing.T) {
	err := fmt.Errorf("telebot: %w", &url.Error{
		Op:  "Post",
		URL: "https://api.telegram.org/bot123456:SECRET/getFile",
		Err: syscall.ECONNREFUSED,
	})
	got := WithoutURL(err)
	if strings.Contains(got.Error(), "SECRET") {
		t.Fatalf("token survived: %v", got)
	}
	if !errors.Is(got, syscall.ECONNREFUSED) {
		t.Fatalf("cause lost: %v", got)
	}

	plain := errors.New("status 500")
	if WithoutURL(plain) != plain {
		t.Fatal("errors without a URL pass through")
	}
}
