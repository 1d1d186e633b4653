package generation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func newTestGemini(t *testing.T, h http.HandlerFunc) *Gemini {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewGemini(GeminiOptions{
		BaseURL: srv.URL + "/v1beta/",
		Model:   "gemini-2.0-flash",
		APIKey:  "secret",
		Timeout: time.Second,
		Client:  srv.Client(),
	})
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotReq geminiRequest
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		body, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(body, &gotReq)
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Hello "},{"text":"there [STEP COMPLETED: 2]"}]}}]}`)
	})

	out, err := g.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Hello there [STEP COMPLETED: 2]" {
		t.Fatalf("out = %q", out)
	}
	if gotPath != "/v1beta/models/gemini-2.0-flash:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("api key header = %q", gotKey)
	}
	if len(gotReq.Contents) != 1 || len(gotReq.Contents[0].Parts) != 1 || gotReq.Contents[0].Parts[0].Text != "hi" {
		t.Fatalf("request = %+v", gotReq)
	}
}

func TestGeminiFailureClasses(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   Class
	}{
		{name: "unauthorized", status: 401, body: `{"error":{"code":401,"message":"bad key"}}`, want: ClassAuth},
		{name: "forbidden", status: 403, body: `{}`, want: ClassAuth},
		{name: "bad request", status: 400, body: `{"error":{"code":400,"message":"invalid payload"}}`, want: ClassBadRequest},
		{name: "not found", status: 404, body: ``, want: ClassBadRequest},
		{name: "server error", status: 500, body: `oops`, want: ClassTransport},
		{name: "undecodable", status: 200, body: `not json`, want: ClassTransport},
		{name: "no candidates", status: 200, body: `{"candidates":[]}`, want: ClassTransport},
		{name: "blocked", status: 200, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, want: ClassTransport},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := g.Generate(context.Background(), "hi")
			var gerr *Error
			if !errors.As(err, &gerr) {
				t.Fatalf("err = %v, want *generation.Error", err)
			}
			if gerr.Class != tc.want {
				t.Fatalf("class = %q, want %q (err %v)", gerr.Class, tc.want, err)
			}
		})
	}
}

func TestGeminiErrorMessageFromBody(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"invalid payload"}}`)
	})
	_, err := g.Generate(context.Background(), "hi")
	if err == nil || !strings.Contains(err.Error(), "invalid payload") {
		t.Fatalf("err = %v", err)
	}
}

func TestGeminiNetworkErrorHidesKey(t *testing.T) {
	g := NewGemini(GeminiOptions{BaseURL: "http://127.0.0.1:1", Model: "m", APIKey: "secret", Timeout: time.Second})
	_, err := g.Generate(context.Background(), "hi")
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Class != ClassTransport {
		t.Fatalf("err = %v", err)
	}
	if strings.Contains(err.Error(), "127.0.0.1") {
		t.Fatalf("error leaks request url: %v", err)
	}
}

func TestGeminiTimeout(t *testing.T) {
	g := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	g.timeout = 20 * time.Millisecond
	_, err := g.Generate(context.Background(), "hi")
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Class != ClassTransport {
		t.Fatalf("err = %v", err)
	}
}

func TestClassifyStatus(t *testing.T) {
	cases := map[int]Class{
		401: ClassAuth,
		403: ClassAuth,
		400: ClassBadRequest,
		404: ClassBadRequest,
		422: ClassBadRequest,
		429: ClassTransport,
		502: ClassTransport,
	}
	for status, want := range cases {
		if got := ClassifyStatus(status); got != want {
			t.Fatalf("ClassifyStatus(%d) = %q, want %q", status, got, want)
		}
	}
}
