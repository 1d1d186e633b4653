package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLine(t *testing.T, format logFormat, emit func(log *slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	return line
}

func assertOrdered(t *testing.T, line string, parts ...string) {
	t.Helper()
	pos := -1
	for _, part := range parts {
		idx := strings.Index(line, part)
		if idx == -1 || idx < pos {
			t.Fatalf("%s not found in order within %s", part, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(Background(), "rid-123"), 42, 7, 9)
	line := captureLine(t, formatKV, func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", "conversation"), slog.LevelInfo, "step.changed",
			slog.Int("to", 3),
			slog.Int("from", 2),
			slog.String("status", "ok"),
		)
	})
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=conversation", "event=step.changed", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	assertOrdered(t, line, "update_id=42", "user_id=7", "chat_id=9", "from=2", "to=3")
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithUpdateMeta(WithRID(Background(), "rid-json"), 11, 22, 33)
	line := captureLine(t, formatJSON, func(log *slog.Logger) {
		LogEvent(ctx, log.With("component", "generation"), slog.LevelError, "generate.failed",
			slog.String("status", "fail"),
			slog.String("err", "boom"),
			slog.String("err_code", "GENERATION_AUTH"),
		)
	})
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	assertOrdered(t, line,
		`{"ts":`, `"level":"ERROR"`, `"component":"generation"`, `"event":"generate.failed"`,
		`"status":"fail"`, `"rid":"rid-json"`, `"err":"boom"`, `"err_code":"GENERATION_AUTH"`,
	)
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	raw := "123:456:789"
	line := captureLine(t, formatKV, func(log *slog.Logger) {
		LogEvent(WithRID(Background(), raw), log, slog.LevelInfo, "rid.test", slog.String("status", "ok"))
	})
	if !strings.Contains(line, "rid="+CompactRID(raw)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	raw := "12:34:56"
	line := captureLine(t, formatJSON, func(log *slog.Logger) {
		LogEvent(WithRID(Background(), raw), log, slog.LevelInfo, "rid.test", slog.String("status", "ok"))
	})
	if !strings.Contains(line, `"rid":"`+CompactRID(raw)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+raw+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano in JSON output, got %s", line)
	}
}

func TestStructuredHandlerNormalizesFields(t *testing.T) {
	line := captureLine(t, formatKV, func(log *slog.Logger) {
		log.LogAttrs(context.Background(), slog.LevelWarn, "extract.done",
			slog.String("status", "OK"),
			slog.String("outcome", "bogus"),
			slog.Duration("duration", 1499*time.Microsecond),
			slog.String("doc_kind", ""),
		)
	})
	for _, want := range []string{"component=app", "event=extract.done", "status=ok", "duration_ms=1"} {
		if !strings.Contains(line, want) {
			t.Fatalf("missing %s in %s", want, line)
		}
	}
	for _, unwanted := range []string{"outcome=", "doc_kind="} {
		if strings.Contains(line, unwanted) {
			t.Fatalf("unexpected %s in %s", unwanted, line)
		}
	}
}

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"rid-1":     "rid-1",
		"36:36:36":  "10.10.10",
		"1:x:2":     "1:x:2",
		"1:2":       "1:2",
		"35:0:1295": "z.0.zz",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Fatalf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRatioSpec(t *testing.T) {
	cases := []struct {
		in       string
		num, den int
	}{
		{"1/50", 1, 50},
		{"10", 1, 10},
		{"", 0, 0},
		{"a/b", 0, 0},
	}
	for _, tc := range cases {
		num, den := parseRatioSpec(tc.in)
		if num != tc.num || den != tc.den {
			t.Fatalf("parseRatioSpec(%q) = %d/%d, want %d/%d", tc.in, num, den, tc.num, tc.den)
		}
	}

	s := newRatioSampler(1, 3)
	allowed := 0
	for range 9 {
		if s.Allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("sampler allowed %d of 9, want 3", allowed)
	}
}
