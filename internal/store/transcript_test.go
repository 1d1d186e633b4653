package store

import "testing"

func TestFormatTurnEscapesLineBreaks(t *testing.T) {
	got := FormatTurn("hi\nthere", "line one\r\nline two")
	want := "User: hi\\nthere\nBot: line one\\nline two\n"
	if got != want {
		t.Fatalf("FormatTurn = %q, want %q", got, want)
	}
}

func TestTrimTranscript(t *testing.T) {
	turn := func(u, b string) string { return FormatTurn(u, b) }
	// Every turn below is 15 characters long.
	three := turn("a", "1") + turn("b", "2") + turn("c", "3")

	cases := []struct {
		name string
		raw  string
		max  int
		want string
	}{
		{name: "empty", raw: "", max: 100, want: ""},
		{name: "fits", raw: three, max: 1000, want: three},
		{name: "keeps newest", raw: three, max: 30, want: turn("b", "2") + turn("c", "3")},
		{name: "exact budget", raw: three, max: 45, want: three},
		{name: "newest too long", raw: three, max: 14, want: ""},
		{name: "zero budget", raw: three, max: 0, want: ""},
		{
			name: "drops malformed lines",
			raw:  "garbage\nUser: x\nUser: a\nBot: 1\n\nBot: orphan\nUser: b\nBot: 2\n",
			max:  1000,
			want: turn("a", "1") + turn("b", "2"),
		},
		{name: "counts characters", raw: turn("ä", "ü"), max: 15, want: turn("ä", "ü")},
		{name: "missing trailing newline", raw: "User: a\nBot: 1", max: 100, want: turn("a", "1")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TrimTranscript(tc.raw, tc.max); got != tc.want {
				t.Fatalf("TrimTranscript = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTrimTranscriptSkipsOlderAfterOverflow(t *testing.T) {
	raw := FormatTurn("a", "1") + FormatTurn("a long message that does not fit", "x") + FormatTurn("c", "3")
	if got, want := TrimTranscript(raw, 40), FormatTurn("c", "3"); got != want {
		t.Fatalf("TrimTranscript = %q, want %q", got, want)
	}
}
