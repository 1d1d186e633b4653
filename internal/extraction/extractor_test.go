package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m3rciful/insurancebot/internal/domain"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeProvider struct {
	rec   Recognition
	err   error
	block bool
	calls int
	mime  string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Recognize(ctx context.Context, _ []byte, mimeType string, _ domain.DocumentKind) (Recognition, error) {
	f.calls++
	f.mime = mimeType
	if f.block {
		<-ctx.Done()
		return Recognition{}, ctx.Err()
	}
	return f.rec, f.err
}

func (f *fakeProvider) Close() error { return nil }

func writePhoto(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write photo: %v", err)
	}
	return path
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("photo %s still exists (stat err = %v)", path, err)
	}
}

func assertReason(t *testing.T, err error, want Reason) {
	t.Helper()
	var xerr *Error
	if !errors.As(err, &xerr) {
		t.Fatalf("err = %v, want *extraction.Error", err)
	}
	if xerr.Reason != want {
		t.Fatalf("reason = %q, want %q", xerr.Reason, want)
	}
}

func TestExtractSuccessRemovesPhoto(t *testing.T) {
	fp := &fakeProvider{rec: Recognition{Text: "Surname: DOE\nGiven names: JOHN\n"}}
	path := writePhoto(t, pngHeader)

	doc, err := New(fp, time.Second).Extract(context.Background(), path, domain.Passport)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	assertRemoved(t, path)
	if fp.mime != "image/png" {
		t.Fatalf("mime = %q", fp.mime)
	}
	if doc.Kind != domain.Passport || doc.Provider != "fake" {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.FullText != "Surname: DOE\nGiven names: JOHN" {
		t.Fatalf("full text = %q", doc.FullText)
	}
	if doc.Passport == nil || doc.Passport.FullName() != "JOHN DOE" {
		t.Fatalf("passport = %+v", doc.Passport)
	}
}

func TestExtractFailuresRemovePhoto(t *testing.T) {
	cases := []struct {
		name   string
		data   []byte
		fp     *fakeProvider
		want   Reason
		called bool
	}{
		{name: "provider error", data: pngHeader, fp: &fakeProvider{err: errors.New("rejected")}, want: ReasonProvider, called: true},
		{name: "empty text", data: pngHeader, fp: &fakeProvider{rec: Recognition{Text: "  \n"}}, want: ReasonEmpty, called: true},
		{name: "not an image", data: []byte("%PDF-1.7 hello"), fp: &fakeProvider{}, want: ReasonUnsupported},
		{name: "empty file", data: []byte{}, fp: &fakeProvider{}, want: ReasonRead},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePhoto(t, tc.data)
			_, err := New(tc.fp, time.Second).Extract(context.Background(), path, domain.Vehicle)
			assertReason(t, err, tc.want)
			assertRemoved(t, path)
			if got := tc.fp.calls > 0; got != tc.called {
				t.Fatalf("provider called = %v, want %v", got, tc.called)
			}
		})
	}
}

func TestExtractTimeout(t *testing.T) {
	path := writePhoto(t, pngHeader)
	_, err := New(&fakeProvider{block: true}, 20*time.Millisecond).Extract(context.Background(), path, domain.Passport)
	assertReason(t, err, ReasonTimeout)
	assertRemoved(t, path)
}

func TestExtractMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jpg")
	_, err := New(&fakeProvider{}, time.Second).Extract(context.Background(), path, domain.Passport)
	assertReason(t, err, ReasonRead)
}

func TestErrorCodeAndCause(t *testing.T) {
	err := &Error{Kind: domain.Vehicle, Reason: ReasonTimeout, Err: context.DeadlineExceeded}
	if err.Code() != "extraction_timeout" {
		t.Fatalf("code = %q", err.Code())
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("Error does not unwrap its cause")
	}
	if err.Cause() == "" {
		t.Fatal("empty cause")
	}
}
