// Package extraction turns a photographed passport or vehicle document into a normalized
// domain.Document using a cloud recognition service.
package extraction

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
	"github.com/m3rciful/insurancebot/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Extractor runs one recognition per photo and always removes the photo afterwards.
type Extractor struct {
	provider Provider
	timeout  time.Duration
}

// New returns an extractor over provider. A non-positive timeout selects the default.
func New(provider Provider, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Extractor{provider: provider, timeout: timeout}
}

// Extract recognises the image at path as a document of kind. The file at path is removed
// on every return path. Failures are returned as *Error.
func (e *Extractor) Extract(ctx context.Context, path string, kind domain.DocumentKind) (domain.Document, error) {
	defer removeQuietly(ctx, path)

	if !kind.Valid() {
		return domain.Document{}, e.fail(ctx, kind, ReasonUnsupported, errors.New("unknown document kind"), 0)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, e.fail(ctx, kind, ReasonRead, err, 0)
	}
	if len(data) == 0 {
		return domain.Document{}, e.fail(ctx, kind, ReasonRead, errors.New("empty file"), 0)
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return domain.Document{}, e.fail(ctx, kind, ReasonUnsupported, errors.New(mimeType), 0)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	rec, err := e.provider.Recognize(callCtx, data, mimeType, kind)
	took := time.Since(start)
	if err != nil {
		reason := ReasonProvider
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			reason = ReasonTimeout
		}
		return domain.Document{}, e.fail(ctx, kind, reason, err, took)
	}
	if strings.TrimSpace(rec.Text) == "" {
		return domain.Document{}, e.fail(ctx, kind, ReasonEmpty, nil, took)
	}

	doc := Project(kind, rec)
	doc.Provider = e.provider.Name()
	logger.Info(ctx, "extraction", "extraction.done",
		slog.String("status", "ok"),
		slog.String("doc_kind", string(kind)),
		slog.String("provider", doc.Provider),
		slog.Int("chars", logger.Chars(doc.FullText)),
		slog.Duration("duration", took),
	)
	return doc, nil
}

func (e *Extractor) fail(ctx context.Context, kind domain.DocumentKind, reason Reason, cause error, took time.Duration) error {
	xerr := &Error{Kind: kind, Reason: reason, Err: cause}
	attrs := []slog.Attr{
		slog.String("status", "fail"),
		slog.String("doc_kind", string(kind)),
		slog.String("provider", e.provider.Name()),
		slog.String("err_code", xerr.Code()),
		slog.Duration("duration", took),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("err", logger.Sanitize(cause.Error())))
	}
	logger.Warn(ctx, "extraction", "extraction.failed", attrs...)
	return xerr
}

// Close releases the provider client.
func (e *Extractor) Close() error {
	return e.provider.Close()
}

func removeQuietly(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn(ctx, "extraction", "extraction.cleanup",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
