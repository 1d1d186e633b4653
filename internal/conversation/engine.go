// Package conversation runs the insurance purchase dialogue: it routes every inbound event through
// the step machine, calls document recognition and the language model, and produces one reply per event.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/insurancebot/core/logger"
	"github.com/m3rciful/insurancebot/internal/domain"
	"github.com/m3rciful/insurancebot/internal/events"
	"github.com/m3rciful/insurancebot/internal/generation"
	"github.com/m3rciful/insurancebot/internal/store"
)

// Extractor recognises a saved photo as one document kind and removes the file.
type Extractor interface {
	Extract(ctx context.Context, path string, kind domain.DocumentKind) (domain.Document, error)
}

// PhotoSource saves the photo carried by the current update into dir and returns its path.
type PhotoSource interface {
	Save(ctx context.Context, dir string) (string, error)
}

// ErrPhotoUnavailable reports that a photo could not be fetched from the chat transport.
var ErrPhotoUnavailable = errors.New("photo unavailable")

type photoError struct{ err error }

func (e *photoError) Error() string   { return "photo unavailable: " + e.err.Error() }
func (e *photoError) Unwrap() []error { return []error{ErrPhotoUnavailable, e.err} }
func (e *photoError) Code() string    { return "photo_unavailable" }

// Options wires the engine to its collaborators.
type Options struct {
	Store     store.Store
	Extractor Extractor
	Generator generation.Generator
	// Events is optional.
	Events events.Publisher
	// Policy defaults to Guarded.
	Policy       StepPolicy
	Instructions string
	PriceUSD     int
	HistoryChars int
	// TempDir receives downloaded photos; empty means the system temp dir.
	TempDir string

	Now          func() time.Time
	PolicyDigits func() int
}

// Engine handles the four inbound event kinds. It holds no per-chat state; callers must
// deliver the events of one chat sequentially.
type Engine struct {
	store        store.Store
	extractor    Extractor
	generator    generation.Generator
	events       events.Publisher
	policy       StepPolicy
	instructions string
	priceUSD     int
	historyChars int
	tempDir      string
	now          func() time.Time
	digits       func() int
}

// New validates opts and returns an engine.
func New(opts Options) (*Engine, error) {
	switch {
	case opts.Store == nil:
		return nil, errors.New("conversation: store is required")
	case opts.Extractor == nil:
		return nil, errors.New("conversation: extractor is required")
	case opts.Generator == nil:
		return nil, errors.New("conversation: generator is required")
	}
	e := &Engine{
		store:        opts.Store,
		extractor:    opts.Extractor,
		generator:    opts.Generator,
		events:       opts.Events,
		policy:       opts.Policy,
		instructions: opts.Instructions,
		priceUSD:     opts.PriceUSD,
		historyChars: opts.HistoryChars,
		tempDir:      opts.TempDir,
		now:          opts.Now,
		digits:       opts.PolicyDigits,
	}
	if e.events == nil {
		e.events = events.Noop{}
	}
	if e.policy == nil {
		e.policy = Guarded{}
	}
	if e.historyChars <= 0 {
		e.historyChars = store.DefaultHistoryChars
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.digits == nil {
		e.digits = randomDigits
	}
	return e, nil
}

// Start greets the user and moves the conversation to the passport step.
func (e *Engine) Start(ctx context.Context, chatID string) (string, error) {
	from, err := e.store.Step(ctx, chatID)
	if err != nil {
		return SomethingWrongText, err
	}
	if err := e.store.AppendTurn(ctx, chatID, "/start", GreetingText); err != nil {
		return SomethingWrongText, err
	}
	if err := e.moveStep(ctx, chatID, from, domain.StepAwaitingPassport, "start"); err != nil {
		return SomethingWrongText, err
	}
	return GreetingText, nil
}

// UnknownCommand answers a command that has no handler. Nothing is persisted.
func (e *Engine) UnknownCommand(context.Context, string) string {
	return UnknownCommandText
}

// UnsupportedUpload answers a file upload that is not an image. Nothing is persisted.
func (e *Engine) UnsupportedUpload(context.Context, string) string {
	return NonPhotoUploadText
}

// Photo processes a document photo. Before the vehicle step it is read as a passport,
// afterwards as a vehicle document. A failed photo leaves the step unchanged.
func (e *Engine) Photo(ctx context.Context, chatID string, src PhotoSource) (string, error) {
	step, err := e.store.Step(ctx, chatID)
	if err != nil {
		return SomethingWrongText, err
	}
	kind := domain.DocumentFor(step)

	path, err := src.Save(ctx, e.tempDir)
	if err != nil {
		return PhotoSaveFailedText, &photoError{err: err}
	}
	doc, err := e.extractor.Extract(ctx, path, kind)
	if err != nil {
		return extractionFailedText(kind, err), err
	}
	if err := e.store.SetDocument(ctx, chatID, kind, doc); err != nil {
		return SomethingWrongText, err
	}

	next, reply := domain.StepAwaitingVehicle, passportProcessedText(doc.FullText)
	if kind == domain.Vehicle {
		passport, err := e.store.Document(ctx, chatID, domain.Passport)
		if err != nil {
			return SomethingWrongText, err
		}
		next, reply = domain.StepAwaitingConfirmation, bothDocumentsText(passport.FullText, doc.FullText)
	}

	if err := e.store.AppendTurn(ctx, chatID, photoTurnText(kind), reply); err != nil {
		return SomethingWrongText, err
	}
	if err := e.moveStep(ctx, chatID, step, next, "photo"); err != nil {
		return SomethingWrongText, err
	}
	return reply, nil
}

// Text answers free text through the language model and applies the step it reports,
// subject to the step policy. Reaching the final step attaches the rendered policy.
func (e *Engine) Text(ctx context.Context, chatID, text string) (string, error) {
	step, err := e.store.Step(ctx, chatID)
	if err != nil {
		return SomethingWrongText, err
	}
	history, err := e.store.TrimmedTranscript(ctx, chatID, e.historyChars)
	if err != nil {
		return SomethingWrongText, err
	}

	prompt := BuildPrompt(history, text, e.instructions, step)
	start := time.Now()
	completion, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		var code string
		var gerr *generation.Error
		if errors.As(err, &gerr) {
			code = gerr.Code()
		}
		logger.Warn(ctx, "conversation", "generation.failed",
			slog.String("status", "fail"),
			slog.String("model", e.generator.Model()),
			slog.Int("step", int(step)),
			slog.String("err_code", code),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.Duration("duration", time.Since(start)),
		)
		return generationFailedText(err), err
	}

	hint, found, reply := ParseMarker(completion)
	next := step
	if found {
		var accepted bool
		next, accepted = e.policy.Resolve(step, hint)
		if !accepted {
			logger.Info(ctx, "conversation", "step.hint_rejected",
				slog.String("status", "rejected"),
				slog.Int("step", int(step)),
				slog.Int("hint", int(hint)),
				slog.String("mode", e.policy.Name()),
			)
		}
	}
	logger.Debug(ctx, "conversation", "generation.done",
		slog.String("model", e.generator.Model()),
		slog.Int("step", int(step)),
		slog.Int("hint", int(hint)),
		slog.Int("history_chars", logger.Chars(history)),
		slog.Int("prompt_chars", logger.Chars(prompt)),
		slog.Int("reply_chars", logger.Chars(reply)),
		slog.Duration("duration", time.Since(start)),
	)

	if strings.TrimSpace(reply) == "" {
		reply = EmptyCompletionText
	}

	var issued *Policy
	if next == domain.StepPolicyIssued && step != domain.StepPolicyIssued {
		p, err := e.issuePolicy(ctx, chatID)
		if err != nil {
			return SomethingWrongText, err
		}
		reply += "\n\n" + p.Text
		issued = &p
	}

	if err := e.store.AppendTurn(ctx, chatID, text, reply); err != nil {
		return SomethingWrongText, err
	}
	if err := e.moveStep(ctx, chatID, step, next, "model"); err != nil {
		return SomethingWrongText, err
	}
	if issued != nil {
		logger.Info(ctx, "conversation", "policy.issued",
			slog.String("status", "ok"),
			slog.String("policy_number", issued.Number),
		)
		e.publish(ctx, events.PolicyIssued, events.PolicyIssue{
			ChatID:       chatID,
			PolicyNumber: issued.Number,
			PremiumUSD:   e.priceUSD,
		})
	}
	return reply, nil
}

func (e *Engine) issuePolicy(ctx context.Context, chatID string) (Policy, error) {
	passport, err := e.store.Document(ctx, chatID, domain.Passport)
	if err != nil {
		return Policy{}, err
	}
	vehicle, err := e.store.Document(ctx, chatID, domain.Vehicle)
	if err != nil {
		return Policy{}, err
	}
	return RenderPolicy(e.now(), e.digits(), e.priceUSD, passport, vehicle)
}

// moveStep persists to when it differs from from, then logs and publishes the change.
func (e *Engine) moveStep(ctx context.Context, chatID string, from, to domain.Step, source string) error {
	if from == to {
		return nil
	}
	if err := e.store.SetStep(ctx, chatID, to); err != nil {
		return err
	}
	logger.Info(ctx, "conversation", "step.changed",
		slog.Int("from", int(from)),
		slog.Int("to", int(to)),
		slog.String("source", source),
	)
	e.publish(ctx, events.StepChanged, events.StepChange{
		ChatID: chatID,
		From:   int(from),
		To:     int(to),
		Source: source,
	})
	return nil
}

func (e *Engine) publish(ctx context.Context, name string, data any) {
	if err := e.events.Publish(ctx, name, data); err != nil {
		logger.Warn(ctx, "events", "event.publish",
			slog.String("status", "fail"),
			slog.String("subject", name),
			slog.String("err", err.Error()),
		)
	}
}
