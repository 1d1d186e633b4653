package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/insurancebot/internal/domain"
	"github.com/m3rciful/insurancebot/internal/store"
)

type fakeExtractor struct {
	docs  map[domain.DocumentKind]domain.Document
	err   error
	kinds []domain.DocumentKind
}

func (f *fakeExtractor) Extract(_ context.Context, _ string, kind domain.DocumentKind) (domain.Document, error) {
	f.kinds = append(f.kinds, kind)
	if f.err != nil {
		return domain.Document{}, f.err
	}
	return f.docs[kind], nil
}

type fakeGenerator struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeGenerator) Model() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", errors.New("no reply queued")
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

type photo struct {
	path string
	err  error
}

func (p photo) Save(context.Context, string) (string, error) { return p.path, p.err }

type published struct {
	name string
	data any
}

type recorder struct {
	mu     sync.Mutex
	events []published
}

func (r *recorder) Publish(_ context.Context, name string, data any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{name: name, data: data})
	return nil
}

func (r *recorder) Close() error { return nil }

// brokenStore fails every write after the wrapped store has been populated.
type brokenStore struct {
	store.Store
	err error
}

func (b brokenStore) AppendTurn(context.Context, string, string, string) error { return b.err }
func (b brokenStore) SetStep(context.Context, string, domain.Step) error       { return b.err }
func (b brokenStore) SetDocument(context.Context, string, domain.DocumentKind, domain.Document) error {
	return b.err
}

var issueDate = time.Date(2026, 5, 17, 10, 0, 0, 0, time.UTC)

type fixture struct {
	engine    *Engine
	store     *store.Memory
	extractor *fakeExtractor
	generator *fakeGenerator
	events    *recorder
}

func newFixture(t *testing.T, policy StepPolicy) *fixture {
	t.Helper()
	f := &fixture{
		store: store.NewMemory(),
		extractor: &fakeExtractor{docs: map[domain.DocumentKind]domain.Document{
			domain.Passport: {
				Kind:     domain.Passport,
				FullText: "John Doe\nAB123456",
				Passport: &domain.PassportFields{GivenNames: "John", Surname: "Doe", DocumentID: "AB123456"},
			},
			domain.Vehicle: {
				Kind:     domain.Vehicle,
				FullText: "Toyota Corolla 2019",
				Vehicle:  &domain.VehicleFields{Make: "Toyota", Model: "Corolla", Year: "2019", VIN: "1HGCM82633A004352"},
			},
		}},
		generator: &fakeGenerator{},
		events:    &recorder{},
	}
	instructions, err := LoadInstructions("", 100)
	if err != nil {
		t.Fatalf("instructions: %v", err)
	}
	f.engine, err = New(Options{
		Store:        f.store,
		Extractor:    f.extractor,
		Generator:    f.generator,
		Events:       f.events,
		Policy:       policy,
		Instructions: instructions,
		PriceUSD:     100,
		HistoryChars: 2048,
		Now:          func() time.Time { return issueDate },
		PolicyDigits: func() int { return 42 },
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return f
}

func (f *fixture) step(t *testing.T, chatID string) domain.Step {
	t.Helper()
	s, err := f.store.Step(context.Background(), chatID)
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	return s
}
