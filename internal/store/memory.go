package store

import (
	"context"
	"strings"
	"sync"

	"github.com/m3rciful/insurancebot/internal/domain"
)

type memoryRecord struct {
	transcript strings.Builder
	step       domain.Step
	passport   domain.Document
	vehicle    domain.Document
}

// Memory is a process-local Store. Records live as long as the process.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*memoryRecord)}
}

var _ Store = (*Memory)(nil)

// upsert runs fn on the record under the write lock, creating it at initial when absent.
func (m *Memory) upsert(chatID string, initial domain.Step, fn func(*memoryRecord)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[chatID]
	if !ok {
		rec = &memoryRecord{step: initial}
		m.records[chatID] = rec
	}
	fn(rec)
}

func (m *Memory) Transcript(_ context.Context, chatID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[chatID]; ok {
		return rec.transcript.String(), nil
	}
	return "", nil
}

func (m *Memory) TrimmedTranscript(ctx context.Context, chatID string, maxChars int) (string, error) {
	raw, err := m.Transcript(ctx, chatID)
	if err != nil {
		return "", err
	}
	return TrimTranscript(raw, maxChars), nil
}

func (m *Memory) AppendTurn(_ context.Context, chatID, userText, botText string) error {
	turn := FormatTurn(userText, botText)
	m.upsert(chatID, domain.StepAwaitingPassport, func(rec *memoryRecord) {
		rec.transcript.WriteString(turn)
	})
	return nil
}

func (m *Memory) Step(_ context.Context, chatID string) (domain.Step, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[chatID]; ok {
		return rec.step, nil
	}
	return domain.StepNotStarted, nil
}

func (m *Memory) SetStep(_ context.Context, chatID string, step domain.Step) error {
	if err := validateStep(step); err != nil {
		return wrap("set_step", err)
	}
	m.upsert(chatID, step, func(rec *memoryRecord) { rec.step = step })
	return nil
}

func (m *Memory) Document(_ context.Context, chatID string, kind domain.DocumentKind) (domain.Document, error) {
	if err := validateKind(kind); err != nil {
		return domain.Document{}, wrap("get_document", err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[chatID]
	if !ok {
		return domain.Document{}, nil
	}
	if kind == domain.Passport {
		return rec.passport, nil
	}
	return rec.vehicle, nil
}

func (m *Memory) SetDocument(_ context.Context, chatID string, kind domain.DocumentKind, doc domain.Document) error {
	if err := validateKind(kind); err != nil {
		return wrap("set_document", err)
	}
	m.upsert(chatID, domain.StepNotStarted, func(rec *memoryRecord) {
		if kind == domain.Passport {
			rec.passport = doc
		} else {
			rec.vehicle = doc
		}
	})
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }
