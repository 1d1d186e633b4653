// Package store persists one conversation record per chat: the transcript,
// the current step and the two extracted document slots.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/m3rciful/insurancebot/internal/domain"
)

var (
	// ErrInvalidStep rejects writes of steps outside 0..6.
	ErrInvalidStep = errors.New("invalid step")
	// ErrInvalidKind rejects document kinds other than passport and vehicle.
	ErrInvalidKind = errors.New("invalid document kind")
)

// Store is the conversation record store. Every write creates the record when it does not exist.
// Reads of a missing record return zero values: an empty transcript, step 0, an empty document.
type Store interface {
	Transcript(ctx context.Context, chatID string) (string, error)
	// TrimmedTranscript returns the newest whole turns that fit in maxChars characters.
	TrimmedTranscript(ctx context.Context, chatID string, maxChars int) (string, error)
	// AppendTurn appends one user/bot exchange. A record created here starts at step 1.
	AppendTurn(ctx context.Context, chatID, userText, botText string) error

	Step(ctx context.Context, chatID string) (domain.Step, error)
	SetStep(ctx context.Context, chatID string, step domain.Step) error

	Document(ctx context.Context, chatID string, kind domain.DocumentKind) (domain.Document, error)
	// SetDocument overwrites one slot and leaves the other untouched.
	SetDocument(ctx context.Context, chatID string, kind domain.DocumentKind, doc domain.Document) error

	Ping(ctx context.Context) error
}

// Error reports a failed store operation.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code identifies storage failures in handler logs.
func (e *Error) Code() string { return "storage" }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

func validateStep(step domain.Step) error {
	if !step.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
	}
	return nil
}

func validateKind(kind domain.DocumentKind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	return nil
}
