// Package generation sends one self-contained prompt to a language model and returns its completion.
package generation

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	appconfig "github.com/m3rciful/insurancebot/internal/config"
)

// Generator produces one completion per prompt. Implementations keep no conversation state.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Class is the failure class callers react to.
type Class string

const (
	ClassAuth       Class = "auth"
	ClassBadRequest Class = "bad_request"
	ClassTransport  Class = "transport"
)

// Error reports a failed generation. Status is the HTTP status when one was received.
type Error struct {
	Class  Class
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("generation %s (http %d): %v", e.Class, e.Status, e.Err)
	}
	return fmt.Sprintf("generation %s: %v", e.Class, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code is the machine readable failure class used in logs.
func (e *Error) Code() string { return "generation_" + string(e.Class) }

// ClassifyStatus maps an HTTP status to a failure class.
func ClassifyStatus(status int) Class {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ClassAuth
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return ClassBadRequest
	}
	return ClassTransport
}

var statusInMessage = regexp.MustCompile(`status code: (\d{3})`)

// classifyMessage recovers the HTTP status from client errors that only carry it in their text.
func classifyMessage(err error) *Error {
	if m := statusInMessage.FindStringSubmatch(err.Error()); m != nil {
		status, _ := strconv.Atoi(m[1])
		return &Error{Class: ClassifyStatus(status), Status: status, Err: err}
	}
	return &Error{Class: ClassTransport, Err: err}
}

// New builds the generator selected in cfg.
func New(ctx context.Context, cfg appconfig.GenerationConfig, client *http.Client) (Generator, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.Provider {
	case appconfig.GenerationGemini, "":
		return NewGemini(GeminiOptions{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
			Timeout: timeout,
			Client:  client,
		}), nil
	case appconfig.GenerationOpenAI:
		g, err := NewOpenAI(ctx, cfg.BaseURL, cfg.Model, cfg.APIKey, timeout)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
}
