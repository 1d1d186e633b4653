package generation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/m3rciful/insurancebot/core/logger"
)

const maxResponseBytes = 4 << 20

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiOptions configures the Gemini REST client.
type GeminiOptions struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

// Gemini calls the generateContent endpoint of the Gemini API.
type Gemini struct {
	endpoint string
	model    string
	apiKey   string
	timeout  time.Duration
	client   *http.Client
}

// NewGemini returns a client for {BaseURL}/models/{Model}:generateContent.
func NewGemini(opts GeminiOptions) *Gemini {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gemini{
		endpoint: strings.TrimRight(opts.BaseURL, "/") + "/models/" + url.PathEscape(opts.Model) + ":generateContent",
		model:    opts.Model,
		apiKey:   opts.APIKey,
		timeout:  timeout,
		client:   client,
	}
}

func (g *Gemini) Model() string { return g.model }

// Generate sends prompt as a single user part and returns the text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := sonic.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", &Error{Class: ClassBadRequest, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Class: ClassBadRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return "", &Error{Class: ClassTransport, Err: stripURL(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &Error{Class: ClassTransport, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	var out geminiResponse
	decodeErr := sonic.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil && out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return "", &Error{Class: ClassifyStatus(resp.StatusCode), Status: resp.StatusCode, Err: errors.New(msg)}
	}
	if decodeErr != nil {
		return "", &Error{Class: ClassTransport, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", decodeErr)}
	}

	text := out.text()
	if text == "" {
		reason := "no candidates"
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			reason = "blocked: " + out.PromptFeedback.BlockReason
		}
		return "", &Error{Class: ClassTransport, Status: resp.StatusCode, Err: errors.New(reason)}
	}

	logger.Debug(ctx, "generation", "generation.done",
		slog.String("status", "ok"),
		slog.String("model", g.model),
		slog.Int("prompt_chars", logger.Chars(prompt)),
		slog.Int("reply_chars", logger.Chars(text)),
		slog.Duration("duration", time.Since(start)),
	)
	return text, nil
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// stripURL drops the request URL from transport errors.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
