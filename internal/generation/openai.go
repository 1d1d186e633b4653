package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// OpenAI generates completions through any OpenAI-compatible chat completions endpoint.
type OpenAI struct {
	chat    model.BaseChatModel
	model   string
	timeout time.Duration
}

// NewOpenAI opens an eino chat model for baseURL. An empty baseURL means the OpenAI API.
func NewOpenAI(ctx context.Context, baseURL, modelName, apiKey string, timeout time.Duration) (*OpenAI, error) {
	chat, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   modelName,
		Timeout: timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat model: %w", err)
	}
	return newOpenAIWithModel(chat, modelName, timeout), nil
}

func newOpenAIWithModel(chat model.BaseChatModel, modelName string, timeout time.Duration) *OpenAI {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAI{chat: chat, model: modelName, timeout: timeout}
}

func (o *OpenAI) Model() string { return o.model }

// Generate sends prompt as a single user message.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &Error{Class: ClassTransport, Err: err}
		}
		return "", classifyMessage(err)
	}
	if resp == nil || resp.Content == "" {
		return "", &Error{Class: ClassTransport, Err: errors.New("empty completion")}
	}
	return resp.Content, nil
}
