package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	input []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestOpenAIGenerate(t *testing.T) {
	fake := &fakeChatModel{reply: schema.AssistantMessage("Sure [STEP COMPLETED: 5]", nil)}
	g := newOpenAIWithModel(fake, "gpt-test", time.Second)

	out, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out != "Sure [STEP COMPLETED: 5]" {
		t.Fatalf("out = %q", out)
	}
	if len(fake.input) != 1 || fake.input[0].Role != schema.User || fake.input[0].Content != "prompt" {
		t.Fatalf("input = %+v", fake.input)
	}
	if g.Model() != "gpt-test" {
		t.Fatalf("model = %q", g.Model())
	}
}

func TestOpenAIClassifiesErrors(t *testing.T) {
	cases := []struct {
		err  error
		want Class
	}{
		{err: errors.New("error, status code: 401, status: 401 Unauthorized, message: bad key"), want: ClassAuth},
		{err: errors.New("error, status code: 400, status: 400 Bad Request, message: bad"), want: ClassBadRequest},
		{err: errors.New("dial tcp: connection refused"), want: ClassTransport},
	}
	for _, tc := range cases {
		g := newOpenAIWithModel(&fakeChatModel{err: tc.err}, "m", time.Second)
		_, err := g.Generate(context.Background(), "p")
		var gerr *Error
		if !errors.As(err, &gerr) || gerr.Class != tc.want {
			t.Fatalf("Generate(%v) err = %v, want class %q", tc.err, err, tc.want)
		}
	}
}

func TestOpenAIEmptyCompletion(t *testing.T) {
	g := newOpenAIWithModel(&fakeChatModel{reply: schema.AssistantMessage("", nil)}, "m", time.Second)
	_, err := g.Generate(context.Background(), "p")
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Class != ClassTransport {
		t.Fatalf("err = %v", err)
	}
}
