package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
)

// DefaultChatModel is used when no chat model is configured.
const DefaultChatModel = openai.ChatModelGPT4oMini

// OpenAI generates text through the OpenAI chat completions API.
type OpenAI struct {
	client      *openai.Client
	model       openai.ChatModel
	temperature float64
}

// NewOpenAI creates a chat model on top of an existing OpenAI client.
// An empty model name selects DefaultChatModel.
func NewOpenAI(client *openai.Client, model string) *OpenAI {
	m := openai.ChatModel(model)
	if model == "" {
		m = DefaultChatModel
	}
	return &OpenAI{
		client:      client,
		model:       m,
		temperature: 0.2,
	}
}

// Generate sends prompt as a single user message and returns the first choice.
// Rate limit errors (HTTP 429) are retried with exponential backoff; other
// errors fail immediately.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	var text string

	operation := func() error {
		resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model:       o.model,
			Temperature: openai.Float(o.temperature),
		})
		if err != nil {
			if isRateLimitError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(ErrEmptyResponse)
		}
		text = resp.Choices[0].Message.Content
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return text, nil
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}
