package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dygy/scorebot/internal/config"
	apperrors "github.com/dygy/scorebot/internal/errors"
)

// Client calls the chat-completions endpoint that classifies messages.
// The response is untrusted free text; validation happens in the intent
// parser, not here.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates an oracle client from config. Mistral's API is
// chat-completions compatible, so the OpenAI client works against it
// with a swapped base URL.
func NewClient(cfg config.OracleConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		timeout: timeout,
	}
}

// Classify sends the prompt payload and returns the raw response text.
// Deadline expiry surfaces as ErrOracleTimeout.
func (c *Client) Classify(ctx context.Context, payload PromptPayload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		// A literal 0 is dropped by the request's omitempty tag; the
		// smallest nonzero float32 is how the client library spells
		// "send temperature 0".
		Temperature: math.SmallestNonzeroFloat32,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: payload.System},
			{Role: openai.ChatMessageRoleUser, Content: payload.User},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", apperrors.ErrOracleTimeout
		}
		return "", fmt.Errorf("oracle call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", apperrors.ErrMalformedResponse)
	}

	content := resp.Choices[0].Message.Content
	slog.Debug("oracle classified message", "duration", time.Since(start), "response_length", len(content))
	return content, nil
}
