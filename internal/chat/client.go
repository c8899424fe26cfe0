// Package chat proxies the assistant widget to the OpenAI chat completions API.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"polyglot/internal/middleware"
	"polyglot/internal/models"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel  = openai.GPT3Dot5Turbo
	NoReply       = "I didn't get a response..."
	maxMessageLen = 4000
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("chat completion is not configured")

type Client struct {
	api   *openai.Client
	model string
}

// NewClient returns nil when apiKey is empty.
func NewClient(apiKey, model string) *Client {
	if apiKey == "" {
		return nil
	}
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model)
}

func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// Reply sends message as a single user turn and returns the first choice.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", models.NewValidationError("Message is required")
	}
	if len(message) > maxMessageLen {
		return "", models.NewValidationError(fmt.Sprintf("Message must not exceed %d characters", maxMessageLen))
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "chat completion failed", "model", c.model, "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return NoReply, nil
	}
	return resp.Choices[0].Message.Content, nil
}
