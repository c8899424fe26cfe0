package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"polyglot/internal/models"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOpenAI(t *testing.T, status int, choices []openai.ChatCompletionChoice) (*Client, *openai.ChatCompletionRequest) {
	t.Helper()
	var seen openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&seen)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{Choices: choices})
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClientWithConfig(cfg, ""), &seen
}

func TestReply(t *testing.T) {
	client, seen := fakeOpenAI(t, http.StatusOK, []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "¡Hola!"}},
	})

	got, err := client.Reply(context.Background(), "  How do I say hello?  ")
	require.NoError(t, err)
	assert.Equal(t, "¡Hola!", got)
	assert.Equal(t, DefaultModel, seen.Model)
	require.Len(t, seen.Messages, 1)
	assert.Equal(t, "How do I say hello?", seen.Messages[0].Content)
}

func TestReply_EmptyCompletion(t *testing.T) {
	client, _ := fakeOpenAI(t, http.StatusOK, nil)
	got, err := client.Reply(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, NoReply, got)
}

func TestReply_UpstreamError(t *testing.T) {
	client, _ := fakeOpenAI(t, http.StatusTooManyRequests, nil)
	_, err := client.Reply(context.Background(), "hi")
	assert.Error(t, err)
}

func TestReply_ValidationAndUnconfigured(t *testing.T) {
	assert.Nil(t, NewClient("", "gpt-4o-mini"))

	var missing *Client
	_, err := missing.Reply(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)

	client := NewClient("k", "")
	_, err = client.Reply(context.Background(), "   ")
	assert.True(t, models.IsCode(err, models.CodeValidation))
}
