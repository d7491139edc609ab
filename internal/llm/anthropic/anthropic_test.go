package anthropic_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/llm/anthropic"
)

const messageReply = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"content": [{"type": "text", "text": "[{\"title\":\"A\"}]"}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestClient_Complete(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messageReply))
	}))
	t.Cleanup(srv.Close)

	client := anthropic.New(anthropic.Config{APIKey: "test-key", Model: "claude-test", BaseURL: srv.URL})

	got, err := client.Complete(context.Background(), llm.Request{
		System:      "You generate project ideas.",
		Prompt:      "Generate 3 project ideas",
		Temperature: 0.8,
		MaxTokens:   512,
		JSON:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"A"}]`, got)

	assert.Equal(t, "claude-test", captured["model"])
	assert.InDelta(t, 512, captured["max_tokens"], 0)
	system, ok := captured["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Contains(t, system[0].(map[string]any)["text"], "JSON only")
}

func TestClient_ThrottleBecomesStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	t.Cleanup(srv.Close)

	client := anthropic.New(anthropic.Config{APIKey: "k", BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), llm.Request{Prompt: "p"})

	var statusErr *llm.StatusError
	require.True(t, errors.As(err, &statusErr), "got %v", err)
	assert.True(t, statusErr.Throttled())
	assert.True(t, llm.IsRetryable(err))
}
