package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaudeComplete(t *testing.T) {
	var body map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-test",
  "content": [{"type": "text", "text": "{\"name\":\"张三\"}"}],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`)
	}))
	defer srv.Close()

	p, err := NewClaudeProvider(Config{Provider: "anthropic", BaseURL: srv.URL, APIKey: "k", Model: "claude-test"})
	require.NoError(t, err)

	text, err := p.Complete(context.Background(), "résumé text", ModeResumeParse)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"张三"}`, text)
	assert.Equal(t, "/v1/messages", path)
	assert.Equal(t, "claude-test", body["model"])
	assert.InDelta(t, 0.2, body["temperature"], 1e-6)
}

func TestClaudeClassifiesStatus(t *testing.T) {
	for status, want := range map[int]error{
		http.StatusUnauthorized:    ErrAuth,
		http.StatusTooManyRequests: ErrRateLimited,
		http.StatusBadGateway:      ErrServerUnavailable,
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			fmt.Fprint(w, `{"type":"error","error":{"type":"api_error","message":"nope"}}`)
		}))

		p, err := NewClaudeProvider(Config{BaseURL: srv.URL, APIKey: "k", Model: "claude-test"})
		require.NoError(t, err)
		_, err = p.Complete(context.Background(), "x", ModeFormFill)
		assert.ErrorIs(t, err, want, status)
		srv.Close()
	}
}

func TestClaudeRequiresKeyAndModel(t *testing.T) {
	_, err := NewClaudeProvider(Config{Model: "claude-test"})
	assert.ErrorIs(t, err, ErrConfigIncomplete)
}
