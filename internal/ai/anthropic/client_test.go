package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageResponse(text string) map[string]any {
	return map[string]any{
		"id":   "msg_test_001",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       defaultModel,
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":  10,
			"output_tokens": 5,
		},
	}
}

func TestGenerator_GenerateContent(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/messages")

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse(`[{"name":"Jane Doe","intent":"High"}]`)) //nolint:errcheck
	}))
	defer ts.Close()

	g, err := NewGenerator(Config{APIKey: "test-key", BaseURL: ts.URL, MaxRetries: 1}, nil)
	require.NoError(t, err)

	out, err := g.GenerateContent(context.Background(), "system prompt", "classify these")
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Jane Doe","intent":"High"}]`, out)

	assert.Equal(t, defaultModel, body["model"])
	assert.EqualValues(t, defaultMaxTokens, body["max_tokens"])
	system, ok := body["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "system prompt", system[0].(map[string]any)["text"])
}

func TestGenerator_EmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(messageResponse("   ")) //nolint:errcheck
	}))
	defer ts.Close()

	g, err := NewGenerator(Config{APIKey: "test-key", BaseURL: ts.URL}, nil)
	require.NoError(t, err)

	_, err = g.GenerateContent(context.Background(), "", "classify")
	assert.Error(t, err)
}

func TestGenerator_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`)) //nolint:errcheck
	}))
	defer ts.Close()

	g, err := NewGenerator(Config{APIKey: "bad-key", BaseURL: ts.URL}, nil)
	require.NoError(t, err)

	_, err = g.GenerateContent(context.Background(), "", "classify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic: create message")
}

func TestNewGenerator_Defaults(t *testing.T) {
	_, err := NewGenerator(Config{}, nil)
	assert.Error(t, err)

	g, err := NewGenerator(Config{APIKey: "k", Model: "claude-sonnet-4-5-20250929", MaxTokens: 512}, nil)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5-20250929", g.Model())
	assert.Equal(t, int64(512), g.maxTokens)
}
