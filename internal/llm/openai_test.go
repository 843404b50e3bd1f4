package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, strict bool, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return newOpenAICompatible(ProviderOpenAI, ProviderConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: server.URL + "/v1",
	}, strict)
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
				},
				"finish_reason": finish,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	}
}

func TestOpenAIProvider_HappyPath(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"insights":["a","b","c"]}`, "stop"))
	}

	p := newTestOpenAIProvider(t, true, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:    "You are an interview coach.",
		Messages:  []Message{{Role: RoleUser, Content: "Give insights."}},
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Usage.InputTokens)
	assert.Equal(t, 25, resp.Usage.OutputTokens)
	assert.Equal(t, "end", resp.StopReason)
}

func TestOpenAIProvider_StrictSchemaRequest(t *testing.T) {
	var body map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"answer":"5"}`, "stop"))
	}

	p := newTestOpenAIProvider(t, true, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
		Schema:   answerSchema(),
	})
	require.NoError(t, err)

	format, ok := body["response_format"].(map[string]any)
	require.True(t, ok, "response_format missing")
	assert.Equal(t, "json_schema", format["type"])
}

func TestOpenAIProvider_JSONObjectModeAddsSchemaToPrompt(t *testing.T) {
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		ResponseFormat map[string]any `json:"response_format"`
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion("```json\n{\"answer\":\"5\"}\n```", "stop"))
	}

	p := newTestOpenAIProvider(t, false, handler)
	resp, err := p.Generate(context.Background(), Request{
		System:   "Be brief.",
		Messages: []Message{{Role: RoleUser, Content: "test"}},
		Schema:   answerSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"5"}`, string(resp.Content))

	assert.Equal(t, "json_object", body.ResponseFormat["type"])
	require.NotEmpty(t, body.Messages)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.True(t, strings.HasPrefix(body.Messages[0].Content, "Be brief."))
	assert.Contains(t, body.Messages[0].Content, `"answer"`)
}

func TestOpenAIProvider_Truncated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"answer":`, "length"))
	}

	p := newTestOpenAIProvider(t, true, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
		Schema:   answerSchema(),
	})
	var maxTok *ErrMaxTokensExceeded
	require.ErrorAs(t, err, &maxTok)
}

func TestOpenAIProvider_RateLimit(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "tokens",
				"message": "Rate limit exceeded",
				"code":    "rate_limit_exceeded",
			},
		})
	}

	p := newTestOpenAIProvider(t, true, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ServerError(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "server_error",
				"message": "Internal server error",
			},
		})
	}

	p := newTestOpenAIProvider(t, true, handler)
	_, err := p.Generate(context.Background(), Request{
		Messages:  []Message{{Role: RoleUser, Content: "test"}},
		MaxTokens: 100,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T (%v)", err, err)
	}
	if unavail.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", unavail.Provider)
	}
}

func TestOpenAIProvider_Identity(t *testing.T) {
	p, err := NewOpenAIProvider(ProviderConfig{APIKey: "test-key", Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
	assert.Equal(t, ProviderOpenAI, p.Name())

	_, err = NewOpenAIProvider(ProviderConfig{})
	assert.Error(t, err)
}

func TestGroqProvider_Defaults(t *testing.T) {
	p, err := NewGroqProvider(ProviderConfig{APIKey: "gsk-test", Model: "llama-3.3-70b"})
	require.NoError(t, err)
	assert.Equal(t, ProviderGroq, p.Name())
	assert.Equal(t, "llama-3.3-70b-versatile", p.ModelID())
	assert.False(t, p.strict)

	_, err = NewGroqProvider(ProviderConfig{})
	assert.Error(t, err)
}

func TestGroqProvider_UsesBaseURL(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatCompletion(`{"answer":"5"}`, "stop"))
	}))
	t.Cleanup(server.Close)

	p, err := NewGroqProvider(ProviderConfig{APIKey: "gsk-test", Model: "llama-3.1-8b", BaseURL: server.URL + "/openai/v1"})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "test"}},
		Schema:   answerSchema(),
	})
	require.NoError(t, err)
	assert.Equal(t, "/openai/v1/chat/completions", path)
}

func answerSchema() *Schema {
	return &Schema{
		Name: "answer-object",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answer": map[string]any{"type": "string"},
			},
			"required":             []any{"answer"},
			"additionalProperties": false,
		},
	}
}
