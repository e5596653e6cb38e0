package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/belljun3395/okchat/internal/domain"
)

func chatServer(t *testing.T, status int, body any, check func(map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if check != nil {
			var req map[string]any
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			check(req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
}

func TestChatModel_Complete(t *testing.T) {
	server := chatServer(t, http.StatusOK, map[string]any{
		"id":     "cmpl-1",
		"object": "chat.completion",
		"model":  "gpt-test",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": "TYPE: HOW_TO"},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15},
	}, func(req map[string]any) {
		if req["model"] != "gpt-test" {
			t.Errorf("model = %v", req["model"])
		}
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(msgs))
		}
		if m := msgs[0].(map[string]any); m["role"] != "user" || m["content"] != "classify me" {
			t.Errorf("unexpected message: %v", m)
		}
		if req["max_tokens"] != float64(50) {
			t.Errorf("max_tokens = %v", req["max_tokens"])
		}
	})
	defer server.Close()

	chat := NewChatModel(&Config{APIKey: "k", BaseURL: server.URL, Model: "gpt-test", Provider: "test"})
	ctx, usage := domain.NewContextWithUsage(context.Background())

	res, err := chat.Complete(ctx, domain.NewPromptRequest("classify me", 0.1, 50))
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if res.Content != "TYPE: HOW_TO" {
		t.Errorf("content = %q", res.Content)
	}
	if res.PromptTokens != 12 || res.CompletionTokens != 3 || res.TotalTokens != 15 {
		t.Errorf("unexpected usage: %+v", res)
	}
	if snap := usage.Snapshot(); snap.ChatCalls != 1 || snap.ChatTokens != 15 {
		t.Errorf("unexpected request usage: %+v", snap)
	}
}

func TestChatModel_EmptyChoices(t *testing.T) {
	server := chatServer(t, http.StatusOK, map[string]any{"id": "x", "choices": []any{}}, nil)
	defer server.Close()

	chat := NewChatModel(&Config{APIKey: "k", BaseURL: server.URL, Model: "m", Provider: "test"})
	_, err := chat.Complete(context.Background(), domain.NewPromptRequest("q", 0, 10))
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
}

func TestChatModel_APIError(t *testing.T) {
	server := chatServer(t, http.StatusInternalServerError, map[string]any{
		"error": map[string]any{"message": "boom", "type": "server_error"},
	}, nil)
	defer server.Close()

	chat := NewChatModel(&Config{APIKey: "k", BaseURL: server.URL, Model: "m", Provider: "test"})
	_, err := chat.Complete(context.Background(), domain.NewPromptRequest("q", 0, 10))
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"quota"}`)); got != "quota" {
		t.Errorf("detail = %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("detail = %q", got)
	}
}
