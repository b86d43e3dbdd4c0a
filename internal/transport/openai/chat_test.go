package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

func TestChat_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-test" || len(req.Messages) != 2 ||
			req.Messages[0].Role != "system" || req.Messages[1].Content != "question" {
			t.Errorf("unexpected request: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "c1",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "  Covered.  "},
			}},
			"usage": map[string]any{"prompt_tokens": 3, "completion_tokens": 1, "total_tokens": 4},
		})
	}))
	defer srv.Close()

	chat := NewChat(&ChatConfig{ClientConfig: ClientConfig{APIKey: "k", BaseURL: srv.URL}, Model: "gpt-test"})
	got, err := chat.Complete(context.Background(), "system", "question")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "Covered." {
		t.Errorf("Complete() = %q, want trimmed content", got)
	}
	if chat.Model() != "gpt-test" {
		t.Errorf("Model() = %q", chat.Model())
	}
}

func TestChat_NoChoices(t *testing.T) {
	srv := errorServer(t, http.StatusOK, map[string]any{"id": "c1", "choices": []any{}})
	chat := NewChat(&ChatConfig{ClientConfig: ClientConfig{APIKey: "k", BaseURL: srv.URL}, Model: "m"})

	if _, err := chat.Complete(context.Background(), "s", "u"); !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestChat_APIError(t *testing.T) {
	srv := errorServer(t, http.StatusInternalServerError,
		map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}})
	chat := NewChat(&ChatConfig{ClientConfig: ClientConfig{APIKey: "k", BaseURL: srv.URL}, Model: "m"})

	if _, err := chat.Complete(context.Background(), "s", "u"); !errors.Is(err, domain.ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}
