package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

type embeddingData struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Data   []embeddingData `json:"data"`
	Model  string          `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func embeddingServer(t *testing.T, data []embeddingData, tokens int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Dimensions != 0 && req.Dimensions != 4 {
			t.Errorf("unexpected dimensions: %d", req.Dimensions)
		}

		resp := embeddingResponse{Object: "list", Model: "test-model", Data: data}
		resp.Usage.PromptTokens = tokens
		resp.Usage.TotalTokens = tokens
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEmbedder(url string) *Embedder {
	return NewEmbedder(&EmbedderConfig{
		ClientConfig: ClientConfig{APIKey: "test-key", BaseURL: url},
		Model:        "test-model",
		Dimensions:   4,
		Logger:       zap.NewNop(),
	})
}

func TestEmbedder_Embed(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3, 0.4}
	srv := embeddingServer(t, []embeddingData{{Object: "embedding", Embedding: vec}}, 42)

	result, err := newTestEmbedder(srv.URL).Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(result.Embedding) != 4 || result.Embedding[3] != 0.4 {
		t.Fatalf("unexpected embedding: %v", result.Embedding)
	}
	if result.PromptTokens != 42 || result.TotalTokens != 42 {
		t.Errorf("usage = %d/%d, want 42/42", result.PromptTokens, result.TotalTokens)
	}
}

func TestEmbedder_BatchEmbed_RestoresOrder(t *testing.T) {
	srv := embeddingServer(t, []embeddingData{
		{Object: "embedding", Embedding: []float32{0.3, 0.4}, Index: 1},
		{Object: "embedding", Embedding: []float32{0.1, 0.2}, Index: 0},
	}, 20)

	result, err := newTestEmbedder(srv.URL).BatchEmbed(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("BatchEmbed failed: %v", err)
	}
	if result.Embeddings[0][0] != 0.1 || result.Embeddings[1][0] != 0.3 {
		t.Errorf("order not restored: %v", result.Embeddings)
	}
	if result.TotalTokens != 20 {
		t.Errorf("expected TotalTokens=20, got %d", result.TotalTokens)
	}
}

func TestEmbedder_BatchEmbed_Empty(t *testing.T) {
	result, err := newTestEmbedder("http://unused").BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Embeddings != nil {
		t.Errorf("expected nil embeddings for empty input, got %v", result.Embeddings)
	}
}

func TestEmbedder_BatchEmbed_BadResponse(t *testing.T) {
	tests := []struct {
		name string
		data []embeddingData
	}{
		{"count mismatch", []embeddingData{{Embedding: []float32{0.1}}}},
		{"duplicate index", []embeddingData{{Embedding: []float32{0.1}}, {Embedding: []float32{0.2}}}},
		{"index out of range", []embeddingData{{Embedding: []float32{0.1}}, {Embedding: []float32{0.2}, Index: 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := embeddingServer(t, tt.data, 5)
			_, err := newTestEmbedder(srv.URL).BatchEmbed(context.Background(), []string{"a", "b"})
			if !errors.Is(err, domain.ErrEmbeddingProviderError) {
				t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
			}
		})
	}
}

func errorServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedder_APIErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit_error"}},
			want:   domain.ErrEmbeddingQuotaExceeded,
		},
		{
			name:   "quota type",
			status: http.StatusForbidden,
			body:   map[string]any{"error": map[string]any{"message": "no credit", "type": "insufficient_quota"}},
			want:   domain.ErrEmbeddingQuotaExceeded,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}},
			want:   domain.ErrEmbeddingProviderError,
		},
		{
			name:   "detail body",
			status: http.StatusBadRequest,
			body:   map[string]any{"detail": "model not found"},
			want:   domain.ErrEmbeddingProviderError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := errorServer(t, tt.status, tt.body)
			_, err := newTestEmbedder(srv.URL).Embed(context.Background(), "hello")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestEmbedder_RateLimiterHonorsContext(t *testing.T) {
	srv := embeddingServer(t, []embeddingData{{Embedding: []float32{1, 0, 0, 0}}}, 1)
	emb := NewEmbedder(&EmbedderConfig{
		ClientConfig: ClientConfig{APIKey: "test-key", BaseURL: srv.URL, RateLimitRPS: 0.001},
		Model:        "test-model",
	})

	if _, err := emb.Embed(context.Background(), "first"); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := emb.Embed(ctx, "second")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestIsQuota(t *testing.T) {
	if !isQuota(429, "", nil) || !isQuota(400, "", "rate_limit_exceeded") || isQuota(500, "server_error", nil) {
		t.Error("isQuota misclassified a response")
	}
}
