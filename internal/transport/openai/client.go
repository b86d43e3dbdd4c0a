// Package openai adapts OpenAI-compatible HTTP APIs (embeddings and chat
// completions) to the domain contracts.
package openai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ClientConfig holds connection settings shared by the embedder and the chat client.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	// RateLimitRPS caps outgoing requests per second; 0 disables the limiter.
	RateLimitRPS float64
}

func newClient(cfg ClientConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
}

// parseAPIError maps an API failure onto a domain sentinel. Quota and
// rate-limit responses become quota, everything else becomes fallback.
func parseAPIError(err error, quota, fallback error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		wrap := fallback
		if isQuota(apiErr.HTTPStatusCode, apiErr.Type, apiErr.Code) {
			wrap = quota
		}
		return fmt.Errorf("API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		wrap := fallback
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			wrap = quota
		}
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = strings.TrimSpace(string(reqErr.Body))
		}
		return fmt.Errorf("API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	return fmt.Errorf("request failed: %w: %w", fallback, err)
}

func isQuota(status int, typ string, code any) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	c, _ := code.(string)
	return typ == "insufficient_quota" || c == "insufficient_quota" || c == "rate_limit_exceeded"
}

// extractDetail reads the "detail" field some compatible providers return instead of "error".
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		return parsed.Detail
	}
	return ""
}
