package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// ChatConfig holds the chat completion settings.
type ChatConfig struct {
	ClientConfig
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// Chat sends a system and user message pair to /chat/completions.
type Chat struct {
	client      *openai.Client
	limiter     *rate.Limiter
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewChat creates a chat completion client.
func NewChat(cfg *ChatConfig) *Chat {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chat{
		client:      newClient(cfg.ClientConfig),
		limiter:     newLimiter(cfg.RateLimitRPS),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger,
	}
}

// Model returns the configured model name.
func (c *Chat) Model() string { return c.model }

// Complete returns the trimmed content of the first choice.
func (c *Chat) Complete(ctx context.Context, system, user string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w: %w", domain.ErrRateLimited, err)
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", parseAPIError(err, domain.ErrRateLimited, domain.ErrGenerationFailed)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion: %w", domain.ErrGenerationFailed)
	}

	c.logger.Debug("Chat completion finished",
		zap.String("model", c.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Chat) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
