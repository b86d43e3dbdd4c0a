package backend

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
	"github.com/kailas-cloud/policyqa/internal/transport/openai"
	"github.com/kailas-cloud/policyqa/internal/usecase/answer"
)

// GeneratorBackends lists the accepted generator names.
var GeneratorBackends = []string{answer.ExtractiveName, answer.LLMName}

// GeneratorConfig selects and configures an answer generator.
type GeneratorConfig struct {
	Backend     string
	Model       string
	Temperature float32
	MaxTokens   int

	APIKey       string
	BaseURL      string
	RateLimitRPS float64
	// SkipProbe disables the model-list call made on first use.
	SkipProbe bool
}

// LazyGenerator is an answer.Generator built on the first Generate.
type LazyGenerator struct {
	name string
	lazy *Lazy[answer.Generator]
}

var _ answer.Generator = (*LazyGenerator)(nil)

// NewGenerator validates cfg and returns a generator that loads on first use.
func NewGenerator(cfg GeneratorConfig, logger *zap.Logger) (*LazyGenerator, error) {
	name := strings.ToLower(cfg.Backend)
	if !slices.Contains(GeneratorBackends, name) {
		return nil, &domain.UnknownBackendError{Kind: "generator", Name: cfg.Backend, Available: GeneratorBackends}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("generator")

	load := func(ctx context.Context) (answer.Generator, error) {
		if name == answer.ExtractiveName {
			return answer.NewExtractive(), nil
		}

		chat := openai.NewChat(&openai.ChatConfig{
			ClientConfig: openai.ClientConfig{
				APIKey:       cfg.APIKey,
				BaseURL:      cfg.BaseURL,
				RateLimitRPS: cfg.RateLimitRPS,
			},
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Logger:      logger.Named("openai"),
		})
		if !cfg.SkipProbe {
			if err := chat.HealthCheck(ctx); err != nil {
				return nil, fmt.Errorf("probe %s: %w", cfg.Model, err)
			}
		}
		logger.Info("Generator ready", zap.String("backend", name), zap.String("model", chat.Model()))
		return answer.NewLLM(chat, logger), nil
	}

	return &LazyGenerator{name: name, lazy: NewLazy(load)}, nil
}

// Name implements answer.Generator.
func (g *LazyGenerator) Name() string { return g.name }

// EnsureReady performs the deferred load. It is idempotent.
func (g *LazyGenerator) EnsureReady(ctx context.Context) error {
	return g.lazy.EnsureReady(ctx)
}

// Ready reports whether the backend has been loaded.
func (g *LazyGenerator) Ready() bool { return g.lazy.Ready() }

// Generate implements answer.Generator.
func (g *LazyGenerator) Generate(ctx context.Context, prompt string, results []domain.ScoredChunk) (answer.Generation, error) {
	gen, err := g.lazy.Get(ctx)
	if err != nil {
		return answer.Generation{}, fmt.Errorf("load generator: %w", err)
	}
	return gen.Generate(ctx, prompt, results)
}
