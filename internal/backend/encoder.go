package backend

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/db"
	"github.com/kailas-cloud/policyqa/internal/domain"
	"github.com/kailas-cloud/policyqa/internal/metrics"
	"github.com/kailas-cloud/policyqa/internal/repository/budget"
	"github.com/kailas-cloud/policyqa/internal/repository/embcache"
	"github.com/kailas-cloud/policyqa/internal/transport/openai"
	"github.com/kailas-cloud/policyqa/internal/usecase/embedding"
)

// Encoder backend names.
const (
	EncoderHashing = "hashing"
	EncoderOpenAI  = "openai"
)

// EncoderBackends lists the accepted encoder names.
var EncoderBackends = []string{EncoderHashing, EncoderOpenAI}

// EncoderConfig selects and configures an encoder backend.
type EncoderConfig struct {
	Backend    string
	Model      string
	Dimensions int
	// Instruction is prepended to every text, for instruction-tuned models.
	Instruction string

	APIKey       string
	BaseURL      string
	User         string
	RateLimitRPS float64

	DailyTokenLimit   int64
	MonthlyTokenLimit int64
	BudgetAction      string

	CacheTTL time.Duration
}

// Deps are shared collaborators. Store may be nil, which disables the
// embedding cache and budget persistence.
type Deps struct {
	Store  db.KVStore
	Logger *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// LazyEncoder is a domain.Encoder whose backend is built on the first Encode.
type LazyEncoder struct {
	name   string
	dim    int
	lazy   *Lazy[*embedding.Encoder]
	budget *embedding.BudgetTracker
}

var _ domain.Encoder = (*LazyEncoder)(nil)

// NewEncoder validates cfg and returns an encoder that loads on first use.
// An unrecognised backend fails here with *domain.UnknownBackendError.
func NewEncoder(cfg EncoderConfig, deps Deps) (*LazyEncoder, error) {
	name := strings.ToLower(cfg.Backend)
	if !slices.Contains(EncoderBackends, name) {
		return nil, &domain.UnknownBackendError{Kind: "embedding", Name: cfg.Backend, Available: EncoderBackends}
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = embedding.HashingDimension
	}

	modelName := cfg.Model
	if name == EncoderHashing {
		modelName = fmt.Sprintf("hashing-%d", cfg.Dimensions)
	}

	logger := deps.logger().Named("encoder")
	tracker := newBudgetTracker(name, cfg, logger)

	load := func(ctx context.Context) (*embedding.Encoder, error) {
		var inner domain.Embedder
		switch name {
		case EncoderHashing:
			inner = embedding.NewHashingEmbedder(cfg.Dimensions)
		case EncoderOpenAI:
			inner = openAIChain(ctx, cfg, deps, tracker, logger)
		}
		if cfg.Instruction != "" {
			inner = domain.NewInstructionEmbedder(inner, cfg.Instruction)
		}

		enc := embedding.NewEncoder(inner, modelName, cfg.Dimensions, logger)
		if name == EncoderOpenAI {
			if _, err := enc.Encode(ctx, []string{"ping"}, 1); err != nil {
				return nil, fmt.Errorf("probe %s: %w", modelName, err)
			}
		}
		logger.Info("Encoder ready",
			zap.String("backend", name),
			zap.String("model", modelName),
			zap.Int("dimension", cfg.Dimensions),
		)
		return enc, nil
	}

	return &LazyEncoder{name: modelName, dim: cfg.Dimensions, lazy: NewLazy(load), budget: tracker}, nil
}

// newBudgetTracker returns nil unless a paid backend has a token limit.
func newBudgetTracker(name string, cfg EncoderConfig, logger *zap.Logger) *embedding.BudgetTracker {
	if name != EncoderOpenAI || (cfg.DailyTokenLimit <= 0 && cfg.MonthlyTokenLimit <= 0) {
		return nil
	}
	action := embedding.BudgetAction(cfg.BudgetAction)
	if action == "" {
		action = embedding.BudgetActionWarn
	}
	return embedding.NewBudgetTracker(EncoderOpenAI, cfg.DailyTokenLimit, cfg.MonthlyTokenLimit,
		action, logger.Named("budget"))
}

// openAIChain assembles provider -> cache -> budget/metrics. tracker may be nil.
func openAIChain(
	ctx context.Context, cfg EncoderConfig, deps Deps, tracker *embedding.BudgetTracker, logger *zap.Logger,
) domain.Embedder {
	var inner domain.Embedder = openai.NewEmbedder(&openai.EmbedderConfig{
		ClientConfig: openai.ClientConfig{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			RateLimitRPS: cfg.RateLimitRPS,
		},
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		User:       cfg.User,
		Logger:     logger.Named("openai"),
	})

	if deps.Store != nil {
		inner = embcache.New(inner, deps.Store, cfg.Model, cfg.CacheTTL, metrics.EmbeddingCacheTotal, logger.Named("cache"))
	}

	if tracker == nil {
		return embedding.NewInstrumentedEmbedder(inner, EncoderOpenAI, cfg.Model, nil, logger)
	}
	if deps.Store != nil {
		tracker.WithStore(ctx, budget.New(deps.Store, budget.DefaultDailyTTL, budget.DefaultMonthlyTTL))
	}
	return embedding.NewInstrumentedEmbedder(inner, EncoderOpenAI, cfg.Model, tracker, logger)
}

// Name returns the model name recorded with the index.
func (e *LazyEncoder) Name() string { return e.name }

// Dimension returns the configured width; loading verifies the backend matches it.
func (e *LazyEncoder) Dimension() int { return e.dim }

// EnsureReady performs the deferred load. It is idempotent.
func (e *LazyEncoder) EnsureReady(ctx context.Context) error {
	return e.lazy.EnsureReady(ctx)
}

// Ready reports whether the backend has been loaded.
func (e *LazyEncoder) Ready() bool { return e.lazy.Ready() }

// Encode loads the backend if needed and encodes texts.
func (e *LazyEncoder) Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	enc, err := e.lazy.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load encoder: %w", err)
	}
	return enc.Encode(ctx, texts, batchSize)
}

// Budget returns the token budget tracker, or nil when no limit is configured.
func (e *LazyEncoder) Budget() *embedding.BudgetTracker { return e.budget }

// HealthCheck probes the backend once it is loaded. An unloaded encoder is healthy.
func (e *LazyEncoder) HealthCheck(ctx context.Context) error {
	if !e.lazy.Ready() {
		return nil
	}
	enc, err := e.lazy.Get(ctx)
	if err != nil {
		return err
	}
	return enc.HealthCheck(ctx)
}
