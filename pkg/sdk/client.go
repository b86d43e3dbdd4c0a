package policyqa

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/backend"
	"github.com/kailas-cloud/policyqa/internal/chunker"
	"github.com/kailas-cloud/policyqa/internal/domain"
	"github.com/kailas-cloud/policyqa/internal/ingest"
	healthuc "github.com/kailas-cloud/policyqa/internal/usecase/health"
	"github.com/kailas-cloud/policyqa/internal/usecase/answer"
	"github.com/kailas-cloud/policyqa/internal/usecase/embedding"
	"github.com/kailas-cloud/policyqa/internal/usecase/qa"
	"github.com/kailas-cloud/policyqa/internal/usecase/retrieval"
)

const (
	defaultDocsDir  = "data"
	defaultIndexDir = "vector_db"
)

// qaUseCase is the pipeline surface the client needs.
type qaUseCase interface {
	Ask(ctx context.Context, question string) (domain.Answer, error)
	Stats() domain.Stats
	Rebuild(ctx context.Context) error
}

// Client is the policyqa SDK entry point. It is safe for concurrent use.
type Client struct {
	qaSvc     qaUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New wires the pipeline and loads the persisted index, building it from the
// documents directory when it is missing, stale or WithForceRebuild is set.
// An empty documents directory fails with ErrNoDocuments.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		docsDir:  defaultDocsDir,
		indexDir: defaultIndexDir,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	chunkOpts, retrOpts, err := cfg.internalOptions()
	if err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	// Internal components log through zap; SDK operations log through slog.
	logger := zap.NewNop()

	encoder, err := newEncoder(cfg, logger)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(cfg, logger)
	if err != nil {
		return nil, err
	}

	svc := qa.New(
		qa.Config{
			DocsDir:   cfg.docsDir,
			IndexDir:  cfg.indexDir,
			BatchSize: cfg.batchSize,
		},
		ingest.NewLoader(cfg.extensions, logger),
		chunker.New(chunkOpts, logger),
		encoder,
		retrieval.New(encoder, retrOpts, logger),
		generator,
		logger,
	)

	start := time.Now()
	err = svc.Initialize(ctx, cfg.forceRebuild)
	obs.observe("initialize", start, err, "docs_dir", cfg.docsDir, "encoder", encoder.Name())
	if err != nil {
		return nil, fmt.Errorf("policyqa: initialize: %w", err)
	}

	return &Client{
		qaSvc:     svc,
		healthSvc: healthuc.New(svc, nil, encoder),
		obs:       obs,
	}, nil
}

// internalOptions merges user overrides onto the defaults and validates them.
func (cfg *clientConfig) internalOptions() (chunker.Options, retrieval.Options, error) {
	chunkOpts := chunker.DefaultOptions()
	if cfg.chunking != (ChunkingOptions{}) {
		chunkOpts = chunker.Options{
			ChunkSize:    cfg.chunking.ChunkSize,
			ChunkOverlap: cfg.chunking.ChunkOverlap,
			MinChunkSize: cfg.chunking.MinChunkSize,
		}
	}
	if err := chunkOpts.Validate(); err != nil {
		return chunker.Options{}, retrieval.Options{}, fmt.Errorf("policyqa: chunking: %w", err)
	}

	retrOpts := retrieval.DefaultOptions()
	if cfg.retrieval.TopK > 0 {
		retrOpts.TopK = cfg.retrieval.TopK
	}
	if cfg.retrieval.SimilarityThreshold != 0 {
		retrOpts.SimilarityThreshold = cfg.retrieval.SimilarityThreshold
	}
	if cfg.retrieval.DedupThreshold != 0 {
		retrOpts.DedupThreshold = cfg.retrieval.DedupThreshold
	}
	if err := retrOpts.Validate(); err != nil {
		return chunker.Options{}, retrieval.Options{}, fmt.Errorf("policyqa: retrieval: %w", err)
	}
	return chunkOpts, retrOpts, nil
}

// checkedEncoder is an encoder that can report provider health.
type checkedEncoder interface {
	domain.Encoder
	HealthCheck(ctx context.Context) error
}

// newEncoder adapts a user encoder, or falls back to the local hashing backend.
func newEncoder(cfg *clientConfig, logger *zap.Logger) (checkedEncoder, error) {
	if cfg.encoder != nil {
		dim := cfg.encoder.Dimension()
		if dim <= 0 {
			return nil, fmt.Errorf("policyqa: encoder %q reports dimension %d", cfg.encoder.Name(), dim)
		}
		return embedding.NewEncoder(&encoderAdapter{inner: cfg.encoder}, cfg.encoder.Name(), dim, logger), nil
	}
	enc, err := backend.NewEncoder(backend.EncoderConfig{Backend: backend.EncoderHashing}, backend.Deps{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("policyqa: %w", err)
	}
	return enc, nil
}

func newGenerator(cfg *clientConfig, logger *zap.Logger) (answer.Generator, error) {
	gcfg := backend.GeneratorConfig{Backend: answer.ExtractiveName}
	if cfg.llm != nil {
		gcfg = backend.GeneratorConfig{
			Backend: answer.LLMName,
			Model:   cfg.llm.model,
			APIKey:  cfg.llm.apiKey,
			BaseURL: cfg.llm.baseURL,
		}
	}
	gen, err := backend.NewGenerator(gcfg, logger)
	if err != nil {
		return nil, fmt.Errorf("policyqa: %w", err)
	}
	return gen, nil
}

// Ask answers a question from the indexed documents. Greetings and other
// small talk get a canned reply without retrieval.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("ask", start, err, "sources", len(ans.Sources), "confidence", ans.Confidence)
	}()

	res, err := c.qaSvc.Ask(ctx, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return answerFromDomain(res), nil
}

// Stats reports the loaded corpus and active backends.
func (c *Client) Stats() Stats {
	start := time.Now()
	s := statsFromDomain(c.qaSvc.Stats())
	c.obs.observe("stats", start, nil, "chunks", s.Chunks)
	return s
}

// Rebuild re-ingests the documents directory and swaps in a fresh index.
// On failure the previous index keeps serving.
func (c *Client) Rebuild(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild", start, err) }()

	if err = c.qaSvc.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}
	return nil
}
