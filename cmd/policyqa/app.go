package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/backend"
	"github.com/kailas-cloud/policyqa/internal/chunker"
	"github.com/kailas-cloud/policyqa/internal/config"
	"github.com/kailas-cloud/policyqa/internal/db"
	dbRedis "github.com/kailas-cloud/policyqa/internal/db/redis"
	"github.com/kailas-cloud/policyqa/internal/ingest"
	"github.com/kailas-cloud/policyqa/internal/metrics"
	healthuc "github.com/kailas-cloud/policyqa/internal/usecase/health"
	"github.com/kailas-cloud/policyqa/internal/usecase/qa"
	"github.com/kailas-cloud/policyqa/internal/usecase/retrieval"
	usageuc "github.com/kailas-cloud/policyqa/internal/usecase/usage"
)

// app is the composition root shared by every command.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     db.Store
	encoder   *backend.LazyEncoder
	generator *backend.LazyGenerator
	pipeline  *qa.Service
	health    *healthuc.Service
	usage     *usageuc.Service
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	if cfg.Cache.Enabled {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Cache.Addrs,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			Standalone: cfg.Cache.Standalone,
		})
		if err != nil {
			return nil, fmt.Errorf("create cache store: %w", err)
		}
		timeout := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("cache not ready: %w", err)
		}
		a.store = store
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	deps := backend.Deps{Logger: logger}
	if a.store != nil {
		deps.Store = a.store
	}

	emb := cfg.Embedding
	encoder, err := backend.NewEncoder(backend.EncoderConfig{
		Backend:           emb.Backend,
		Model:             emb.Model,
		Dimensions:        emb.Dimensions,
		Instruction:       emb.Instruction,
		APIKey:            emb.APIKey,
		BaseURL:           emb.BaseURL,
		User:              emb.User,
		RateLimitRPS:      emb.RateLimitRPS,
		DailyTokenLimit:   emb.Budget.DailyTokenLimit,
		MonthlyTokenLimit: emb.Budget.MonthlyTokenLimit,
		BudgetAction:      emb.Budget.Action,
		CacheTTL:          time.Duration(cfg.Cache.TTLSec) * time.Second,
	}, deps)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.encoder = encoder

	gen := cfg.Generator
	generator, err := backend.NewGenerator(backend.GeneratorConfig{
		Backend:      gen.Backend,
		Model:        gen.Model,
		Temperature:  gen.Temperature,
		MaxTokens:    gen.MaxTokens,
		APIKey:       gen.APIKey,
		BaseURL:      gen.BaseURL,
		RateLimitRPS: gen.RateLimitRPS,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.generator = generator

	a.pipeline = qa.New(
		qa.Config{
			DocsDir:   cfg.Documents.Dir,
			IndexDir:  cfg.Index.Dir,
			BatchSize: emb.BatchSize,
		},
		ingest.NewLoader(cfg.Documents.Extensions, logger.Named("ingest")),
		chunker.New(cfg.ChunkerOptions(), logger.Named("chunker")),
		encoder,
		retrieval.New(encoder, cfg.RetrievalOptions(), logger.Named("retrieval")),
		generator,
		logger.Named("pipeline"),
	)

	var cache healthuc.CachePinger
	if a.store != nil {
		cache = a.store
	}
	a.health = healthuc.New(a.pipeline, cache, encoder)

	var budget usageuc.BudgetReader
	if tracker := encoder.Budget(); tracker != nil {
		budget = tracker
	}
	a.usage = usageuc.New(budget)

	return a, nil
}

// initialize loads or builds the index.
func (a *app) initialize(ctx context.Context, force bool) error {
	a.logger.Info("Initializing pipeline",
		zap.String("docs_dir", a.cfg.Documents.Dir),
		zap.String("index_dir", a.cfg.Index.Dir),
		zap.String("encoder", a.encoder.Name()),
		zap.String("generator", a.generator.Name()),
		zap.Bool("force_rebuild", force),
	)
	if err := a.pipeline.Initialize(ctx, force); err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	return nil
}

// Close releases the cache connection, if any.
func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// bootstrap loads config and builds an initialized app.
func bootstrap(ctx context.Context, force bool) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := a.initialize(ctx, force); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}
