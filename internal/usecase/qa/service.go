// Package qa orchestrates the policy question answering pipeline: it owns the
// live index and runs ingest, chunk, embed, retrieve and generate.
package qa

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
	"github.com/kailas-cloud/policyqa/internal/index"
	"github.com/kailas-cloud/policyqa/internal/metrics"
	"github.com/kailas-cloud/policyqa/internal/usecase/answer"
	"github.com/kailas-cloud/policyqa/internal/usecase/retrieval"
)

const (
	notInitialized = "not initialized"
	snippetLen     = 200
)

// Config locates the corpus and the persisted index.
type Config struct {
	DocsDir   string
	IndexDir  string
	BatchSize int
}

// Service answers questions over the loaded policy corpus.
type Service struct {
	cfg       Config
	loader    DocumentLoader
	chunker   Chunker
	encoder   domain.Encoder
	retriever *retrieval.Retriever
	generator answer.Generator
	logger    *zap.Logger

	// buildMu serializes Initialize and Rebuild.
	buildMu sync.Mutex
	index   atomic.Pointer[index.Index]
}

// New wires a Service. Nothing is loaded until Initialize.
func New(
	cfg Config,
	loader DocumentLoader,
	chunker Chunker,
	encoder domain.Encoder,
	retriever *retrieval.Retriever,
	generator answer.Generator,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		loader:    loader,
		chunker:   chunker,
		encoder:   encoder,
		retriever: retriever,
		generator: generator,
		logger:    logger,
	}
}

// Initialize loads the persisted index, or builds and saves a new one when
// none is usable or forceRebuild is set.
func (s *Service) Initialize(ctx context.Context, forceRebuild bool) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	start := time.Now()
	idx := index.New(s.encoder, s.logger)

	source := "cache"
	if forceRebuild || !idx.Load(s.cfg.IndexDir) {
		var err error
		if idx, err = s.build(ctx); err != nil {
			return err
		}
		source = "build"
	}

	s.publish(idx, source)
	s.logger.Info("Pipeline ready",
		zap.String("source", source),
		zap.Int("documents", len(idx.DocNames())),
		zap.Int("chunks", idx.Len()),
		zap.String("generator", s.generator.Name()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Rebuild re-ingests the corpus into a fresh index and swaps it in.
// Questions already in flight finish against the previous index.
func (s *Service) Rebuild(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	idx, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.publish(idx, "build")
	return nil
}

func (s *Service) build(ctx context.Context) (*index.Index, error) {
	pages, err := s.loader.LoadDocuments(ctx, s.cfg.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w in %s", domain.ErrNoDocuments, s.cfg.DocsDir)
	}

	chunks := s.chunker.Chunk(pages)

	idx := index.New(s.encoder, s.logger)
	if err := idx.Build(ctx, chunks, s.cfg.BatchSize); err != nil {
		if errors.Is(err, domain.ErrEmptyCorpus) {
			return nil, fmt.Errorf("%w: documents produced no chunks", domain.ErrNoDocuments)
		}
		return nil, fmt.Errorf("build index: %w", err)
	}
	if err := idx.Save(s.cfg.IndexDir); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}
	return idx, nil
}

func (s *Service) publish(idx *index.Index, source string) {
	s.index.Store(idx)
	metrics.IndexChunks.Set(float64(idx.Len()))
	metrics.IndexBuildsTotal.WithLabelValues(source).Inc()
}

// Initialized reports whether an index is live.
func (s *Service) Initialized() bool { return s.index.Load() != nil }

// Ask answers one question. Conversational messages are answered without
// retrieval; everything else is grounded in the retrieved chunks.
func (s *Service) Ask(ctx context.Context, question string) (domain.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return domain.Answer{}, domain.ErrEmptyQuestion
	}
	idx := s.index.Load()
	if idx == nil {
		return domain.Answer{}, domain.ErrNotInitialized
	}

	start := time.Now()
	if reply, ok := conversational(question, len(idx.DocNames())); ok {
		metrics.AskTotal.WithLabelValues("conversational").Inc()
		return reply, nil
	}

	out, outcome, err := s.answer(ctx, idx, question)
	metrics.AskDuration.WithLabelValues(s.generator.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AskTotal.WithLabelValues("error").Inc()
		return domain.Answer{}, err
	}
	metrics.AskTotal.WithLabelValues(outcome).Inc()
	return out, nil
}

func (s *Service) answer(ctx context.Context, idx *index.Index, question string) (domain.Answer, string, error) {
	results, err := s.retriever.Retrieve(ctx, idx, question)
	if err != nil {
		return domain.Answer{}, "", fmt.Errorf("retrieve: %w", err)
	}
	best := retrieval.BestScore(results)
	metrics.RetrievedChunks.Observe(float64(len(results)))
	metrics.RetrievalBestScore.Observe(best)

	prompt := answer.BuildQAPrompt(question, retrieval.BuildContext(results))
	gen, err := s.generator.Generate(ctx, prompt, results)
	if err != nil {
		return domain.Answer{}, "", fmt.Errorf("generate: %w", err)
	}

	sources := make([]domain.SourceDetail, 0, len(results))
	for _, r := range results {
		sources = append(sources, domain.SourceDetail{
			DocName:     r.Chunk.DocName,
			Section:     r.Chunk.Section,
			Clause:      r.Chunk.ClauseNumber,
			Page:        r.Chunk.Page,
			HeadingPath: r.Chunk.HeadingPath,
			Score:       round4(r.Score),
			Snippet:     prefix(r.Chunk.Text, snippetLen),
		})
	}

	followUps := gen.FollowUps
	if followUps == nil {
		followUps = []string{}
	}

	outcome := "grounded"
	switch {
	case len(results) == 0:
		outcome = "no_context"
	case best < answer.LowConfidenceScore:
		outcome = "low_confidence"
	}

	s.logger.Debug("Answered question",
		zap.String("outcome", outcome),
		zap.Int("sources", len(sources)),
		zap.Float64("best_score", best),
	)

	return domain.Answer{
		Question:   question,
		Answer:     gen.Answer,
		Citations:  retrieval.FormatCitations(results),
		Sources:    sources,
		Confidence: round4(best),
		FollowUps:  followUps,
	}, outcome, nil
}

// Stats describes the live index and configured backends.
func (s *Service) Stats() domain.Stats {
	stats := domain.Stats{
		EmbeddingModel: s.encoder.Name(),
		LLMBackend:     notInitialized,
		DocNames:       []string{},
	}
	idx := s.index.Load()
	if idx == nil {
		return stats
	}
	stats.DocNames = idx.DocNames()
	stats.Documents = len(stats.DocNames)
	stats.Chunks = idx.Len()
	stats.IndexLoaded = idx.Loaded()
	stats.LLMBackend = s.generator.Name()
	return stats
}

// IndexLoaded reports whether a built or loaded index is live.
func (s *Service) IndexLoaded() bool {
	idx := s.index.Load()
	return idx != nil && idx.Loaded()
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
