// Package index is an exact inner-product vector index over policy chunks.
//
// Embeddings and chunks are stored in parallel: row i of the vector matrix is
// the embedding of chunk i. An Index is populated once, by Build or Load, and
// is read-only afterwards, so concurrent Search calls need no locking.
package index

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// Meta describes one index build.
type Meta struct {
	BuildID   string
	CreatedAt time.Time
	Model     string
	Dimension int
	Count     int
}

// Index holds chunk embeddings and their metadata.
type Index struct {
	encoder domain.Encoder
	logger  *zap.Logger

	meta    Meta
	vectors []float32 // row-major, Count x Dimension
	chunks  []domain.Chunk
	loaded  bool
}

// New creates an empty index that embeds with encoder.
func New(encoder domain.Encoder, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{encoder: encoder, logger: logger.Named("index")}
}

// Build embeds every chunk text in batches of batchSize and builds the index.
func (x *Index) Build(ctx context.Context, chunks []domain.Chunk, batchSize int) error {
	if len(chunks) == 0 {
		return domain.ErrEmptyCorpus
	}
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	start := time.Now()
	x.logger.Info("Embedding chunks",
		zap.Int("chunks", len(texts)),
		zap.Int("batch_size", batchSize),
	)

	embeddings, err := x.encoder.Encode(ctx, texts, batchSize)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("encode chunks: got %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	dim := x.encoder.Dimension()
	vectors := make([]float32, 0, len(chunks)*dim)
	for i, v := range embeddings {
		if len(v) != dim {
			return fmt.Errorf("chunk %d: %w", i, &domain.DimensionMismatchError{Want: dim, Got: len(v)})
		}
		vectors = append(vectors, v...)
	}

	x.vectors = vectors
	x.chunks = normalizeChunks(chunks)
	x.meta = Meta{
		BuildID:   uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Model:     x.encoder.Name(),
		Dimension: dim,
		Count:     len(chunks),
	}
	x.loaded = true

	x.logger.Info("Index built",
		zap.String("build_id", x.meta.BuildID),
		zap.Int("vectors", x.meta.Count),
		zap.Int("dimension", dim),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Search returns up to topK chunks ordered by descending inner product with
// query. Equal scores keep index order, so results are deterministic.
// An unloaded index or a wrong-sized query yields no results.
func (x *Index) Search(query []float32, topK int) []domain.ScoredChunk {
	if !x.loaded {
		x.logger.Error("Search on empty index", zap.Error(domain.ErrIndexNotLoaded))
		return nil
	}
	if len(query) != x.meta.Dimension {
		x.logger.Error("Search with wrong query dimension",
			zap.Error(&domain.DimensionMismatchError{Want: x.meta.Dimension, Got: len(query)}))
		return nil
	}
	if topK <= 0 {
		return nil
	}

	n := x.meta.Count
	scores := make([]float32, n)
	for i := 0; i < n; i++ {
		scores[i] = dot(query, x.vectors[i*x.meta.Dimension:(i+1)*x.meta.Dimension])
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case scores[a] > scores[b]:
			return -1
		case scores[a] < scores[b]:
			return 1
		}
		return 0
	})
	if topK < len(order) {
		order = order[:topK]
	}

	results := make([]domain.ScoredChunk, 0, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(x.chunks) {
			continue
		}
		results = append(results, domain.ScoredChunk{Chunk: x.chunks[idx], Score: float64(scores[idx])})
	}
	return results
}

// Loaded reports whether the index has been built or loaded.
func (x *Index) Loaded() bool { return x.loaded }

// Len returns the number of indexed chunks.
func (x *Index) Len() int { return len(x.chunks) }

// Meta returns the build metadata.
func (x *Index) Meta() Meta { return x.meta }

// Chunks returns a copy of the indexed chunks in index order.
func (x *Index) Chunks() []domain.Chunk {
	return slices.Clone(x.chunks)
}

// DocNames returns the distinct document names in index order.
func (x *Index) DocNames() []string {
	return domain.DocNames(x.chunks)
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// normalizeChunks copies chunks and replaces nil cross references with empty
// slices so that a persisted and reloaded index compares equal.
func normalizeChunks(in []domain.Chunk) []domain.Chunk {
	out := make([]domain.Chunk, len(in))
	for i, c := range in {
		if c.CrossReferences == nil {
			c.CrossReferences = []string{}
		}
		out[i] = c
	}
	return out
}
