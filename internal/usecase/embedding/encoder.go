package embedding

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
	"github.com/kailas-cloud/policyqa/internal/metrics"
)

// DefaultBatchSize is used when Encode is called with a non-positive batch size.
const DefaultBatchSize = domain.DefaultBatchSize

// Encoder adapts an embedder chain to domain.Encoder: it batches texts,
// verifies the dimension and L2-normalizes every vector.
type Encoder struct {
	embedder domain.Embedder
	name     string
	dim      int
	logger   *zap.Logger
}

var _ domain.Encoder = (*Encoder)(nil)

// NewEncoder creates an Encoder producing vectors of length dim.
func NewEncoder(embedder domain.Embedder, name string, dim int, logger *zap.Logger) *Encoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Encoder{embedder: embedder, name: name, dim: dim, logger: logger}
}

// Name returns the model name recorded in the index header.
func (e *Encoder) Name() string { return e.name }

// Dimension returns the vector length.
func (e *Encoder) Dimension() int { return e.dim }

// Encode embeds texts in batches of batchSize. Tokens spent are added to the
// usage collector in ctx, if any.
func (e *Encoder) Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	out := make([][]float32, 0, len(texts))
	usage := domain.UsageFromContext(ctx)
	batches := (len(texts) + batchSize - 1) / batchSize

	for start := 0; start < len(texts); start += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		batch := texts[start:min(start+batchSize, len(texts))]

		res, err := domain.BatchEmbedOrFallback(ctx, e.embedder, batch)
		if err != nil {
			return nil, fmt.Errorf("encode batch at %d: %w", start, err)
		}
		if len(res.Embeddings) != len(batch) {
			return nil, fmt.Errorf("encode batch at %d: got %d vectors for %d texts",
				start, len(res.Embeddings), len(batch))
		}
		for _, v := range res.Embeddings {
			if len(v) != e.dim {
				return nil, &domain.DimensionMismatchError{Want: e.dim, Got: len(v)}
			}
			out = append(out, Normalize(v))
		}
		usage.AddTokens(res.TotalTokens)

		if batches > 1 {
			e.logger.Debug("Encoded batch",
				zap.String("encoder", e.name),
				zap.Int("done", len(out)),
				zap.Int("total", len(texts)),
			)
		}
	}

	metrics.EncodedTextsTotal.WithLabelValues(e.name).Add(float64(len(texts)))
	if batches > 1 {
		e.logger.Info("Encoded texts",
			zap.String("encoder", e.name),
			zap.Int("texts", len(texts)),
			zap.Int("batches", batches),
		)
	}
	return out, nil
}

// HealthCheck delegates to the embedder when it supports health checks.
func (e *Encoder) HealthCheck(ctx context.Context) error {
	if hc, ok := e.embedder.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

// Normalize returns a unit-length copy of v. A zero vector is returned as zeros.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
