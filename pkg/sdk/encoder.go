package policyqa

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// Encoder converts texts to embedding vectors of a fixed dimension.
// Vectors need not be normalized; the client normalizes them.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	// Name identifies the model. It is stored with the index, and a
	// persisted index built under another name is rebuilt.
	Name() string
}

// HealthChecker is optionally implemented by an Encoder to report provider
// availability through Client.Health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// encoderAdapter wraps the public Encoder to satisfy the internal embedder chain.
type encoderAdapter struct {
	inner Encoder
}

func (a *encoderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	vecs, err := a.inner.Encode(ctx, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("encode: %w", err)
	}
	if len(vecs) != 1 {
		return domain.EmbeddingResult{}, fmt.Errorf("encode: got %d vectors for 1 text", len(vecs))
	}
	return domain.EmbeddingResult{Embedding: vecs[0]}, nil
}

func (a *encoderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	vecs, err := a.inner.Encode(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("encode: %w", err)
	}
	return domain.BatchEmbeddingResult{Embeddings: vecs}, nil
}

func (a *encoderAdapter) HealthCheck(ctx context.Context) error {
	if hc, ok := a.inner.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}
