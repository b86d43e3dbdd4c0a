package domain

import (
	"context"
	"fmt"
)

// Embedder turns one text into a raw provider vector.
// Providers, caches, rate limiters and budget guards all implement it and
// wrap each other.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder is implemented by embedders that can vectorize many texts per call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker is implemented by embedders that can probe their provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Encoder maps texts to L2-normalized vectors of a fixed dimension.
// An index must be queried with the encoder that built it.
type Encoder interface {
	Encode(ctx context.Context, texts []string, batchSize int) ([][]float32, error)
	Dimension() int
	Name() string
}

// EmbeddingResult is one vector plus the tokens billed for it.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds vectors in input order plus the tokens billed for all of them.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

func (b *BatchEmbeddingResult) append(r EmbeddingResult) {
	b.Embeddings = append(b.Embeddings, r.Embedding)
	b.PromptTokens += r.PromptTokens
	b.TotalTokens += r.TotalTokens
}

// BatchFallback embeds texts one by one and sums their usage.
// The first failure aborts the batch.
func BatchFallback(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	out := BatchEmbeddingResult{Embeddings: make([][]float32, 0, len(texts))}
	for i := range texts {
		r, err := e.Embed(ctx, texts[i])
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("embed text %d of %d: %w", i+1, len(texts), err)
		}
		out.append(r)
	}
	return out, nil
}

// BatchEmbedOrFallback prefers e's own batch call and falls back to BatchFallback.
func BatchEmbedOrFallback(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	be, ok := e.(BatchEmbedder)
	if !ok {
		return BatchFallback(ctx, e, texts)
	}
	res, err := be.BatchEmbed(ctx, texts)
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
	}
	return res, nil
}

// InstructionEmbedder prefixes every text with a fixed instruction,
// e.g. "passage: " for chunks or "query: " for questions.
type InstructionEmbedder struct {
	inner  Embedder
	prefix string
}

// NewInstructionEmbedder wraps inner so that every text starts with instruction.
func NewInstructionEmbedder(inner Embedder, instruction string) *InstructionEmbedder {
	return &InstructionEmbedder{inner: inner, prefix: instruction}
}

// Embed embeds the prefixed text.
func (e *InstructionEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	res, err := e.inner.Embed(ctx, e.prefix+text)
	if err != nil {
		return EmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return res, nil
}

// BatchEmbed embeds the prefixed texts, batching when inner supports it.
func (e *InstructionEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	res, err := BatchEmbedOrFallback(ctx, e.inner, e.withPrefix(texts))
	if err != nil {
		return BatchEmbeddingResult{}, fmt.Errorf("instruction embed: %w", err)
	}
	return res, nil
}

func (e *InstructionEmbedder) withPrefix(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = e.prefix + t
	}
	return out
}
