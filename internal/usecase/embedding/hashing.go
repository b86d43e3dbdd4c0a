package embedding

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// HashingDimension is the default width of hashed vectors.
const HashingDimension = 384

const bigramWeight = 0.5

var hashingStopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"do": {}, "does": {}, "for": {}, "from": {}, "has": {}, "have": {}, "how": {},
	"i": {}, "if": {}, "in": {}, "is": {}, "it": {}, "its": {}, "my": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "that": {}, "the": {}, "this": {}, "to": {},
	"was": {}, "we": {}, "what": {}, "when": {}, "which": {}, "who": {}, "will": {},
	"with": {}, "you": {}, "your": {},
}

// HashingEmbedder is a deterministic, offline embedder. Each unigram and
// bigram is hashed into a signed bucket; the result is L2-normalized.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder creates a hashing embedder. dim <= 0 selects HashingDimension.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = HashingDimension
	}
	return &HashingEmbedder{dim: dim}
}

// Dimension returns the vector length.
func (h *HashingEmbedder) Dimension() int { return h.dim }

// Embed hashes a single text. It never fails and reports no tokens.
func (h *HashingEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: h.vector(text)}, nil
}

// BatchEmbed hashes every text.
func (h *HashingEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out[i] = h.vector(t)
	}
	return domain.BatchEmbeddingResult{Embeddings: out}, nil
}

// HealthCheck always succeeds.
func (h *HashingEmbedder) HealthCheck(context.Context) error { return nil }

func (h *HashingEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dim)
	terms := hashTerms(text)
	for i, t := range terms {
		h.add(v, t, 1)
		if i > 0 {
			h.add(v, terms[i-1]+" "+t, bigramWeight)
		}
	}
	return Normalize(v)
}

func (h *HashingEmbedder) add(v []float32, feature string, weight float32) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	bucket := sum % uint64(h.dim)
	if sum>>63 == 1 {
		weight = -weight
	}
	v[bucket] += weight
}

// hashTerms lowercases text, splits on non-alphanumerics, drops stop words
// and strips common English suffixes.
func hashTerms(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := words[:0]
	for _, w := range words {
		if _, stop := hashingStopWords[w]; stop {
			continue
		}
		terms = append(terms, stem(w))
	}
	return terms
}

func stem(w string) string {
	if len(w) <= 4 {
		return w
	}
	for _, suf := range []string{"ing", "ed", "s"} {
		if strings.HasSuffix(w, suf) && !strings.HasSuffix(w, "ss") {
			return strings.TrimSuffix(w, suf)
		}
	}
	return w
}
