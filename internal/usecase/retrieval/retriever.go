// Package retrieval turns a question into ranked, deduplicated chunks and
// formats them as grounding context and citations.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// Defaults for Options.
const (
	DefaultTopK                = 5
	DefaultSimilarityThreshold = 0.25
	DefaultDedupThreshold      = 0.7
)

// Options tune retrieval.
type Options struct {
	TopK                int
	SimilarityThreshold float64
	// DedupThreshold is the word-Jaccard overlap above which a lower-scored chunk is dropped.
	DedupThreshold float64
	// Timeout bounds query embedding and search; 0 disables it.
	Timeout time.Duration
}

// DefaultOptions returns the stock retrieval settings.
func DefaultOptions() Options {
	return Options{
		TopK:                DefaultTopK,
		SimilarityThreshold: DefaultSimilarityThreshold,
		DedupThreshold:      DefaultDedupThreshold,
	}
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", o.TopK)
	}
	if o.SimilarityThreshold < -1 || o.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [-1, 1], got %v", o.SimilarityThreshold)
	}
	if o.DedupThreshold <= 0 || o.DedupThreshold > 1 {
		return fmt.Errorf("dedup_threshold must be in (0, 1], got %v", o.DedupThreshold)
	}
	if o.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// Searcher is a read-only nearest-neighbour index.
type Searcher interface {
	Search(query []float32, topK int) []domain.ScoredChunk
}

// Retriever embeds queries with the index's encoder and filters the matches.
type Retriever struct {
	encoder domain.Encoder
	opts    Options
	logger  *zap.Logger
}

// New creates a Retriever. encoder must be the one the index was built with.
func New(encoder domain.Encoder, opts Options, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{encoder: encoder, opts: opts, logger: logger}
}

// Options returns the active settings.
func (r *Retriever) Options() Options { return r.opts }

// Retrieve returns chunks scoring at least the similarity threshold, best
// first, with near-duplicates removed. No match is an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, index Searcher, query string) ([]domain.ScoredChunk, error) {
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	vecs, err := r.encoder.Encode(ctx, []string{query}, 1)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}

	hits := index.Search(vecs[0], r.opts.TopK)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	kept := make([]domain.ScoredChunk, 0, len(hits))
	for _, h := range hits {
		if h.Score >= r.opts.SimilarityThreshold {
			kept = append(kept, h)
		}
	}
	out := Deduplicate(kept, r.opts.DedupThreshold)

	r.logger.Debug("Retrieved chunks",
		zap.Int("hits", len(hits)),
		zap.Int("above_threshold", len(kept)),
		zap.Int("kept", len(out)),
		zap.Float64("best_score", BestScore(out)),
	)
	return out, nil
}

// Deduplicate keeps results in order, dropping any whose text overlaps an
// already kept result by more than threshold.
func Deduplicate(results []domain.ScoredChunk, threshold float64) []domain.ScoredChunk {
	if len(results) <= 1 {
		return results
	}

	kept := make([]domain.ScoredChunk, 0, len(results))
	seen := make([]map[string]struct{}, 0, len(results))
	for _, r := range results {
		words := wordSet(r.Chunk.Text)
		dup := false
		for _, s := range seen {
			if jaccard(words, s) > threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, r)
			seen = append(seen, words)
		}
	}
	return kept
}

func wordSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

// BuildContext renders results as "[Source i: doc §clause (section), p.N]"
// blocks separated by a divider.
func BuildContext(results []domain.ScoredChunk) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		c := r.Chunk
		var b strings.Builder
		b.WriteString("[Source ")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(": ")
		b.WriteString(c.DocName)
		if c.ClauseNumber != "" {
			b.WriteString(" §" + c.ClauseNumber)
		}
		if c.Section != "" {
			b.WriteString(" (" + c.Section + ")")
		}
		b.WriteString(", p." + strconv.Itoa(c.Page) + "]\n")
		b.WriteString(c.Text)
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// FormatCitations returns "Sources: a; b" with distinct citations in
// first-seen order, or "" for no results.
func FormatCitations(results []domain.ScoredChunk) string {
	if len(results) == 0 {
		return ""
	}
	return "Sources: " + strings.Join(Citations(results), "; ")
}

// Citations returns the distinct citation strings in first-seen order.
func Citations(results []domain.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(results))
	out := make([]string, 0, len(results))
	for _, r := range results {
		cite := r.Chunk.Citation()
		if _, ok := seen[cite]; ok {
			continue
		}
		seen[cite] = struct{}{}
		out = append(out, cite)
	}
	return out
}

// BestScore returns the highest score, or 0 for no results.
func BestScore(results []domain.ScoredChunk) float64 {
	if len(results) == 0 {
		return 0
	}
	best := results[0].Score
	for _, r := range results[1:] {
		best = max(best, r.Score)
	}
	return best
}
