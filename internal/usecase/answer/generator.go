// Package answer composes cited answers from ranked chunks.
package answer

import (
	"context"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// Generation is a generator's output.
type Generation struct {
	Answer    string
	FollowUps []string
}

// Generator turns a grounded prompt and its ranked context into an answer.
// Implementations must only assert what the context supports and must return
// either a citations-bearing answer or an explicit no-answer response.
type Generator interface {
	Generate(ctx context.Context, prompt string, results []domain.ScoredChunk) (Generation, error)
	Name() string
}
