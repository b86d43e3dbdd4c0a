package answer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
	"github.com/kailas-cloud/policyqa/internal/usecase/retrieval"
)

// LLMName is the registry name of the hosted chat generator.
const LLMName = "openai"

// Completer sends one system and user message pair to a chat model.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLM answers with a hosted chat model. Citations are appended from the
// retrieved results rather than trusted from the model output.
type LLM struct {
	completer Completer
	fallback  Extractive
	logger    *zap.Logger
}

var _ Generator = (*LLM)(nil)

// NewLLM creates a chat-model generator.
func NewLLM(c Completer, logger *zap.Logger) *LLM {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLM{completer: c, logger: logger}
}

// Name implements Generator.
func (g *LLM) Name() string { return LLMName }

// Generate implements Generator. With no context it answers without calling the model.
func (g *LLM) Generate(ctx context.Context, prompt string, results []domain.ScoredChunk) (Generation, error) {
	question := ExtractQuestion(prompt)
	if len(results) == 0 {
		return g.fallback.Compose(question, nil), nil
	}

	text, err := g.completer.Complete(ctx, SystemPrompt, prompt)
	if err != nil {
		return Generation{}, fmt.Errorf("complete: %w", err)
	}
	if text == "" {
		g.logger.Warn("Model returned an empty answer", zap.String("question", question))
		text = NoAnswerMarker
	}

	citations := retrieval.FormatCitations(results)
	if !strings.Contains(text, citations) {
		text += "\n\n" + citations
	}
	return Generation{Answer: text, FollowUps: FollowUps(results, question)}, nil
}
