package answer

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/policyqa/internal/domain"
	"github.com/kailas-cloud/policyqa/internal/usecase/retrieval"
)

// ExtractiveName is the registry name of the rule-based generator.
const ExtractiveName = "extractive"

// LowConfidenceScore is the best-match score below which no grounded answer is attempted.
const LowConfidenceScore = 0.25

const (
	relatedLimit      = 3
	relatedSnippetLen = 150
)

// Fixed response texts.
const (
	NoContextText     = "I couldn't find anything related to that in the loaded policy documents."
	LowConfidenceText = "I couldn't find a direct answer to that, but here are some related sections that might help."
	UngroundedText    = "While related sections were found, they do not directly answer this specific question."
	rephraseHint      = "Try rephrasing your question or asking about a specific policy topic like coverage, exclusions, or claims."
)

// Extractive answers by quoting the most relevant sentences of each
// retrieved section. It needs no model and never fails.
type Extractive struct{}

var _ Generator = Extractive{}

// NewExtractive creates the rule-based generator.
func NewExtractive() Extractive { return Extractive{} }

// Name implements Generator.
func (Extractive) Name() string { return ExtractiveName }

// Generate implements Generator; the question is read from the prompt.
func (e Extractive) Generate(_ context.Context, prompt string, results []domain.ScoredChunk) (Generation, error) {
	return e.Compose(ExtractQuestion(prompt), results), nil
}

// Compose builds the answer for question from ranked results.
func (Extractive) Compose(question string, results []domain.ScoredChunk) Generation {
	if len(results) == 0 {
		return Generation{
			Answer:    noAnswer(nil, NoContextText),
			FollowUps: append([]string(nil), noContextFollowUps...),
		}
	}

	followUps := FollowUps(results, question)
	if retrieval.BestScore(results) < LowConfidenceScore {
		return Generation{Answer: noAnswer(results, LowConfidenceText), FollowUps: followUps}
	}
	return Generation{Answer: grounded(question, results), FollowUps: followUps}
}

type group struct {
	doc    string
	label  string
	chunks []domain.Chunk
}

// grounded renders one quoted block per (document, section) group.
func grounded(question string, results []domain.ScoredChunk) string {
	var groups []*group
	byKey := make(map[[2]string]*group)
	for _, r := range results {
		label := r.Chunk.Section
		if label == "" {
			label = r.Chunk.HeadingPath
		}
		if label == "" {
			label = "General"
		}
		key := [2]string{r.Chunk.DocName, label}
		g, ok := byKey[key]
		if !ok {
			g = &group{doc: r.Chunk.DocName, label: label}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.chunks = append(g.chunks, r.Chunk)
	}

	questionWords := keywords(question)
	lines := []string{"Based on the policy documents:\n"}
	for _, g := range groups {
		passages := make([]string, 0, len(g.chunks))
		for _, c := range g.chunks {
			if p := bestPassage(cleanText(c.Text), questionWords); p != "" {
				passages = append(passages, p)
			}
		}
		if len(passages) == 0 {
			continue
		}

		first := g.chunks[0]
		header := "**" + g.label
		if first.ClauseNumber != "" {
			header += " (§" + first.ClauseNumber + ")"
		}
		header += "** — *" + g.doc + ", p." + strconv.Itoa(first.Page) + "*"
		lines = append(lines, header, "> "+strings.Join(passages, " ")+"\n")
	}

	if len(lines) == 1 {
		return noAnswer(results, UngroundedText)
	}
	lines = append(lines, "", retrieval.FormatCitations(results))
	return strings.Join(lines, "\n")
}

// noAnswer explains the miss and lists up to three related citations.
func noAnswer(results []domain.ScoredChunk, explanation string) string {
	var b strings.Builder
	b.WriteString(explanation + "\n")

	if len(results) == 0 {
		b.WriteString("\n" + rephraseHint)
		return b.String()
	}

	b.WriteString("\n**Related sections I found:**\n")
	seen := make(map[string]struct{})
	for _, r := range results[:min(len(results), relatedLimit)] {
		cite := r.Chunk.Citation()
		if _, ok := seen[cite]; ok {
			continue
		}
		seen[cite] = struct{}{}

		snippet := strings.TrimSpace(truncate(cleanText(r.Chunk.Text), relatedSnippetLen))
		if utf8.RuneCountInString(r.Chunk.Text) > relatedSnippetLen {
			snippet += "..."
		}
		b.WriteString("- " + cite + ": \"" + snippet + "\"\n")
	}
	b.WriteString("\n" + retrieval.FormatCitations(results))
	return b.String()
}
