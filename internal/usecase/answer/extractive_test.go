package answer

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

func wearAndTear(score float64) []domain.ScoredChunk {
	return []domain.ScoredChunk{{
		Chunk: domain.Chunk{
			Text:         "Wear and tear is excluded.",
			DocName:      "Home.pdf",
			Page:         12,
			Section:      "Exclusions",
			ClauseNumber: "4.2",
		},
		Score: score,
	}}
}

func TestCompose_Grounded(t *testing.T) {
	gen := NewExtractive().Compose("Is wear and tear covered?", wearAndTear(0.8))

	for _, want := range []string{
		"Based on the policy documents:",
		"**Exclusions (§4.2)** — *Home.pdf, p.12*",
		"> Wear and tear is excluded.",
		"Sources: Home.pdf §4.2 (Exclusions) p.12",
	} {
		if !strings.Contains(gen.Answer, want) {
			t.Errorf("answer missing %q:\n%s", want, gen.Answer)
		}
	}
	if len(gen.FollowUps) != 3 {
		t.Errorf("expected 3 follow-ups, got %v", gen.FollowUps)
	}
}

func TestCompose_NoContext(t *testing.T) {
	gen := NewExtractive().Compose("anything", nil)

	if !strings.HasPrefix(gen.Answer, NoContextText) {
		t.Errorf("unexpected answer: %s", gen.Answer)
	}
	if !strings.Contains(gen.Answer, "Try rephrasing") {
		t.Errorf("expected rephrase hint: %s", gen.Answer)
	}
	want := []string{
		"What does this policy cover?",
		"What are the general exclusions?",
		"How do I make a claim?",
	}
	if !slices.Equal(gen.FollowUps, want) {
		t.Errorf("FollowUps = %v, want %v", gen.FollowUps, want)
	}
}

func TestCompose_LowConfidence(t *testing.T) {
	results := wearAndTear(0.1)
	results = append(results,
		domain.ScoredChunk{Chunk: domain.Chunk{Text: strings.Repeat("Long clause text. ", 20), DocName: "Car.pdf", Page: 3}, Score: 0.09},
		domain.ScoredChunk{Chunk: wearAndTear(0)[0].Chunk, Score: 0.08},
		domain.ScoredChunk{Chunk: domain.Chunk{Text: "Fourth.", DocName: "Pet.pdf", Page: 1}, Score: 0.07},
	)
	gen := NewExtractive().Compose("What is the capital of France?", results)

	if !strings.Contains(gen.Answer, "couldn't find") {
		t.Errorf("expected no-answer marker:\n%s", gen.Answer)
	}
	if !strings.Contains(gen.Answer, "**Related sections I found:**") {
		t.Errorf("expected related sections:\n%s", gen.Answer)
	}
	if strings.Count(gen.Answer, "- Home.pdf §4.2 (Exclusions) p.12:") != 1 {
		t.Errorf("duplicate citation should be listed once:\n%s", gen.Answer)
	}
	if strings.Contains(gen.Answer, "- Pet.pdf") {
		t.Errorf("only the first three results are listed:\n%s", gen.Answer)
	}
	if !strings.Contains(gen.Answer, `..."`) {
		t.Errorf("long snippet should be truncated:\n%s", gen.Answer)
	}
	if !strings.Contains(gen.Answer, "Sources: Home.pdf §4.2 (Exclusions) p.12; Car.pdf p.3; Pet.pdf p.1") {
		t.Errorf("missing citations line:\n%s", gen.Answer)
	}
}

func TestCompose_NoUsablePassageFallsBack(t *testing.T) {
	results := []domain.ScoredChunk{{Chunk: domain.Chunk{Text: "Too short.", DocName: "Home.pdf", Page: 2}, Score: 0.9}}
	gen := NewExtractive().Compose("Is it covered?", results)

	if !strings.HasPrefix(gen.Answer, UngroundedText) {
		t.Errorf("expected ungrounded fallback:\n%s", gen.Answer)
	}
}

func TestCompose_GroupsBySection(t *testing.T) {
	results := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Text: "Flood damage is covered up to the limit.", DocName: "Home.pdf", Page: 4, Section: "Coverage", ClauseNumber: "2.1"}, Score: 0.9},
		{Chunk: domain.Chunk{Text: "Storm damage is covered for fences.", DocName: "Home.pdf", Page: 5, Section: "Coverage", ClauseNumber: "2.2"}, Score: 0.8},
		{Chunk: domain.Chunk{Text: "Damage from gradual seepage is excluded.", DocName: "Home.pdf", Page: 9, HeadingPath: "Water > Seepage"}, Score: 0.7},
	}
	gen := NewExtractive().Compose("Is flood damage covered?", results)

	if strings.Count(gen.Answer, "**Coverage (§2.1)** — *Home.pdf, p.4*") != 1 {
		t.Errorf("expected one Coverage block labelled with the first chunk:\n%s", gen.Answer)
	}
	if !strings.Contains(gen.Answer, "> Flood damage is covered up to the limit. Storm damage is covered for fences.") {
		t.Errorf("expected combined passages:\n%s", gen.Answer)
	}
	if !strings.Contains(gen.Answer, "**Water > Seepage** — *Home.pdf, p.9*") {
		t.Errorf("expected heading path label:\n%s", gen.Answer)
	}
}

func TestGenerate_ReadsQuestionFromPrompt(t *testing.T) {
	prompt := BuildQAPrompt("Is wear and tear covered?", "ctx")
	gen, err := NewExtractive().Generate(context.Background(), prompt, wearAndTear(0.8))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(gen.Answer, "Exclusions") {
		t.Errorf("unexpected answer:\n%s", gen.Answer)
	}
	if NewExtractive().Name() != "extractive" {
		t.Error("unexpected name")
	}
}

func TestFollowUps_TopicTemplates(t *testing.T) {
	results := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Section: "Exclusions", HeadingPath: "Home > Exclusions > \"Flood\""}},
		{Chunk: domain.Chunk{Section: "Exclusions", HeadingPath: "Home > Exclusions > Theft"}},
		{Chunk: domain.Chunk{Section: "Claims", HeadingPath: "Home > Claims > Lodging"}},
	}
	got := FollowUps(results, "What about storms?")
	want := []string{
		"What specific exclusions apply to Flood?",
		"How do I make a claim for Lodging?",
		"What items are excluded from coverage?",
	}
	if !slices.Equal(got, want) {
		t.Errorf("FollowUps = %v, want %v", got, want)
	}
}

func TestFollowUps_SkipsTopicInQuestion(t *testing.T) {
	results := []domain.ScoredChunk{{Chunk: domain.Chunk{Section: "Exclusions", HeadingPath: "Flood"}}}
	got := FollowUps(results, "Is flood excluded?")
	if slices.Contains(got, "What specific exclusions apply to Flood?") {
		t.Errorf("topic already in question: %v", got)
	}
	if len(got) != 3 {
		t.Errorf("expected padding to 3, got %v", got)
	}
}

func TestFollowUps_SkipsGenericOverlappingQuestion(t *testing.T) {
	got := FollowUps(nil, "What items are excluded from coverage?")
	if slices.Contains(got, "What items are excluded from coverage?") {
		t.Errorf("generic follow-up repeats the question: %v", got)
	}
	if got[0] != "What is the claims process?" {
		t.Errorf("unexpected first follow-up: %v", got)
	}
}
