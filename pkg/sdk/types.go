package policyqa

import "github.com/kailas-cloud/policyqa/internal/domain"

// Source is one retrieved passage backing an answer.
type Source struct {
	DocName     string
	Section     string
	Clause      string
	Page        int
	HeadingPath string
	Score       float64
	Snippet     string
}

// Answer is the response to a question.
type Answer struct {
	Question string
	Text     string
	// Citations is the human-readable "Sources: ..." line.
	Citations  string
	Sources    []Source
	Confidence float64
	FollowUps  []string
}

// Stats summarizes the loaded corpus and active backends.
type Stats struct {
	Documents      int
	Chunks         int
	EmbeddingModel string
	LLMBackend     string
	IndexLoaded    bool
	DocNames       []string
}

func answerFromDomain(a domain.Answer) Answer {
	sources := make([]Source, len(a.Sources))
	for i, s := range a.Sources {
		sources[i] = Source{
			DocName:     s.DocName,
			Section:     s.Section,
			Clause:      s.Clause,
			Page:        s.Page,
			HeadingPath: s.HeadingPath,
			Score:       s.Score,
			Snippet:     s.Snippet,
		}
	}
	return Answer{
		Question:   a.Question,
		Text:       a.Answer,
		Citations:  a.Citations,
		Sources:    sources,
		Confidence: a.Confidence,
		FollowUps:  a.FollowUps,
	}
}

func statsFromDomain(s domain.Stats) Stats {
	return Stats{
		Documents:      s.Documents,
		Chunks:         s.Chunks,
		EmbeddingModel: s.EmbeddingModel,
		LLMBackend:     s.LLMBackend,
		IndexLoaded:    s.IndexLoaded,
		DocNames:       s.DocNames,
	}
}
