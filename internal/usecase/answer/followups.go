package answer

import (
	"strings"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

const maxFollowUps = 3

type topicTemplate struct {
	key      string
	template string // %s is replaced by the topic
}

// topicTemplates are matched against section names in this order.
var topicTemplates = []topicTemplate{
	{"exclusion", "What specific exclusions apply to %s?"},
	{"cover", "What are the limits for %s coverage?"},
	{"definition", "How does the policy define '%s'?"},
	{"claim", "How do I make a claim for %s?"},
	{"condition", "What conditions must be met for %s?"},
	{"excess", "What excess applies to %s?"},
	{"limit", "What are the coverage limits for %s?"},
	{"waiting", "Is there a waiting period for %s?"},
}

var genericFollowUps = []string{
	"What items are excluded from coverage?",
	"What is the claims process?",
	"What are the policy's general conditions?",
	"How is the excess calculated?",
	"What additional optional covers are available?",
	"What are my obligations under this policy?",
}

// noContextFollowUps are offered when nothing was retrieved.
var noContextFollowUps = []string{
	"What does this policy cover?",
	"What are the general exclusions?",
	"How do I make a claim?",
}

// FollowUps suggests up to three questions seeded by the sections of results.
func FollowUps(results []domain.ScoredChunk, question string) []string {
	questionLower := strings.ToLower(question)
	out := make([]string, 0, maxFollowUps)
	seen := make(map[string]struct{})

	for _, r := range results {
		section := r.Chunk.Section
		if section == "" {
			section = r.Chunk.HeadingPath
		}
		section = strings.ToLower(section)

		for _, tt := range topicTemplates {
			if !strings.Contains(section, tt.key) {
				continue
			}
			if _, used := seen[tt.key]; used {
				continue
			}
			if topic := topicOf(r.Chunk, questionLower); topic != "" {
				if _, used := seen[topic]; !used {
					out = append(out, strings.Replace(tt.template, "%s", topic, 1))
					seen[tt.key] = struct{}{}
					seen[topic] = struct{}{}
				}
			}
			break
		}
		if len(out) >= maxFollowUps {
			break
		}
	}

	questionWords := keywords(questionLower)
	for _, q := range genericFollowUps {
		if len(out) >= maxFollowUps {
			break
		}
		if overlap(keywords(q), questionWords) < 2 {
			out = append(out, q)
		}
	}
	return out[:min(len(out), maxFollowUps)]
}

// topicOf takes the last heading path segment, unless the question already mentions it.
func topicOf(c domain.Chunk, questionLower string) string {
	heading := c.HeadingPath
	if heading == "" {
		heading = c.Section
	}
	parts := strings.Split(heading, ">")
	topic := strings.Trim(strings.TrimSpace(parts[len(parts)-1]), `"`)
	topic = strings.Trim(topic, "'")
	if len([]rune(topic)) <= 2 || strings.Contains(questionLower, strings.ToLower(topic)) {
		return ""
	}
	return topic
}
