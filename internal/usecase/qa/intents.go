package qa

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

var (
	greetings = []string{
		"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
		"howdy", "hola", "sup", "yo", "hii", "hiii", "hihi",
	}
	greetingPrefixes = []string{"hi ", "hey ", "hello "}

	identityQuestions = []string{
		"who are you", "who are u", "what are you", "what are u",
		"what is this", "what do you do", "introduce yourself",
		"what can you do", "what can u do",
	}
	thanks       = []string{"thanks", "thank you", "thank u", "thx", "ty", "cheers"}
	helpRequests = []string{"help", "help me", "what can i ask", "how to use"}
)

const (
	identityText = "I'm a **Policy Q&A Assistant** — an AI-powered chatbot that answers " +
		"questions about insurance policy documents.\n\n" +
		"I search through the loaded policy PDFs and give you **grounded answers " +
		"with clause-level citations** so you know exactly where the information " +
		"comes from.\n\n" +
		"Just type your question about any policy topic!"

	thanksText = "You're welcome! Feel free to ask more questions about your policy anytime."

	helpText = "Here's how to get the best results:\n\n" +
		"**Ask specific questions** about your policy, such as:\n" +
		"- Coverage: \"What does the contents insurance cover?\"\n" +
		"- Exclusions: \"Is flood damage excluded?\"\n" +
		"- Definitions: \"How is 'Insured Event' defined?\"\n" +
		"- Claims: \"How do I lodge a claim?\"\n" +
		"- Conditions: \"What are my obligations under the policy?\"\n\n" +
		"I'll search the policy documents and provide answers with exact citations."
)

func greetingText(docCount int) string {
	plural := "s"
	if docCount == 1 {
		plural = ""
	}
	return fmt.Sprintf("Hello! I'm your **Policy Q&A Assistant**. I have "+
		"**%d policy document%s** loaded and ready to search.\n\n"+
		"Ask me anything about your insurance policies — for example:\n"+
		"- \"Is wear-and-tear covered?\"\n"+
		"- \"What is the excess for water damage?\"\n"+
		"- \"What definitions apply to Insured Person?\"\n\n"+
		"I'll find the relevant sections and cite the exact source.", docCount, plural)
}

// conversational answers greetings, identity, thanks and help messages.
// ok is false for anything that needs retrieval.
func conversational(question string, docCount int) (domain.Answer, bool) {
	q := strings.TrimRight(strings.TrimSpace(strings.ToLower(question)), "?!.")

	reply := func(text string, followUps ...string) (domain.Answer, bool) {
		if followUps == nil {
			followUps = []string{}
		}
		return domain.Answer{
			Question:   question,
			Answer:     text,
			Citations:  "",
			Sources:    []domain.SourceDetail{},
			Confidence: 1.0,
			FollowUps:  followUps,
		}, true
	}

	switch {
	case slices.Contains(greetings, q) || hasAnyPrefix(q, greetingPrefixes):
		return reply(greetingText(docCount),
			"What does this policy cover?",
			"What are the general exclusions?",
			"How do I make a claim?",
		)
	case slices.Contains(identityQuestions, q):
		return reply(identityText,
			"What documents are loaded?",
			"What items are excluded from coverage?",
			"What is the claims process?",
		)
	case slices.Contains(thanks, q):
		return reply(thanksText)
	case slices.Contains(helpRequests, q):
		return reply(helpText,
			"What does this policy cover?",
			"What are the general exclusions?",
			"What is the excess amount?",
		)
	}
	return domain.Answer{}, false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
