package answer

import (
	"regexp"
	"strings"
)

// NoAnswerMarker is the sentence a generator must use when the context does not answer the question.
const NoAnswerMarker = "I cannot find a definitive answer in the provided policy wording."

// SystemPrompt constrains generation to the retrieved context.
const SystemPrompt = `You are a Policy Q&A Assistant. Your role is to answer questions about insurance policy documents accurately and precisely.

STRICT RULES:
1. Answer ONLY based on the provided context from policy documents.
2. NEVER make up information or use outside knowledge.
3. Always cite the specific source (document name, section, clause number, page) for every claim.
4. If the context does not contain enough information to answer the question definitively, you MUST respond with: "` + NoAnswerMarker + `"
5. If the context contains conflicting information, explain the ambiguity and cite both sources.
6. Be concise but thorough. Include all relevant details from the context.
7. Use the exact terminology from the policy documents.
`

const qaTemplate = `%SYSTEM%

CONTEXT FROM POLICY DOCUMENTS:
%CONTEXT%

QUESTION: %QUESTION%

INSTRUCTIONS:
- Answer the question based ONLY on the context above.
- Quote relevant policy language where helpful.
- If multiple sources are relevant, synthesize the information.
- If the context does not adequately address the question, say "` + NoAnswerMarker + `" and list the closest related clauses you found.
- End your answer with a blank line followed by the citations.

ANSWER:`

// BuildQAPrompt renders the grounded QA prompt.
func BuildQAPrompt(question, context string) string {
	return strings.NewReplacer(
		"%SYSTEM%", SystemPrompt,
		"%CONTEXT%", context,
		"%QUESTION%", question,
	).Replace(qaTemplate)
}

var questionRe = regexp.MustCompile(`(?s)QUESTION:\s*(.+?)(?:\n|INSTRUCTIONS:)`)

// ExtractQuestion recovers the question from a prompt built by BuildQAPrompt.
// Any other text is treated as ending in the question line.
func ExtractQuestion(prompt string) string {
	if m := questionRe.FindStringSubmatch(prompt); m != nil {
		return strings.TrimSpace(m[1])
	}
	lines := strings.Split(prompt, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
