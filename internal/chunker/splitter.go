package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// splitter cuts section text into token-budgeted pieces on sentence boundaries.
type splitter struct {
	size    int
	overlap int
	min     int
}

func (s splitter) split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if estimateTokens(text) <= s.size {
		return []string{text}
	}

	var (
		chunks        []string
		current       []string
		currentTokens int
		// seeded counts the overlap sentences at the head of current.
		seeded int
		// lastEmitted is true when the most recent flush produced chunks[len-1].
		lastEmitted bool
	)

	for _, sent := range splitSentences(text) {
		sentTokens := estimateTokens(sent)

		if currentTokens+sentTokens > s.size && len(current) > 0 {
			joined := strings.Join(current, " ")
			lastEmitted = estimateTokens(joined) >= s.min || len(chunks) == 0
			if lastEmitted {
				chunks = append(chunks, joined)
			}

			current = s.overlapTail(current)
			seeded = len(current)
			currentTokens = 0
			for _, c := range current {
				currentTokens += estimateTokens(c)
			}
		}

		current = append(current, sent)
		currentTokens += sentTokens
	}

	if len(current) == 0 {
		return chunks
	}

	joined := strings.Join(current, " ")
	if estimateTokens(joined) >= s.min || len(chunks) == 0 {
		return append(chunks, joined)
	}

	// Undersized remainder: fold into the previous chunk. Overlap sentences
	// already present at the end of that chunk are not repeated.
	tail := current
	if lastEmitted {
		tail = current[seeded:]
	}
	if len(tail) > 0 {
		chunks[len(chunks)-1] += " " + strings.Join(tail, " ")
	}
	return chunks
}

// overlapTail walks backward through flushed sentences collecting up to
// s.overlap tokens to seed the next chunk.
func (s splitter) overlapTail(flushed []string) []string {
	tokens := 0
	start := len(flushed)
	for i := len(flushed) - 1; i >= 0; i-- {
		tokens += estimateTokens(flushed[i])
		if tokens >= s.overlap {
			break
		}
		start = i
	}
	tail := make([]string, len(flushed)-start)
	copy(tail, flushed[start:])
	return tail
}

// splitSentences splits at whitespace runs that follow '.', '!' or '?'.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	var prev rune
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) && isTerminal(prev) {
			end := i
			for i < len(text) {
				r2, size2 := utf8.DecodeRuneInString(text[i:])
				if !unicode.IsSpace(r2) {
					break
				}
				i += size2
			}
			sentences = append(sentences, text[start:end])
			start = i
			prev = 0
			continue
		}
		prev = r
		i += size
	}
	return append(sentences, text[start:])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
