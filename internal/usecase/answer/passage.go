package answer

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	passageMaxChars     = 400
	passageMaxSentences = 3
	minSentenceChars    = 15
)

var stopWords = toSet(
	"is", "the", "a", "an", "and", "or", "of", "to", "in", "for",
	"on", "with", "by", "at", "from", "as", "it", "that", "this",
	"are", "was", "were", "be", "been", "being", "have", "has",
	"had", "do", "does", "did", "will", "would", "could", "should",
	"may", "might", "shall", "can", "what", "how", "which", "who",
	"when", "where", "why", "under", "my", "your", "their", "its",
	"there", "here", "about", "than", "then", "also", "just",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var (
	multiSpaceRe = regexp.MustCompile(`  +`)
	bulletRe     = regexp.MustCompile(`\s*•\s*`)
	continuedRe  = regexp.MustCompile(`\(continued\.{0,3}\)`)
)

// cleanText repairs PDF extraction artifacts: single line breaks become
// spaces, paragraph breaks survive, bullets start new lines.
func cleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' && (i == 0 || text[i-1] != '\n') && (i+1 == len(text) || text[i+1] != '\n') {
			b.WriteByte(' ')
			continue
		}
		b.WriteByte(c)
	}
	s := multiSpaceRe.ReplaceAllString(b.String(), " ")
	s = bulletRe.ReplaceAllString(s, "\n• ")
	s = continuedRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// keywords returns the lowercase word set of text minus stop words.
func keywords(text string) map[string]struct{} {
	set := wordSet(text)
	for w := range set {
		if _, stop := stopWords[w]; stop {
			delete(set, w)
		}
	}
	return set
}

func wordSet(text string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	return toSet(words...)
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

// passageSentences splits at whitespace that follows . ! or ? and precedes
// an uppercase ASCII letter.
func passageSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(r) || i == 0 || !strings.ContainsRune(".!?", rune(text[i-1])) {
			i += size
			continue
		}
		j := i
		for j < len(text) {
			r2, s2 := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r2) {
				break
			}
			j += s2
		}
		if j < len(text) && text[j] >= 'A' && text[j] <= 'Z' {
			out = append(out, text[start:i])
			start = j
		}
		i = j
	}
	return append(out, text[start:])
}

// bestPassage picks the sentences sharing the most keywords with the
// question, within a character and sentence budget.
func bestPassage(text string, questionWords map[string]struct{}) string {
	type candidate struct {
		sentence string
		score    int
	}

	var scored []candidate
	for _, s := range passageSentences(text) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < minSentenceChars {
			continue
		}
		scored = append(scored, candidate{s, overlap(questionWords, wordSet(s))})
	}
	slices.SortStableFunc(scored, func(a, b candidate) int { return b.score - a.score })

	var picked []string
	total := 0
	for _, c := range scored {
		n := utf8.RuneCountInString(c.sentence)
		if total+n > passageMaxChars {
			break
		}
		picked = append(picked, c.sentence)
		total += n
		if len(picked) >= passageMaxSentences {
			break
		}
	}
	return strings.Join(picked, " ")
}

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
