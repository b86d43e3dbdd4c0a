package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxHeadingRunes      = 120
	maxSectionLabelRunes = 60
	maxCapsHeadingWords  = 12
)

var (
	// "Section 4 Claims", "3.2 Exclusions", "3.2. Exclusions", "3. Exclusions"
	numberedSectionRe = regexp.MustCompile(
		`^(?:(?i:section)\s+(\d+(?:\.\d+)*)\.?|(\d+(?:\.\d+)+)\.?|(\d+)\.)\s+\S`)

	capsHeadingRe = regexp.MustCompile(`^[A-Z][A-Z\s\-&/]{2,}$`)

	crossRefRe = regexp.MustCompile(
		`(?i)(?:see|refer\s+to|as\s+defined\s+in|under)\s+(?:section|clause|part)\s+(\d+(?:\.\d+)*)`)
)

// sectionKeywords is the fixed vocabulary of policy section names.
// Longer phrases come first so "general conditions" wins over "conditions".
var sectionKeywords = []string{
	"what is not covered",
	"special conditions",
	"general conditions",
	"additional benefits",
	"policy schedule",
	"insuring clause",
	"what is covered",
	"optional covers",
	"endorsements",
	"declarations",
	"how to claim",
	"definitions",
	"exclusions",
	"conditions",
	"extensions",
	"coverage",
	"preamble",
	"claims",
	"limits",
	"excess",
}

var keywordSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(sectionKeywords))
	for _, k := range sectionKeywords {
		m[k] = struct{}{}
	}
	return m
}()

// detectHeading reports whether line is a section heading and returns the
// stored heading text and its clause number (empty when unnumbered).
func detectHeading(line string) (heading, clause string, ok bool) {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return "", "", false
	}

	if m := numberedSectionRe.FindStringSubmatch(stripped); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				clause = g
				break
			}
		}
		return truncateRunes(stripped, maxHeadingRunes), clause, true
	}

	if isCapsHeading(stripped) {
		return truncateRunes(stripped, maxHeadingRunes), "", true
	}

	if _, found := keywordSet[strings.TrimRight(strings.ToLower(stripped), ":")]; found {
		return truncateRunes(stripped, maxHeadingRunes), "", true
	}

	return "", "", false
}

func isCapsHeading(s string) bool {
	if !capsHeadingRe.MatchString(s) {
		return false
	}
	if len(strings.Fields(s)) > maxCapsHeadingWords {
		return false
	}
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

// sectionLabel derives the human label for a heading: the title-cased domain
// keyword it contains, else its first 60 characters.
func sectionLabel(heading string) string {
	if heading == "" {
		return ""
	}
	lower := strings.ToLower(heading)
	for _, kw := range sectionKeywords {
		if strings.Contains(lower, kw) {
			return titleCase(kw)
		}
	}
	return truncateRunes(heading, maxSectionLabelRunes)
}

// clauseDepth is the nesting depth implied by a dotted clause number.
func clauseDepth(clause string) int {
	if clause == "" {
		return 1
	}
	return strings.Count(clause, ".") + 1
}

func findCrossReferences(text string) []string {
	refs := make([]string, 0)
	for _, m := range crossRefRe.FindAllStringSubmatch(text, -1) {
		refs = append(refs, m[1])
	}
	return refs
}

// estimateTokens approximates a token count as characters / 4.
func estimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
