package ingest

import (
	"regexp"
	"strings"
	"unicode"
)

const maxHeadingLen = 120

var (
	numberedHeading = regexp.MustCompile(`(?i)^(?:Section\s+)?\d+(?:\.\d+)*\.?\s+\S`)
	capsRun         = regexp.MustCompile(`[A-Z]{3,}`)
)

// ExtractHeadings returns lines that look like section headings: numbered
// lines ("1.", "2.3", "Section 4") and short all-caps lines.
func ExtractHeadings(text string) []string {
	headings := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		s := strings.TrimSpace(line)
		if len([]rune(s)) < 3 {
			continue
		}
		switch {
		case numberedHeading.MatchString(s):
			headings = append(headings, truncate(s))
		case isUpper(s) && len(strings.Fields(s)) <= 12 && capsRun.MatchString(s):
			headings = append(headings, truncate(s))
		}
	}
	return headings
}

// isUpper reports whether s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxHeadingLen {
		return s
	}
	return string(r[:maxHeadingLen])
}
