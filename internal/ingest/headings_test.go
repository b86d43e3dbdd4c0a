package ingest

import (
	"slices"
	"strings"
	"testing"
)

func TestExtractHeadings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"numbered", "1. Definitions\nbody text", []string{"1. Definitions"}},
		{"nested number", "  4.2.1 Storm damage  ", []string{"4.2.1 Storm damage"}},
		{"section prefix", "section 7 Claims", []string{"section 7 Claims"}},
		{"all caps", "GENERAL EXCLUSIONS", []string{"GENERAL EXCLUSIONS"}},
		{"caps with digits", "PART 2 - COVER", []string{"PART 2 - COVER"}},
		{"short caps run", "AB CD", []string{}},
		{"mixed case", "General Exclusions", []string{}},
		{"too short", "1.", []string{}},
		{"number without text", "12", []string{}},
		{"too many words", "A B C D E F G H I J K L MORE", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractHeadings(tt.text)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ExtractHeadings(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractHeadings_Truncates(t *testing.T) {
	line := "1. " + strings.Repeat("x", 200)
	got := ExtractHeadings(line)
	if len(got) != 1 || len([]rune(got[0])) != maxHeadingLen {
		t.Errorf("expected one heading of %d runes, got %v", maxHeadingLen, got)
	}
}
