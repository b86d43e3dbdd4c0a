package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second!  Third?\nFourth e.g.x")
	want := []string{"First one.", "Second!", "Third?", "Fourth e.g.x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitSentences() = %q, want %q", got, want)
	}
}

func TestSplit_ShortTextUnchanged(t *testing.T) {
	s := splitter{size: 500, overlap: 100, min: 80}
	got := s.split("Wear and tear is excluded.")
	if len(got) != 1 || got[0] != "Wear and tear is excluded." {
		t.Errorf("expected text unchanged, got %q", got)
	}
	if got := s.split("   "); len(got) != 0 {
		t.Errorf("expected no chunks for blank text, got %q", got)
	}
}

func TestSplit_RemainderMergesWithoutRepeatingOverlap(t *testing.T) {
	s := splitter{size: 10, overlap: 3, min: 5}
	text := "Fire damage is covered here. Theft ok. Flood ok."

	got := s.split(text)
	want := []string{"Fire damage is covered here. Theft ok. Flood ok."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("split() = %q, want %q", got, want)
	}
}

func TestSplit_RemainderAfterDroppedFlushAppendsEverything(t *testing.T) {
	s := splitter{size: 10, overlap: 0, min: 8}
	text := "Storm damage to fences is excluded. Theft ok. " +
		"Wear and tear is not included. Fire damage is covered here."

	got := s.split(text)
	want := []string{"Storm damage to fences is excluded. Theft ok. Fire damage is covered here."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("split() = %q, want %q", got, want)
	}
}

func TestSplit_FirstUndersizedChunkKept(t *testing.T) {
	s := splitter{size: 10, overlap: 0, min: 8}
	long := "Storm damage to fences and gates is excluded entirely."

	got := s.split("Theft ok. " + long)
	want := []string{"Theft ok.", long}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("split() = %q, want %q", got, want)
	}
}

func TestSplit_OverlapSeedsNextChunk(t *testing.T) {
	s := splitter{size: 30, overlap: 10, min: 10}
	sentences := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		sentences = append(sentences, fmt.Sprintf("Item %02d pays for sudden damage.", i)) // 7 tokens
	}
	chunks := s.split(strings.Join(sentences, " "))

	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if estimateTokens(c) < s.min {
			t.Errorf("chunk %d below floor: %d tokens", i, estimateTokens(c))
		}
		if strings.HasPrefix(c, " ") || strings.HasSuffix(c, " ") {
			t.Errorf("chunk %d has stray whitespace: %q", i, c)
		}
	}
	// 7-token sentences with a 10-token overlap budget carry exactly one sentence over.
	first := splitSentences(chunks[0])
	second := splitSentences(chunks[1])
	if first[len(first)-1] != second[0] {
		t.Errorf("expected overlap sentence %q at start of next chunk, got %q", first[len(first)-1], second[0])
	}
}
