package domain

import (
	"strconv"
	"strings"
)

// Page is one physical page of extracted document text.
type Page struct {
	DocName  string
	PageNum  int // 1-based
	Text     string
	Headings []string
}

// Chunk is a retrieval unit: a passage of document text plus its section metadata.
type Chunk struct {
	Text            string   `json:"text"`
	DocName         string   `json:"doc_name"`
	Page            int      `json:"page"`
	Section         string   `json:"section"`
	ClauseNumber    string   `json:"clause_number"`
	HeadingPath     string   `json:"heading_path"`
	CrossReferences []string `json:"cross_references"`
	ChunkID         int      `json:"chunk_id"`
}

// Citation formats the chunk source as `doc [§clause] [(section)|"heading path"] p.N`.
func (c Chunk) Citation() string {
	parts := make([]string, 0, 4)
	parts = append(parts, c.DocName)
	if c.ClauseNumber != "" {
		parts = append(parts, "§"+c.ClauseNumber)
	}
	switch {
	case c.Section != "":
		parts = append(parts, "("+c.Section+")")
	case c.HeadingPath != "":
		parts = append(parts, `"`+c.HeadingPath+`"`)
	}
	parts = append(parts, "p."+strconv.Itoa(c.Page))
	return strings.Join(parts, " ")
}

// ScoredChunk pairs a chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// DocNames returns the distinct document names in first-seen order.
func DocNames(chunks []Chunk) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, c := range chunks {
		if _, ok := seen[c.DocName]; ok {
			continue
		}
		seen[c.DocName] = struct{}{}
		names = append(names, c.DocName)
	}
	return names
}
