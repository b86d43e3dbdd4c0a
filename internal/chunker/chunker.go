// Package chunker turns per-page document text into retrieval chunks that keep
// their section, clause and heading hierarchy.
package chunker

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// Options bounds chunk sizes, in estimated tokens.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

// DefaultOptions returns the standard chunking budget.
func DefaultOptions() Options {
	return Options{ChunkSize: 500, ChunkOverlap: 100, MinChunkSize: 80}
}

// Validate checks that the budget is internally consistent.
func (o Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", o.ChunkSize)
	}
	if o.ChunkOverlap < 0 || o.ChunkOverlap >= o.ChunkSize {
		return fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", o.ChunkOverlap)
	}
	if o.MinChunkSize < 0 || o.MinChunkSize > o.ChunkSize {
		return fmt.Errorf("min_chunk_size must be in [0, chunk_size], got %d", o.MinChunkSize)
	}
	return nil
}

// Chunker splits pages into chunks.
type Chunker struct {
	split  splitter
	logger *zap.Logger
}

// New creates a Chunker.
func New(opts Options, logger *zap.Logger) *Chunker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chunker{
		split:  splitter{size: opts.ChunkSize, overlap: opts.ChunkOverlap, min: opts.MinChunkSize},
		logger: logger,
	}
}

// section is a heading plus the body lines accumulated under it.
type section struct {
	heading string
	clause  string
	lines   []string
}

// headingStacks holds the open heading chain of each document seen so far.
type headingStacks map[string][]string

// push closes headings at or below the new heading's depth, opens it, and
// returns the resulting path.
func (h headingStacks) push(doc, heading, clause string) string {
	depth := clauseDepth(clause)
	stack := h[doc]
	if len(stack) >= depth {
		stack = stack[:depth-1]
	}
	stack = append(stack, heading)
	h[doc] = stack
	return h.path(doc)
}

func (h headingStacks) path(doc string) string {
	return strings.Join(h[doc], " > ")
}

// Chunk converts pages into chunks with ids assigned in emission order:
// page order, then section order, then sub-chunk order.
func (c *Chunker) Chunk(pages []domain.Page) []domain.Chunk {
	stacks := make(headingStacks)
	chunks := make([]domain.Chunk, 0, len(pages))
	nextID := 0

	for _, page := range pages {
		if _, ok := stacks[page.DocName]; !ok {
			stacks[page.DocName] = nil
		}

		for _, sec := range splitSections(page.Text) {
			text := strings.TrimSpace(strings.Join(sec.lines, "\n"))
			if text == "" {
				continue
			}

			headingPath := stacks.path(page.DocName)
			if sec.heading != "" {
				headingPath = stacks.push(page.DocName, sec.heading, sec.clause)
			}
			label := sectionLabel(sec.heading)
			refs := findCrossReferences(text)

			for _, piece := range c.split.split(text) {
				chunkRefs := make([]string, len(refs))
				copy(chunkRefs, refs)
				chunks = append(chunks, domain.Chunk{
					Text:            piece,
					DocName:         page.DocName,
					Page:            page.PageNum,
					Section:         label,
					ClauseNumber:    sec.clause,
					HeadingPath:     headingPath,
					CrossReferences: chunkRefs,
					ChunkID:         nextID,
				})
				nextID++
			}
		}
	}

	c.logger.Info("Chunked pages",
		zap.Int("pages", len(pages)),
		zap.Int("chunks", len(chunks)),
	)
	return chunks
}

// splitSections scans lines and starts a new section at every heading.
// Text before the first heading forms a section with an empty heading.
func splitSections(text string) []section {
	var sections []section
	current := section{}

	for _, line := range strings.Split(text, "\n") {
		heading, clause, ok := detectHeading(line)
		if !ok {
			current.lines = append(current.lines, line)
			continue
		}
		if len(current.lines) > 0 {
			sections = append(sections, current)
		}
		current = section{heading: heading, clause: clause, lines: []string{line}}
	}

	if len(current.lines) > 0 {
		sections = append(sections, current)
	}
	return sections
}
