package qa

import (
	"context"

	"github.com/kailas-cloud/policyqa/internal/domain"
)

// DocumentLoader reads per-page document text from a directory.
type DocumentLoader interface {
	LoadDocuments(ctx context.Context, dir string) ([]domain.Page, error)
}

// Chunker splits pages into retrieval chunks.
type Chunker interface {
	Chunk(pages []domain.Page) []domain.Chunk
}
