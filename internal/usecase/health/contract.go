package health

import "context"

// IndexState reports whether a searchable index is published.
type IndexState interface {
	IndexLoaded() bool
}

// CachePinger is the optional redis embedding cache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker probes the embedding backend. Unloaded lazy backends report healthy.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
