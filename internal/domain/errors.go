package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyCorpus signals an index build over zero chunks.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrNotBuilt signals a save before any build.
	ErrNotBuilt = errors.New("index not built")
	// ErrIndexNotLoaded signals a search before build or load.
	ErrIndexNotLoaded = errors.New("index not loaded")
	// ErrPersistenceLoad signals corrupt or partial persisted index files.
	ErrPersistenceLoad = errors.New("persisted index unreadable")
	// ErrUnknownBackend signals an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown backend")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")

	// ErrNotInitialized signals a question asked before the pipeline is ready.
	ErrNotInitialized = errors.New("pipeline not initialized")
	// ErrNoDocuments signals an empty documents directory.
	ErrNoDocuments = errors.New("no documents found")
	// ErrEmptyQuestion signals a blank question.
	ErrEmptyQuestion = errors.New("question is required")

	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationFailed signals an answer generation backend failure.
	ErrGenerationFailed = errors.New("answer generation failed")
)

// UnknownBackendError wraps ErrUnknownBackend with the rejected name.
type UnknownBackendError struct {
	Kind      string // "embedding" or "generator"
	Name      string
	Available []string
}

func (e *UnknownBackendError) Error() string {
	return fmt.Sprintf("%s: %s %q (available: %s)",
		ErrUnknownBackend.Error(), e.Kind, e.Name, strings.Join(e.Available, ", "))
}

func (e *UnknownBackendError) Unwrap() error { return ErrUnknownBackend }

// DimensionMismatchError wraps ErrVectorDimMismatch with both sizes.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrVectorDimMismatch.Error(), e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrVectorDimMismatch }
