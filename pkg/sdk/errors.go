package policyqa

import "github.com/kailas-cloud/policyqa/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyQuestion          = domain.ErrEmptyQuestion
	ErrNotInitialized         = domain.ErrNotInitialized
	ErrNoDocuments            = domain.ErrNoDocuments
	ErrUnknownBackend         = domain.ErrUnknownBackend
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrRateLimited            = domain.ErrRateLimited
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGenerationFailed       = domain.ErrGenerationFailed
)
