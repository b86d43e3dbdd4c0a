package policyqa

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	docsDir      string
	indexDir     string
	extensions   []string
	forceRebuild bool

	encoder   Encoder
	batchSize int
	llm       *llmConfig

	chunking  ChunkingOptions
	retrieval RetrievalOptions

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type llmConfig struct {
	apiKey  string
	model   string
	baseURL string
}

// ChunkingOptions bounds chunk sizes, in estimated tokens.
type ChunkingOptions struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

// RetrievalOptions tune which chunks back an answer.
type RetrievalOptions struct {
	TopK                int
	SimilarityThreshold float64
	DedupThreshold      float64
}

// WithDocumentsDir sets the directory scanned for policy documents.
// Default: "data".
func WithDocumentsDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.docsDir = dir
	})
}

// WithIndexDir sets where the vector index is persisted. Default: "vector_db".
func WithIndexDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexDir = dir
	})
}

// WithExtensions restricts ingestion to the given file extensions.
// Default: .pdf and .txt.
func WithExtensions(exts ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.extensions = exts
	})
}

// WithEncoder sets the text encoder used for both indexing and queries.
// Changing encoders invalidates a persisted index built with another one.
func WithEncoder(e Encoder) Option {
	return optionFunc(func(c *clientConfig) {
		c.encoder = e
	})
}

// WithBatchSize sets how many texts are encoded per call. Default: 16.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = n
	})
}

// WithOpenAI answers with an OpenAI-compatible chat model instead of the
// extractive composer. An empty baseURL selects the OpenAI API.
func WithOpenAI(apiKey, model, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.llm = &llmConfig{apiKey: apiKey, model: model, baseURL: baseURL}
	})
}

// WithChunking overrides the chunking budget.
func WithChunking(o ChunkingOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunking = o
	})
}

// WithRetrieval overrides the retrieval settings.
func WithRetrieval(o RetrievalOptions) Option {
	return optionFunc(func(c *clientConfig) {
		c.retrieval = o
	})
}

// WithForceRebuild ignores any persisted index and rebuilds it in New.
func WithForceRebuild() Option {
	return optionFunc(func(c *clientConfig) {
		c.forceRebuild = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default).
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
