package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Question answering Prometheus metrics.
var (
	AskTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ask_total",
			Help:      "Questions answered, by outcome",
		},
		[]string{"outcome"}, // grounded, low_confidence, no_context, conversational, error
	)

	AskDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ask_duration_seconds",
			Help:      "End-to-end question latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"generator"},
	)

	RetrievedChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieved_chunks",
			Help:      "Chunks kept after threshold filtering and deduplication",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
	)

	RetrievalBestScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_best_score",
			Help:      "Best similarity score per retrieval",
			Buckets:   []float64{0, 0.1, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	IndexChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_chunks",
			Help:      "Chunks in the live index",
		},
	)

	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "index_builds_total",
			Help:      "Index initializations by source",
		},
		[]string{"source"}, // cache, build
	)
)

var registerPipeline sync.Once

// RegisterPipelineMetrics adds the question answering collectors to the default registry.
func RegisterPipelineMetrics() {
	registerPipeline.Do(func() {
		prometheus.MustRegister(AskTotal, AskDuration, RetrievedChunks, RetrievalBestScore, IndexChunks, IndexBuildsTotal)
	})
}
