// Package metrics defines the Prometheus collectors of a matching run and
// exports them as a node-exporter textfile.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spigell/profile-matcher/internal/ai"
)

const namespace = "profile_matcher"

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsScored   prometheus.Counter
	SemanticMatches   prometheus.Counter
	EmbeddingRequests *prometheus.CounterVec
	EmbeddingTexts    prometheus.Counter
	CacheHitsTotal    prometheus.Counter
	CacheMissesTotal  prometheus.Counter
	ScoringDuration   prometheus.Histogram
	EmbeddingDuration prometheus.Histogram
}

// New creates the collectors and registers them in a dedicated registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		DocumentsScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_scored_total",
				Help:      "Total documents scored against a preference set.",
			},
		),
		SemanticMatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "semantic_matches_total",
				Help:      "Total semantic phrase matches reported.",
			},
		),
		EmbeddingRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_requests_total",
				Help:      "Total embedding requests by model and status (ok, error).",
			},
			[]string{"model", "status"},
		),
		EmbeddingTexts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_texts_total",
				Help:      "Total texts sent to the embedding service.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_cache_hits_total",
				Help:      "Total embedding cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_cache_misses_total",
				Help:      "Total embedding cache misses.",
			},
		),
		ScoringDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scoring_duration_seconds",
				Help:      "Time spent scoring one document.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
			},
		),
		EmbeddingDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "embedding_duration_seconds",
				Help:      "Embedding request latency in seconds.",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
	}

	m.Registry.MustRegister(
		m.DocumentsScored,
		m.SemanticMatches,
		m.EmbeddingRequests,
		m.EmbeddingTexts,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.ScoringDuration,
		m.EmbeddingDuration,
	)

	return m
}

// DocumentScored records one scored document and how long it took.
func (m *Metrics) DocumentScored(d time.Duration) {
	if m == nil {
		return
	}
	m.DocumentsScored.Inc()
	m.ScoringDuration.Observe(d.Seconds())
}

// SemanticMatchesFound adds n semantic matches.
func (m *Metrics) SemanticMatchesFound(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SemanticMatches.Add(float64(n))
}

// CacheHits implements cache.Recorder.
func (m *Metrics) CacheHits(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheHitsTotal.Add(float64(n))
}

// CacheMisses implements cache.Recorder.
func (m *Metrics) CacheMisses(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheMissesTotal.Add(float64(n))
}

// WriteTextfile writes the registry in the text exposition format. The file is
// replaced atomically so node-exporter never reads a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}

type instrumented struct {
	next ai.Embedder
	m    *Metrics
}

// InstrumentEmbedder counts requests, texts and latency of next. With nil
// metrics next is returned unchanged.
func (m *Metrics) InstrumentEmbedder(next ai.Embedder) ai.Embedder {
	if m == nil {
		return next
	}
	return &instrumented{next: next, m: m}
}

func (i *instrumented) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := i.next.Embed(ctx, texts)
	i.m.EmbeddingDuration.Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
	}
	i.m.EmbeddingRequests.WithLabelValues(i.next.Model(), status).Inc()
	i.m.EmbeddingTexts.Add(float64(len(texts)))

	return vectors, err
}

func (i *instrumented) Model() string {
	return i.next.Model()
}
