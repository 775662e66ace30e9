// Package metrics provides Prometheus instrumentation for the extraction engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	ExtractionsTotal   *prometheus.CounterVec
	ExtractionDuration *prometheus.HistogramVec
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	OCRRunsTotal       *prometheus.CounterVec
	BatchItemsTotal    *prometheus.CounterVec
	DocumentBytes      prometheus.Histogram
}

// New creates and registers the engine metrics on reg. A nil reg falls back
// to the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	m := &Metrics{}

	m.ExtractionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_extractions_total",
			Help: "Total number of extraction requests",
		},
		[]string{"mime_type", "status"},
	)

	m.ExtractionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scribe_extraction_duration_seconds",
			Help:    "Duration of extraction requests in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"mime_type"},
	)

	m.CacheHitsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "scribe_cache_hits_total",
			Help: "Total number of extraction cache hits",
		},
	)

	m.CacheMissesTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "scribe_cache_misses_total",
			Help: "Total number of extraction cache misses",
		},
	)

	m.OCRRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_ocr_runs_total",
			Help: "Total number of OCR backend invocations",
		},
		[]string{"backend", "status"},
	)

	m.BatchItemsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scribe_batch_items_total",
			Help: "Total number of documents processed through batch extraction",
		},
		[]string{"status"},
	)

	m.DocumentBytes = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scribe_document_bytes",
			Help:    "Size distribution of extracted documents in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	return m
}

// Nop returns metrics registered on a throwaway registry, for callers that
// do not export metrics.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
