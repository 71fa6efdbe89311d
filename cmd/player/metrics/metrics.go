// Package metrics provides Prometheus metrics instrumentation for the player.
//
// It exposes operational metrics about the playback loop, including the
// duration of prefetch and render passes, chunk admissions and evictions,
// store errors, and render-time cache misses. All metrics are exposed via
// the /metrics HTTP endpoint for Prometheus scraping.
//
// Metrics exposed:
//   - chunkplay_prefetch_seconds: Histogram of prefetch pass duration
//   - chunkplay_frame_seconds: Histogram of render frame duration
//   - chunkplay_chunk_admissions_total: Counter of admitted chunks by object and result
//   - chunkplay_chunk_evictions_total: Counter of evicted chunks by object
//   - chunkplay_store_errors_total: Counter of failed chunk fetches by object
//   - chunkplay_lookup_misses_total: Counter of render lookups on absent chunks by object
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the player.
type Metrics struct {
	PrefetchSeconds      prometheus.Histogram
	FrameSeconds         prometheus.Histogram
	ChunkAdmissionsTotal *prometheus.CounterVec
	ChunkEvictionsTotal  *prometheus.CounterVec
	StoreErrorsTotal     *prometheus.CounterVec
	LookupMissesTotal    *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PrefetchSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chunkplay_prefetch_seconds",
			Help:    "Time spent issuing prefetch requests for all objects",
			Buckets: prometheus.DefBuckets, // Default buckets: .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
		}),

		FrameSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "chunkplay_frame_seconds",
			Help:    "Time spent advancing and rendering one frame",
			Buckets: prometheus.DefBuckets,
		}),

		ChunkAdmissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkplay_chunk_admissions_total",
			Help: "Total number of chunks admitted into object caches",
		}, []string{"object", "result"}),

		ChunkEvictionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkplay_chunk_evictions_total",
			Help: "Total number of chunks evicted from object caches",
		}, []string{"object"}),

		StoreErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkplay_store_errors_total",
			Help: "Total number of failed chunk fetches",
		}, []string{"object"}),

		LookupMissesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "chunkplay_lookup_misses_total",
			Help: "Total number of render lookups that found no resident chunk",
		}, []string{"object"}),
	}
}

// RecordPrefetch records the duration of one prefetch pass.
func (m *Metrics) RecordPrefetch(seconds float64) {
	m.PrefetchSeconds.Observe(seconds)
}

// RecordFrame records the duration of one render frame.
func (m *Metrics) RecordFrame(seconds float64) {
	m.FrameSeconds.Observe(seconds)
}

// RecordAdmit counts an admitted chunk. found distinguishes chunks present in
// the store from synthesized empty ones.
func (m *Metrics) RecordAdmit(objectID string, found bool) {
	result := "found"
	if !found {
		result = "empty"
	}
	m.ChunkAdmissionsTotal.WithLabelValues(objectID, result).Inc()
}

// RecordEviction counts an evicted chunk.
func (m *Metrics) RecordEviction(objectID string) {
	m.ChunkEvictionsTotal.WithLabelValues(objectID).Inc()
}

// RecordStoreError counts a failed chunk fetch.
func (m *Metrics) RecordStoreError(objectID string) {
	m.StoreErrorsTotal.WithLabelValues(objectID).Inc()
}

// RecordLookupMiss counts a render lookup that hit an absent chunk.
func (m *Metrics) RecordLookupMiss(objectID string) {
	m.LookupMissesTotal.WithLabelValues(objectID).Inc()
}
