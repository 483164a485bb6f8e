// Package metrics exposes Prometheus instrumentation for the query
// pipeline and HTTP layer.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the pipeline metrics. All methods are nil-safe so
// callers can run without metrics wired.
type Collector struct {
	registry *prometheus.Registry

	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	ingestTotal   prometheus.Counter
	ingestChunks  prometheus.Counter
}

// NewCollector registers the pipeline metrics on a fresh registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusrag_queries_total",
			Help: "Queries handled, by route and outcome.",
		}, []string{"route", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "campusrag_query_duration_seconds",
			Help:    "End-to-end query latency, by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campusrag_answer_cache_hits_total",
			Help: "Answers served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campusrag_answer_cache_misses_total",
			Help: "Questions that missed the answer cache.",
		}),
		ingestTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campusrag_documents_ingested_total",
			Help: "Documents ingested into the index.",
		}),
		ingestChunks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campusrag_chunks_indexed_total",
			Help: "Chunks embedded and upserted.",
		}),
	}

	registry.MustRegister(
		c.queriesTotal,
		c.queryDuration,
		c.cacheHits,
		c.cacheMisses,
		c.ingestTotal,
		c.ingestChunks,
	)
	return c
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveQuery records one finished query.
func (c *Collector) ObserveQuery(route, status string, seconds float64) {
	if c == nil {
		return
	}
	c.queriesTotal.WithLabelValues(route, status).Inc()
	c.queryDuration.WithLabelValues(route).Observe(seconds)
}

// CacheHit counts an answer served from cache.
func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

// CacheMiss counts a cache miss.
func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

// ObserveIngest records a completed ingestion run.
func (c *Collector) ObserveIngest(chunks int) {
	if c == nil {
		return
	}
	c.ingestTotal.Inc()
	c.ingestChunks.Add(float64(chunks))
}
