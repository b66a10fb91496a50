// Package metrics exposes prometheus collectors for the audit service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP requests by route, method, and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_http_requests_total",
		Help: "Total HTTP requests processed, by route, method, and status code.",
	}, []string{"route", "method", "status"})

	// RequestDuration observes HTTP request latency by route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "seo_auditor_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// AnalysesTotal counts analyses by outcome: ok, cached, or error.
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seo_auditor_analyses_total",
		Help: "Total page analyses, by outcome.",
	}, []string{"outcome"})

	// CacheEntries tracks the current report cache size.
	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seo_auditor_cache_entries",
		Help: "Current number of entries in the report cache.",
	})

	// CacheHits and CacheMisses mirror the report cache counters.
	CacheHits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seo_auditor_cache_hits_total",
		Help: "Cumulative report cache hits.",
	})
	CacheMisses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seo_auditor_cache_misses_total",
		Help: "Cumulative report cache misses.",
	})
)
