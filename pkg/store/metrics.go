package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend label values used by the cache metrics.
const (
	backendBolt  = "bolt"
	backendRedis = "redis"
)

var (
	// CacheHits tracks cache hits by backend.
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fred_cache_hits_total",
			Help: "Total number of FRED cache hits",
		},
		[]string{"backend"}, // "bolt", "redis"
	)

	// CacheMisses tracks cache misses by backend.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fred_cache_misses_total",
			Help: "Total number of FRED cache misses",
		},
		[]string{"backend"},
	)

	// CacheStoredBytes tracks bytes written to the cache by backend.
	CacheStoredBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fred_cache_stored_bytes_total",
			Help: "Total bytes written to the FRED cache",
		},
		[]string{"backend"},
	)

	// CacheErrors tracks cache operation errors.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fred_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "contains", "put"
	)
)
