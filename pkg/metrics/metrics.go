// Package metrics provides centralized Prometheus registry access for the
// FRED client. All metrics are defined in their respective packages
// (client, store) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available
// metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the FRED client.
// All metrics are automatically registered via promauto in their
// respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns an http.Handler serving the registry in the Prometheus
// exposition format, for binaries that expose a /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - fred_client_requests_total{status} (Counter): Total FRED requests by HTTP status
//   - fred_client_request_duration_seconds (Histogram): Request duration in seconds
//   - fred_client_errors_total{class} (Counter): Errors by class (network, provider, storage)
//   - fred_client_cache_results_total{result} (Counter): Cache lookup outcomes during dispatch (hit, miss)
//
// Cache Metrics (pkg/store):
//   - fred_cache_hits_total{backend} (Counter): Cache hits by backend (bolt, redis)
//   - fred_cache_misses_total{backend} (Counter): Cache misses by backend
//   - fred_cache_stored_bytes_total{backend} (Counter): Bytes written through to the cache
//   - fred_cache_errors_total{operation} (Counter): Cache operation errors (get, contains, put)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(fred_cache_hits_total[5m])) /
//   (sum(rate(fred_cache_hits_total[5m])) + sum(rate(fred_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(fred_client_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(fred_client_request_duration_seconds_bucket[5m]))
//
//   # Bytes Cached Per Backend
//   sum by (backend) (fred_cache_stored_bytes_total)
