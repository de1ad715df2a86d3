// Package store provides the persistent byte store backing the FRED
// response cache.
//
// The store is deliberately narrow: get, contains, put-if-absent. FRED
// observations are historical data, so cached responses never expire and
// are never overwritten. A key is the request fragment's raw bytes; a
// value is the response body exactly as the API returned it.
//
// Two backends implement the Store interface:
//
//   - Bolt: a single-file bbolt database, the default. Zero external
//     services; the cache lives in a directory (FRED_CACHE by
//     convention).
//   - Redis: for deployments that already run Redis and want several
//     processes to share one cache. Write-once maps onto SETNX.
//
// # Basic Usage
//
//	st, err := store.OpenBolt(os.Getenv("FRED_CACHE"))
//	if err != nil {
//		return err
//	}
//	defer st.Close()
//
//	err = st.PutIfAbsent(ctx, key, body)   // no-op if key exists
//	data, err := st.Get(ctx, key)
//	if errors.Is(err, store.ErrNotFound) {
//		// absent: fetch from the API
//	}
//
// # Sharing one Redis
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	st := store.NewRedis(rdb, "fred:")
//
// # Error contract
//
// Absence is ErrNotFound and nothing else. Every other error means the
// backend itself failed, and callers treat it as fatal for the current
// operation instead of falling through to the network.
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - fred_cache_hits_total{backend} - cache hits
//   - fred_cache_misses_total{backend} - cache misses
//   - fred_cache_stored_bytes_total{backend} - bytes written
//   - fred_cache_errors_total{operation} - backend failures
package store
