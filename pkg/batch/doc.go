// Package batch provides parallel dispatch for independent FRED requests.
//
// A typical workload fetches observations for many series at once. Each
// request is self-contained (its own fragment, its own cache key), so the
// package implements a worker pool that fans the requests out and collects
// the results in input order.
//
// Example usage:
//
//	d := batch.New(fredClient, batch.DefaultConfig())
//	results := d.Send(ctx, specs, client.LookupFredOnCacheMiss)
//	for _, r := range results {
//		if r.Err != nil {
//			log.Printf("%s: %v", r.Spec, r.Err)
//			continue
//		}
//		// r.Data holds the XML body
//	}
//
// The dispatcher:
//   - Spawns a bounded worker pool (default 4 workers)
//   - Applies a per-request timeout on top of the caller's context
//   - Keeps failures isolated: one bad series never stops the rest
//   - Returns results aligned with the input slice by index
//
// Requests are never retried and never deduplicated; two specs with the
// same fragment dispatch twice, and the write-once cache keeps the first
// stored body.
package batch
