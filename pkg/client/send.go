package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/econdata/fred-api-client/pkg/request"
	"github.com/econdata/fred-api-client/pkg/store"
)

// Lookup selects how Send routes a request between the cache and the
// provider.
type Lookup int

const (
	// LookupFredOnCacheMiss serves from the cache and falls back to the
	// provider only when the key is absent. This is the default policy.
	LookupFredOnCacheMiss Lookup = iota

	// LookupFredOnly always asks the provider. Successful responses
	// still write through to the cache.
	LookupFredOnly

	// LookupCacheOnly never touches the network; an absent key is
	// ErrCacheMiss.
	LookupCacheOnly
)

// ParseLookup converts a configuration string to a Lookup. The accepted
// strings are "fred_on_cache_miss", "fred_only" and "cache_only".
func ParseLookup(s string) (Lookup, error) {
	switch s {
	case "fred_on_cache_miss":
		return LookupFredOnCacheMiss, nil
	case "fred_only":
		return LookupFredOnly, nil
	case "cache_only":
		return LookupCacheOnly, nil
	default:
		return 0, fmt.Errorf("unknown lookup policy %q", s)
	}
}

// String implements fmt.Stringer.
func (l Lookup) String() string {
	switch l {
	case LookupFredOnCacheMiss:
		return "fred_on_cache_miss"
	case LookupFredOnly:
		return "fred_only"
	case LookupCacheOnly:
		return "cache_only"
	default:
		return "unknown"
	}
}

// Send routes one request according to lookup. It performs at most one
// fetch attempt and never retries; storage failures fail the call
// instead of falling through to the network.
func (c *Client) Send(ctx context.Context, spec request.Spec, lookup Lookup) ([]byte, error) {
	switch lookup {
	case LookupCacheOnly:
		return c.fromCache(ctx, spec)

	case LookupFredOnly:
		return c.Fetch(ctx, spec)

	case LookupFredOnCacheMiss:
		data, err := c.fromCache(ctx, spec)
		if errors.Is(err, ErrCacheMiss) {
			return c.Fetch(ctx, spec)
		}
		return data, err

	default:
		return nil, fmt.Errorf("unknown lookup policy %d", int(lookup))
	}
}

// fromCache reads the cached response for spec. Absence is ErrCacheMiss;
// anything else the store reports comes back as a storage failure.
func (c *Client) fromCache(ctx context.Context, spec request.Spec) ([]byte, error) {
	data, err := c.store.Get(ctx, spec.CacheKey())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fredCacheResults.WithLabelValues("miss").Inc()
			c.logger.Debug().Str("fragment", spec.Fragment()).Msg("Cache miss")
			return nil, fmt.Errorf("%w: %s", ErrCacheMiss, spec.Fragment())
		}
		fredErrorsTotal.WithLabelValues(string(ErrorClassStorage)).Inc()
		c.logger.Error().Err(err).Str("fragment", spec.Fragment()).Msg("Cache read failed")
		return nil, &FredError{Class: ErrorClassStorage, Message: "cache read", Err: err}
	}

	fredCacheResults.WithLabelValues("hit").Inc()
	c.logger.Debug().
		Str("fragment", spec.Fragment()).
		Int("bytes", len(data)).
		Msg("Cache hit")
	return data, nil
}
