// Package batch dispatches many independent FRED requests concurrently
// through a bounded worker pool.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/econdata/fred-api-client/pkg/client"
	"github.com/econdata/fred-api-client/pkg/logging"
	"github.com/econdata/fred-api-client/pkg/request"
)

// Config holds batch dispatcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests.
	MaxConcurrency int
	// Timeout bounds each individual request. Zero means no per-request
	// bound beyond the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns a conservative default configuration. FRED has
// no published rate limit ceiling, so the concurrency stays modest.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        30 * time.Second,
	}
}

// Sender routes a single request; *client.Client implements it.
type Sender interface {
	Send(ctx context.Context, spec request.Spec, lookup client.Lookup) ([]byte, error)
}

// Result is the outcome of one dispatched request. Data and Err mirror
// what Send returned for the corresponding Spec.
type Result struct {
	Spec request.Spec
	Data []byte
	Err  error
}

// Dispatcher fans a slice of requests out over a worker pool.
type Dispatcher struct {
	sender Sender
	config Config
	logger zerolog.Logger
}

// New creates a Dispatcher. Non-positive config values fall back to the
// defaults.
func New(sender Sender, config Config) *Dispatcher {
	def := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = def.MaxConcurrency
	}
	if config.Timeout < 0 {
		config.Timeout = def.Timeout
	}

	return &Dispatcher{
		sender: sender,
		config: config,
		logger: logging.NewLogger("fred-batch"),
	}
}

// Send dispatches every spec under one lookup policy. Requests are
// independent: there is no retry, no deduplication, and one failure does
// not stop the others. The returned slice aligns with specs by index.
func (d *Dispatcher) Send(ctx context.Context, specs []request.Spec, lookup client.Lookup) []Result {
	start := time.Now()

	results := make([]Result, len(specs))
	for i := range specs {
		results[i].Spec = specs[i]
	}
	if len(specs) == 0 {
		return results
	}

	queue := make(chan int, len(specs))
	for i := range specs {
		queue <- i
	}
	close(queue)

	workers := d.config.MaxConcurrency
	if workers > len(specs) {
		workers = len(specs)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				// Once the caller's context is gone, mark the remaining
				// requests instead of dispatching them.
				select {
				case <-ctx.Done():
					results[i].Err = ctx.Err()
					continue
				default:
				}

				itemCtx := ctx
				var cancel context.CancelFunc
				if d.config.Timeout > 0 {
					itemCtx, cancel = context.WithTimeout(ctx, d.config.Timeout)
				}

				data, err := d.sender.Send(itemCtx, specs[i], lookup)
				if cancel != nil {
					cancel()
				}

				results[i].Data = data
				results[i].Err = err

				if err != nil {
					d.logger.Warn().
						Err(err).
						Str("fragment", specs[i].Fragment()).
						Msg("Request failed")
				}
			}
		}()
	}
	wg.Wait()

	failed := 0
	for i := range results {
		if results[i].Err != nil {
			failed++
		}
	}

	d.logger.Info().
		Int("requests", len(specs)).
		Int("failed", failed).
		Str("lookup", lookup.String()).
		Dur("duration", time.Since(start)).
		Msg("Batch dispatch complete")

	return results
}
