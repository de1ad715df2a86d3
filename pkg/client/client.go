// Package client provides the FRED HTTP client: one GET per call, TLS 1.3
// only, transparent write-through caching, and typed error classification.
package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/econdata/fred-api-client/pkg/request"
	"github.com/econdata/fred-api-client/pkg/store"
	"github.com/econdata/fred-api-client/pkg/xmlfield"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the root of the FRED API. Request fragments resolve
// against it.
const DefaultBaseURL = "https://api.stlouisfed.org/fred"

// unknownProviderMessage stands in when an error body yields no message.
const unknownProviderMessage = "Unknown error"

// Prometheus metrics for FRED client operations.
var (
	fredRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_client_requests_total",
		Help: "Total FRED requests by HTTP status",
	}, []string{"status"})

	fredRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fred_client_request_duration_seconds",
		Help:    "FRED request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	fredErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_client_errors_total",
		Help: "Total FRED request errors by class",
	}, []string{"class"})

	fredCacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fred_client_cache_results_total",
		Help: "Cache lookup outcomes during dispatch",
	}, []string{"result"}) // "hit", "miss"
)

// Client is the FRED API client.
type Client struct {
	httpClient *http.Client
	store      store.Store
	baseURL    string
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Store holds previously fetched response bodies (required).
	Store store.Store

	// BaseURL overrides DefaultBaseURL, mainly for tests.
	BaseURL string

	// Timeout bounds one request round-trip including the body read.
	Timeout time.Duration
}

// DefaultConfig returns a default configuration around the given store.
func DefaultConfig(st store.Store) Config {
	return Config{
		Store:   st,
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}
}

// New creates a new FRED client. The transport negotiates TLS 1.3 or
// newer and presents no client certificate.
func New(cfg Config) (*Client, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "fred-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS13},
			},
			Timeout: cfg.Timeout,
		},
		store:   cfg.Store,
		baseURL: cfg.BaseURL,
		logger:  logger,
	}, nil
}

// Fetch performs one GET against the FRED API and writes a successful
// body through to the store. The returned bytes are the ones the store
// holds after the write, so every caller sees exactly what later
// cache-only lookups will see. Nothing is retried.
func (c *Client) Fetch(ctx context.Context, spec request.Spec) ([]byte, error) {
	uri, err := spec.URI(c.baseURL)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		fredRequestDuration.Observe(time.Since(start).Seconds())
	}()

	c.logger.Debug().
		Str("fragment", spec.Fragment()).
		Msg("Fetching from FRED")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		fredErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &FredError{Class: ErrorClassNetwork, Message: "create request", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fredErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Error().Err(err).Str("fragment", spec.Fragment()).Msg("FRED request failed")
		return nil, &FredError{Class: ErrorClassNetwork, Message: "perform request", Err: err}
	}
	defer resp.Body.Close()

	// The body is buffered in full before any cache write, so a request
	// that dies mid-read can never leave a partial entry behind.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fredErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		c.logger.Error().Err(err).Str("fragment", spec.Fragment()).Msg("Reading FRED response failed")
		return nil, &FredError{Class: ErrorClassNetwork, Message: "read response body", Err: err}
	}

	fredRequestsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		fredErrorsTotal.WithLabelValues(string(ErrorClassProvider)).Inc()
		message := providerMessage(body)
		c.logger.Warn().
			Str("fragment", spec.Fragment()).
			Int("status", resp.StatusCode).
			Str("message", message).
			Msg("FRED returned an error")
		return nil, &FredError{Class: ErrorClassProvider, StatusCode: resp.StatusCode, Message: message}
	}

	if err := c.store.PutIfAbsent(ctx, spec.CacheKey(), body); err != nil {
		fredErrorsTotal.WithLabelValues(string(ErrorClassStorage)).Inc()
		return nil, &FredError{Class: ErrorClassStorage, Message: "write response to cache", Err: err}
	}

	stored, err := c.store.Get(ctx, spec.CacheKey())
	if err != nil {
		fredErrorsTotal.WithLabelValues(string(ErrorClassStorage)).Inc()
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCacheInconsistent, spec.Fragment())
		}
		return nil, &FredError{Class: ErrorClassStorage, Message: "read back cached response", Err: err}
	}

	c.logger.Info().
		Str("fragment", spec.Fragment()).
		Int("status", resp.StatusCode).
		Int("bytes", len(stored)).
		Msg("FRED request complete")

	return stored, nil
}

// providerMessage pulls the message attribute out of a FRED error body.
// Bodies that yield no message, whatever the reason, report
// unknownProviderMessage.
func providerMessage(body []byte) string {
	row, err := xmlfield.First(body, "error", "message")
	if err != nil || len(row) == 0 {
		return unknownProviderMessage
	}
	return row[0]
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
