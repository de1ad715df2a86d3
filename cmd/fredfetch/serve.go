package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/econdata/fred-api-client/pkg/client"
	"github.com/econdata/fred-api-client/pkg/logging"
	"github.com/econdata/fred-api-client/pkg/metrics"
	"github.com/econdata/fred-api-client/pkg/request"
	"github.com/econdata/fred-api-client/pkg/store"
)

// proxyTimeout bounds one proxied FRED request end to end.
const proxyTimeout = 30 * time.Second

// newServeCmd runs a local caching proxy: GETs under /fred/ are answered
// through the cache, so every consumer on the machine shares one copy of
// each response.
func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local caching proxy for the FRED API",
		Long: `Run an HTTP server that proxies FRED requests through the response cache.

Endpoints:
  /fred/<path>?<query>  proxied FRED request (API key added server-side)
  /health               liveness probe
  /ready                readiness probe (checks the cache backend)
  /metrics              Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			return runServe(cmd.Context(), e, opts.apiKey, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func runServe(ctx context.Context, e *env, apiKey, addr string) error {
	logger := logging.NewLogger("fredfetch")

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(e.store))
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/fred/", proxyHandler(e.client, apiKey, e.lookup))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info().
		Str("addr", addr).
		Str("lookup", e.lookup.String()).
		Msg("FRED proxy listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// readyHandler reports ready once the cache backend answers a lookup.
func readyHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := st.Contains(r.Context(), []byte("readiness-probe")); err != nil {
			http.Error(w, fmt.Sprintf("cache unavailable: %v", err), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

// proxyHandler turns /fred/<path>?<query> into a cached FRED request.
// The API key is appended server-side and never appears in proxy URLs.
func proxyHandler(c *client.Client, apiKey string, lookup client.Lookup) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		fragment := strings.TrimPrefix(r.URL.Path, "/fred/")
		if r.URL.RawQuery != "" {
			fragment += "?" + r.URL.RawQuery + "&"
		} else {
			fragment += "?"
		}

		spec, err := request.New(fragment, apiKey)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), proxyTimeout)
		defer cancel()

		data, err := c.Send(ctx, spec, lookup)
		if err != nil {
			http.Error(w, err.Error(), proxyStatus(err))
			return
		}

		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		_, _ = w.Write(data)
	}
}

// proxyStatus maps a Send failure onto the HTTP status the proxy
// reports. Provider errors pass the upstream status through.
func proxyStatus(err error) int {
	if errors.Is(err, client.ErrCacheMiss) {
		return http.StatusNotFound
	}

	var fe *client.FredError
	if errors.As(err, &fe) {
		switch fe.Class {
		case client.ErrorClassProvider:
			if fe.StatusCode != 0 {
				return fe.StatusCode
			}
		case client.ErrorClassStorage:
			return http.StatusInternalServerError
		}
	}

	return http.StatusBadGateway
}
