// fredfetch is a command-line front end for the FRED client. It fetches
// economic data series through the write-once response cache, extracts
// attribute columns from the XML, and can run as a local caching proxy.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/econdata/fred-api-client/internal/config"
	"github.com/econdata/fred-api-client/pkg/client"
	"github.com/econdata/fred-api-client/pkg/logging"
	"github.com/econdata/fred-api-client/pkg/request"
	"github.com/econdata/fred-api-client/pkg/store"
	"github.com/econdata/fred-api-client/pkg/xmlfield"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options holds the resolved configuration shared by all subcommands.
// Flags override environment variables, which override the config file.
type options struct {
	apiKey    string
	cacheDir  string
	redisAddr string
	lookup    string
	logLevel  string
	pretty    bool
}

// env is one connected command environment: a client wired to a cache
// backend plus the parsed lookup policy.
type env struct {
	client *client.Client
	store  store.Store
	lookup client.Lookup
	close  func() error
}

// connect parses the lookup policy, opens the configured cache backend
// and builds the client around it. Callers must invoke close.
func (o *options) connect(ctx context.Context) (*env, error) {
	lookup, err := client.ParseLookup(o.lookup)
	if err != nil {
		return nil, err
	}

	st, closeStore, err := o.openStore(ctx)
	if err != nil {
		return nil, err
	}

	c, err := client.New(client.DefaultConfig(st))
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &env{client: c, store: st, lookup: lookup, close: closeStore}, nil
}

// openStore selects the cache backend: Redis when an address is
// configured, the local Bolt file otherwise.
func (o *options) openStore(ctx context.Context) (store.Store, func() error, error) {
	if o.redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: o.redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", o.redisAddr, err)
		}
		return store.NewRedis(rdb, ""), rdb.Close, nil
	}

	b, err := store.OpenBolt(o.cacheDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open cache at %s: %w", o.cacheDir, err)
	}
	return b, b.Close, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "fredfetch",
		Short:   "Cached access to FRED economic data series",
		Long:    "fredfetch fetches XML data from the FRED API through a persistent\nwrite-once response cache, so repeated requests never hit the network twice.",
		Version: version,
		Example: `  # Fetch raw observations for real GNP per capita
  fredfetch get "series/observations?series_id=GNPCA&" --cache ./fred-cache

  # Extract date/value columns as TSV
  fredfetch extract "series/observations?series_id=GNPCA&" --cache ./fred-cache

  # Serve a local caching proxy backed by Redis
  fredfetch serve --redis localhost:6379 --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Flags win over environment and config file.
			if opts.apiKey == "" {
				opts.apiKey = cfg.APIKey
			}
			if opts.cacheDir == "" {
				opts.cacheDir = cfg.CacheDir
			}
			if opts.redisAddr == "" {
				opts.redisAddr = cfg.RedisAddr
			}
			if opts.logLevel == "" {
				opts.logLevel = cfg.LogLevel
			}
			if !cmd.Flags().Changed("pretty") {
				opts.pretty = cfg.LogPretty
			}

			logging.Setup(logging.Config{
				Level:  logging.LogLevel(opts.logLevel),
				Pretty: opts.pretty,
				Output: os.Stderr,
			})

			merged := config.Config{
				APIKey:    opts.apiKey,
				CacheDir:  opts.cacheDir,
				RedisAddr: opts.redisAddr,
			}
			return merged.Validate()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiKey, "api-key", "", "FRED API key (or FRED_API_KEY)")
	flags.StringVar(&opts.cacheDir, "cache", "", "directory for the local response cache (or FRED_CACHE)")
	flags.StringVar(&opts.redisAddr, "redis", "", "redis address for a shared cache (or FRED_REDIS_ADDR)")
	flags.StringVar(&opts.lookup, "lookup", "fred_on_cache_miss", "lookup policy: fred_on_cache_miss, fred_only or cache_only")
	flags.StringVar(&opts.logLevel, "log-level", "", "minimum log level: debug, info, warn or error")
	flags.BoolVar(&opts.pretty, "pretty", false, "human-readable log output instead of JSON")

	cmd.AddCommand(newGetCmd(opts), newExtractCmd(opts), newServeCmd(opts))

	return cmd
}

// newGetCmd fetches one fragment and writes the raw response to stdout.
func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <fragment>",
		Short: "Fetch one FRED fragment and print the raw XML response",
		Long: `Fetch one FRED fragment through the cache and print the raw XML body.

The fragment is the path-plus-query part after the API root and must end
in "?" or "&" so the API key can be appended, for example:

  series/observations?series_id=GNPCA&`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			return runGet(cmd.Context(), e.client, opts.apiKey, args[0], e.lookup, cmd.OutOrStdout())
		},
	}
}

func runGet(ctx context.Context, c *client.Client, apiKey, fragment string, lookup client.Lookup, out io.Writer) error {
	spec, err := request.New(fragment, apiKey)
	if err != nil {
		return err
	}

	data, err := c.Send(ctx, spec, lookup)
	if err != nil {
		return err
	}

	_, err = out.Write(data)
	return err
}

// newExtractCmd fetches one fragment and prints selected attributes of
// each matching element as tab-separated rows.
func newExtractCmd(opts *options) *cobra.Command {
	var (
		tag    string
		fields []string
	)

	cmd := &cobra.Command{
		Use:   "extract <fragment>",
		Short: "Fetch a fragment and print selected XML attributes as TSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			return runExtract(cmd.Context(), e.client, opts.apiKey, args[0], e.lookup, tag, fields, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "observation", "element name to scan for")
	cmd.Flags().StringSliceVar(&fields, "fields", []string{"date", "value"}, "attribute names to extract, in output order")

	return cmd
}

func runExtract(ctx context.Context, c *client.Client, apiKey, fragment string, lookup client.Lookup, tag string, fields []string, out io.Writer) error {
	spec, err := request.New(fragment, apiKey)
	if err != nil {
		return err
	}

	data, err := c.Send(ctx, spec, lookup)
	if err != nil {
		return err
	}

	scanner := xmlfield.NewScanner(data, tag, fields)
	for scanner.Scan() {
		if _, err := fmt.Fprintln(out, strings.Join(scanner.Row(), "\t")); err != nil {
			return err
		}
	}
	return scanner.Err()
}
