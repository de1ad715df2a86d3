// Package logging configures zerolog for the FRED client packages and
// binaries.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel names a minimum severity.
type LogLevel string

// Levels accepted by Setup, from most to least verbose.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config controls the global logger.
type Config struct {
	// Level is the minimum severity that gets written.
	Level LogLevel

	// Pretty switches from JSON lines to human-readable console output.
	Pretty bool

	// Output receives the log stream; nil means os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the production configuration: info-level JSON on
// stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Setup applies cfg to the global zerolog logger and returns it. Binaries
// call it once at startup; library packages pick the configuration up
// through NewLogger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// parseLevel maps a LogLevel onto zerolog's scale. Anything unrecognized
// falls back to info.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger derives a component-tagged logger from the global one.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache lookups (hit/miss, fragment)
//   - Dispatch decisions (lookup policy routing)
//   - Write-through persistence details
//
// Info: Normal operation events
//   - Completed FRED requests (status, byte count)
//   - Batch dispatch summaries
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Non-200 provider responses
//   - Responses served despite degraded conditions
//
// Error: Error conditions requiring attention
//   - Transport failures
//   - Storage failures (cache reads/writes)
//   - Configuration errors
//
// Context Fields:
//   - fragment: request path and query (never includes the API key)
//   - status: HTTP status code
//   - bytes: response body size
//   - backend: cache backend in use (bolt, redis)
//   - lookup: dispatch policy (fred_on_cache_miss, fred_only, cache_only)
//   - class: error classification (network, provider, storage)
