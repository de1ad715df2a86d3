// Package config loads runtime configuration for FRED client binaries
// from environment variables and an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the fredfetch application.
type Config struct {
	// APIKey authenticates requests against the FRED API.
	APIKey string `mapstructure:"fred_api_key"`

	// CacheDir is the directory holding the persistent response cache
	// (Bolt backend).
	CacheDir string `mapstructure:"fred_cache"`

	// RedisAddr selects the Redis cache backend when non-empty,
	// e.g. "localhost:6379".
	RedisAddr string `mapstructure:"fred_redis_addr"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `mapstructure:"fred_log_level"`

	// LogPretty enables human-readable console output instead of JSON.
	LogPretty bool `mapstructure:"fred_log_pretty"`
}

// Load reads configuration from environment variables and an optional
// config file. Environment variables take precedence over config file
// values.
//
// Expected environment variables:
//   - FRED_API_KEY
//   - FRED_CACHE (directory for the Bolt cache)
//   - FRED_REDIS_ADDR (optional, switches the cache to Redis)
//   - FRED_LOG_LEVEL (optional, defaults to "info")
//   - FRED_LOG_PRETTY (optional, defaults to false)
func Load() (*Config, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.SetDefault("fred_log_level", "info")
	v.SetDefault("fred_log_pretty", false)

	// Optionally read from a config file if one exists.
	v.SetConfigName("fredfetch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/fredfetch")
	_ = v.ReadInConfig()

	v.BindEnv("fred_api_key", "FRED_API_KEY")
	v.BindEnv("fred_cache", "FRED_CACHE")
	v.BindEnv("fred_redis_addr", "FRED_REDIS_ADDR")
	v.BindEnv("fred_log_level", "FRED_LOG_LEVEL")
	v.BindEnv("fred_log_pretty", "FRED_LOG_PRETTY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is complete enough to build a
// client. It runs after command-line flags have been merged in, so flag
// values count toward the requirements.
func (c *Config) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "FRED_API_KEY")
	}
	if c.CacheDir == "" && c.RedisAddr == "" {
		missing = append(missing, "FRED_CACHE or FRED_REDIS_ADDR")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}
