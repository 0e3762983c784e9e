// Package config loads postsearch settings from an optional YAML file and
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Environment overrides.
const (
	EnvHTTPAddr    = "POSTSEARCH_HTTP_ADDR"
	EnvStoreDriver = "POSTSEARCH_STORE_DRIVER"
	EnvDatabaseURL = "DATABASE_URL"
	EnvLogLevel    = "LOG_LEVEL"
	EnvSearchLimit = "POSTSEARCH_SEARCH_LIMIT"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the complete service configuration. Every section maps to a
// top-level YAML key.
type Config struct {
	HTTP   HTTPConfig   `yaml:"http"`
	Store  StoreConfig  `yaml:"store"`
	Search SearchConfig `yaml:"search"`
	Cache  CacheConfig  `yaml:"cache"`
	Log    LogConfig    `yaml:"log"`
	MCP    MCPConfig    `yaml:"mcp"`
}

// HTTPConfig configures the HTTP listener.
type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects and configures the post store.
type StoreConfig struct {
	// Driver is DriverMemory or DriverPostgres.
	Driver string `yaml:"driver"`
	// PostgresURL is required by the postgres driver.
	PostgresURL string `yaml:"postgres_url"`
	MaxConns    int32  `yaml:"max_conns"`
	// SeedSamples loads the sample posts into an empty memory store.
	SeedSamples bool `yaml:"seed_samples"`
}

// SearchConfig tunes ranking. Both values must be positive.
type SearchConfig struct {
	// Limit caps every result set.
	Limit int `yaml:"limit"`
	// TextScoreWeight multiplies the text index score on the indexed path.
	TextScoreWeight float64 `yaml:"text_score_weight"`
}

// CacheConfig sets the Cache-Control max-age of search and listing
// responses.
type CacheConfig struct {
	SearchMaxAge time.Duration `yaml:"search_max_age"`
	ListMaxAge   time.Duration `yaml:"list_max_age"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level"`
	// Format is "json" (default) or "text".
	Format string `yaml:"format"`
	// OTel also sends records to the global OpenTelemetry logger provider.
	OTel bool `yaml:"otel"`
}

// MCPConfig controls the MCP endpoint mounted on the HTTP server.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Store: StoreConfig{
			Driver:      DriverMemory,
			MaxConns:    10,
			SeedSamples: true,
		},
		Search: SearchConfig{
			Limit:           100,
			TextScoreWeight: 20,
		},
		Cache: CacheConfig{
			SearchMaxAge: 60 * time.Second,
			ListMaxAge:   300 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		MCP: MCPConfig{
			Enabled: true,
			Path:    "/mcp",
		},
	}
}

// Load reads path over the defaults when path is non-empty, applies the
// environment, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		c.HTTP.Addr = v
	}
	if v, ok := lookup(EnvStoreDriver); ok && v != "" {
		c.Store.Driver = strings.ToLower(v)
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.Store.PostgresURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvSearchLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvSearchLimit, v, err)
		}
		c.Search.Limit = n
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("%w: store.postgres_url (or %s) is required for the postgres driver", ErrInvalid, EnvDatabaseURL)
		}
	default:
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("%w: search.limit must be positive, got %d", ErrInvalid, c.Search.Limit)
	}
	if c.Search.TextScoreWeight <= 0 {
		return fmt.Errorf("%w: search.text_score_weight must be positive, got %v", ErrInvalid, c.Search.TextScoreWeight)
	}
	if c.Cache.SearchMaxAge <= 0 || c.Cache.ListMaxAge <= 0 {
		return fmt.Errorf("%w: cache ages must be positive", ErrInvalid)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("%w: http.addr is required", ErrInvalid)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		return fmt.Errorf("%w: mcp.path must start with /", ErrInvalid)
	}
	return nil
}
