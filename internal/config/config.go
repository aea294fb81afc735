// Package config loads and validates configuration at startup.
// Fail-fast: if a required setting is missing or malformed, Load returns an
// error and the process exits.
//
// Sources, lowest precedence first: built-in defaults, the YAML file named
// by SEARCH_CONFIG_FILE, then environment variables (a .env file in the
// working directory is loaded into the environment first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rodruizronald/tw-search/internal/jobs"
)

const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
)

// Config holds all runtime configuration for the search service.
type Config struct {
	Port     string `yaml:"port"`
	GRPCPort string `yaml:"grpc_port"`

	// Backend selects the search engine: postgres, supabase or memory.
	Backend      string `yaml:"backend"`
	DatabaseURL  string `yaml:"database_url"`
	PoolerMode   bool   `yaml:"pooler_mode"`
	MaxConns     int32  `yaml:"max_conns"`
	SupabaseURL  string `yaml:"supabase_url"`
	SupabaseKey  string `yaml:"supabase_key"`
	FixturesPath string `yaml:"fixtures_path"`

	// Optional collaborators; empty disables them.
	RedisURL     string `yaml:"redis_url"`
	NATSURL      string `yaml:"nats_url"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	RedisPoolSize    int           `yaml:"redis_pool_size"`
	RedisDialTimeout time.Duration `yaml:"redis_dial_timeout"`
	RedisTimeout     time.Duration `yaml:"redis_timeout"`

	CacheTTL         time.Duration `yaml:"cache_ttl"`
	FacetTTL         time.Duration `yaml:"facet_ttl"`
	QueryTimeout     time.Duration `yaml:"query_timeout"`
	DefaultLanguage  string        `yaml:"default_language"`
	DefaultPageSize  int           `yaml:"default_page_size"`
	MaxPageSize      int           `yaml:"max_page_size"`
	RateLimitRPS     float64       `yaml:"rate_limit_rps"` // per IP; 0 disables the limiter
	RateLimitBurst   int           `yaml:"rate_limit_burst"`
	FacetRefreshSpec string        `yaml:"facet_refresh_spec"`
	LogLevel         string        `yaml:"log_level"`
}

func defaults() *Config {
	return &Config{
		Port:             "8083",
		GRPCPort:         "9093",
		Backend:          BackendPostgres,
		MaxConns:         10,
		CacheTTL:         2 * time.Minute,
		FacetTTL:         30 * time.Minute,
		QueryTimeout:     5 * time.Second,
		RedisDialTimeout: 5 * time.Second,
		RedisTimeout:     time.Second,
		DefaultLanguage:  string(jobs.DefaultLanguage),
		DefaultPageSize:  20,
		MaxPageSize:      100,
		RateLimitRPS:     20,
		RateLimitBurst:   40,
		FacetRefreshSpec: "@every 10m",
		LogLevel:         "info",
	}
}

// Load reads the configuration and returns a validated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()

	if path := os.Getenv("SEARCH_CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("SEARCH_PORT", &cfg.Port)
	str("SEARCH_GRPC_PORT", &cfg.GRPCPort)
	str("SEARCH_BACKEND", &cfg.Backend)
	str("DATABASE_URL", &cfg.DatabaseURL)
	str("SUPABASE_URL", &cfg.SupabaseURL)
	str("SUPABASE_KEY", &cfg.SupabaseKey)
	str("SEARCH_FIXTURES", &cfg.FixturesPath)
	str("REDIS_URL", &cfg.RedisURL)
	str("NATS_URL", &cfg.NATSURL)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.OTLPEndpoint)
	str("SEARCH_DEFAULT_LANGUAGE", &cfg.DefaultLanguage)
	str("FACET_REFRESH_SCHEDULE", &cfg.FacetRefreshSpec)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v := os.Getenv("DATABASE_POOLER_MODE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DATABASE_POOLER_MODE: %w", err)
		}
		cfg.PoolerMode = b
	}
	if v := os.Getenv("DATABASE_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("DATABASE_MAX_CONNS: %w", err)
		}
		cfg.MaxConns = int32(n)
	}

	durations := map[string]*time.Duration{
		"SEARCH_CACHE_TTL":     &cfg.CacheTTL,
		"SEARCH_FACET_TTL":     &cfg.FacetTTL,
		"SEARCH_QUERY_TIMEOUT": &cfg.QueryTimeout,
		"REDIS_DIAL_TIMEOUT":   &cfg.RedisDialTimeout,
		"REDIS_TIMEOUT":        &cfg.RedisTimeout,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"SEARCH_DEFAULT_PAGE_SIZE": &cfg.DefaultPageSize,
		"SEARCH_MAX_PAGE_SIZE":     &cfg.MaxPageSize,
		"SEARCH_RATE_LIMIT_BURST":  &cfg.RateLimitBurst,
		"REDIS_POOL_SIZE":          &cfg.RedisPoolSize,
	}
	for key, dst := range ints {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v := os.Getenv("SEARCH_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SEARCH_RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimitRPS = f
	}
	return nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for the supabase backend")
		}
	case BackendMemory:
		if c.FixturesPath == "" {
			return fmt.Errorf("SEARCH_FIXTURES is required for the memory backend")
		}
	default:
		return fmt.Errorf("unknown SEARCH_BACKEND %q", c.Backend)
	}

	if _, err := jobs.ParseLanguage(c.DefaultLanguage); err != nil {
		return fmt.Errorf("SEARCH_DEFAULT_LANGUAGE: %w", err)
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("SEARCH_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("SEARCH_DEFAULT_PAGE_SIZE must be between 1 and %d", c.MaxPageSize)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("SEARCH_QUERY_TIMEOUT must be positive")
	}
	if math.IsNaN(c.RateLimitRPS) || math.IsInf(c.RateLimitRPS, 0) || c.RateLimitRPS < 0 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_RPS must be a non-negative number, got %v", c.RateLimitRPS)
	}
	if c.RateLimitEnabled() && c.RateLimitBurst < 1 {
		return fmt.Errorf("SEARCH_RATE_LIMIT_BURST must be at least 1 when rate limiting is on")
	}
	if c.RedisPoolSize < 0 || c.RedisDialTimeout < 0 || c.RedisTimeout < 0 {
		return fmt.Errorf("redis settings must not be negative")
	}
	return nil
}

// RateLimitEnabled reports whether HTTP requests are rate-limited per IP.
func (c *Config) RateLimitEnabled() bool { return c.RateLimitRPS > 0 }
