package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rodruizronald/tw-search/internal/config"
)

var envKeys = []string{
	"SEARCH_CONFIG_FILE", "SEARCH_PORT", "SEARCH_GRPC_PORT", "SEARCH_BACKEND",
	"DATABASE_URL", "DATABASE_POOLER_MODE", "DATABASE_MAX_CONNS",
	"SUPABASE_URL", "SUPABASE_KEY", "SEARCH_FIXTURES", "REDIS_URL", "NATS_URL",
	"OTEL_EXPORTER_OTLP_ENDPOINT", "SEARCH_DEFAULT_LANGUAGE", "FACET_REFRESH_SCHEDULE",
	"LOG_LEVEL", "SEARCH_CACHE_TTL", "SEARCH_FACET_TTL", "SEARCH_QUERY_TIMEOUT",
	"SEARCH_DEFAULT_PAGE_SIZE", "SEARCH_MAX_PAGE_SIZE", "SEARCH_RATE_LIMIT_BURST",
	"SEARCH_RATE_LIMIT_RPS", "REDIS_POOL_SIZE", "REDIS_DIAL_TIMEOUT", "REDIS_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, "9093", cfg.GRPCPort)
	assert.Equal(t, config.BackendPostgres, cfg.Backend)
	assert.Equal(t, "english", cfg.DefaultLanguage)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_RequiresBackendSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"postgres without url": {"SEARCH_BACKEND": "postgres"},
		"supabase without key": {"SEARCH_BACKEND": "supabase", "SUPABASE_URL": "https://x.supabase.co"},
		"memory without file":  {"SEARCH_BACKEND": "memory"},
		"unknown backend":      {"SEARCH_BACKEND": "elastic"},
		"bad language":         {"DATABASE_URL": "postgres://x", "SEARCH_DEFAULT_LANGUAGE": "french"},
		"bad duration":         {"DATABASE_URL": "postgres://x", "SEARCH_QUERY_TIMEOUT": "soon"},
		"default over max":     {"DATABASE_URL": "postgres://x", "SEARCH_DEFAULT_PAGE_SIZE": "50", "SEARCH_MAX_PAGE_SIZE": "10"},
		"bad pooler flag":      {"DATABASE_URL": "postgres://x", "DATABASE_POOLER_MODE": "maybe"},
		"negative rate":        {"DATABASE_URL": "postgres://x", "SEARCH_RATE_LIMIT_RPS": "-1"},
		"rate is NaN":          {"DATABASE_URL": "postgres://x", "SEARCH_RATE_LIMIT_RPS": "NaN"},
		"rate without burst":   {"DATABASE_URL": "postgres://x", "SEARCH_RATE_LIMIT_RPS": "5", "SEARCH_RATE_LIMIT_BURST": "0"},
		"negative redis pool":  {"DATABASE_URL": "postgres://x", "REDIS_POOL_SIZE": "-1"},
		"bad redis timeout":    {"DATABASE_URL": "postgres://x", "REDIS_TIMEOUT": "fast"},
		"missing config file":  {"DATABASE_URL": "postgres://x", "SEARCH_CONFIG_FILE": "/nonexistent/search.yaml"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_YAMLOverlayAndEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "search.yaml")
	doc := `
backend: memory
fixtures_path: configs/fixtures.yaml
port: "9000"
cache_ttl: 45s
max_page_size: 50
rate_limit_rps: 5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("SEARCH_CONFIG_FILE", path)
	t.Setenv("SEARCH_PORT", "9100")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Backend)
	assert.Equal(t, "configs/fixtures.yaml", cfg.FixturesPath)
	assert.Equal(t, "9100", cfg.Port, "env wins over yaml")
	assert.Equal(t, 45*time.Second, cfg.CacheTTL)
	assert.Equal(t, 50, cfg.MaxPageSize)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
}

func TestLoad_Supabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEARCH_BACKEND", "supabase")
	t.Setenv("SUPABASE_URL", "https://x.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon")
	t.Setenv("DATABASE_POOLER_MODE", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.BackendSupabase, cfg.Backend)
	assert.True(t, cfg.PoolerMode)
}

func TestLoad_ZeroRateDisablesLimiter(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("SEARCH_RATE_LIMIT_RPS", "0")
	t.Setenv("SEARCH_RATE_LIMIT_BURST", "0")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.False(t, cfg.RateLimitEnabled())

	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	cfg, err = config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.RateLimitEnabled(), "on by default")
}

func TestLoad_RedisTuning(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("REDIS_POOL_SIZE", "50")
	t.Setenv("REDIS_TIMEOUT", "300ms")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.RedisPoolSize)
	assert.Equal(t, 300*time.Millisecond, cfg.RedisTimeout)
	assert.Equal(t, 5*time.Second, cfg.RedisDialTimeout)
}
