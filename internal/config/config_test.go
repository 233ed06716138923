package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 1000, cfg.Cache.Size)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":8000"
log:
  level: debug
  development: true
database:
  driver: postgres
  dsn: postgres://localhost/hatokurandom?sslmode=disable
redis:
  addr: localhost:6379
supply:
  expansion: basic
  seed: 42
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":8000", cfg.Listen)
	assert.Equal(t, ":9090", cfg.MetricsAddr, "unset keys keep their default")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Development)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int64(42), cfg.Supply.Seed)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: ["), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "driver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: oracle\n"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "oracle")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"HATOKURANDOM_LISTEN":       ":7000",
		"HATOKURANDOM_REDIS_ADDR":   "redis:6379",
		"HATOKURANDOM_CACHE_SIZE":   "5",
		"HATOKURANDOM_CORS_ORIGINS": "https://a.example,https://b.example",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, ":7000", cfg.Listen)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Cache.Size)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)

	env["HATOKURANDOM_CACHE_SIZE"] = "lots"
	assert.Error(t, cfg.applyEnv(lookup))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Cache.Size = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database.DSN = ""
	assert.Error(t, cfg.Validate())
}
