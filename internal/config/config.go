// Package config loads the server configuration: built-in defaults, then an
// optional YAML file, then HATOKURANDOM_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const envPrefix = "HATOKURANDOM_"

type Config struct {
	Listen      string   `yaml:"listen"`
	MetricsAddr string   `yaml:"metrics_addr"`
	Title       string   `yaml:"title"`
	CORSOrigins []string `yaml:"cors_origins"`

	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Supply   SupplyConfig   `yaml:"supply"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite"
	DSN    string `yaml:"dsn"`
}

// RedisConfig leaves Addr empty to run without Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	Size int `yaml:"size"`
}

type SupplyConfig struct {
	Expansion string `yaml:"expansion"`
	Seed      int64  `yaml:"seed"` // 0 seeds from the clock
}

func Default() Config {
	return Config{
		Listen:      ":8080",
		MetricsAddr: ":9090",
		Title:       "hatokurandom",
		Log:         LogConfig{Level: "info"},
		Database:    DatabaseConfig{Driver: "sqlite", DSN: "hatokurandom.db"},
		Cache:       CacheConfig{Size: 1000},
	}
}

// Load reads path over the defaults. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("unable to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LISTEN":          &c.Listen,
		"METRICS_ADDR":    &c.MetricsAddr,
		"LOG_LEVEL":       &c.Log.Level,
		"DATABASE_DRIVER": &c.Database.Driver,
		"DATABASE_DSN":    &c.Database.DSN,
		"REDIS_ADDR":      &c.Redis.Addr,
		"REDIS_PASSWORD":  &c.Redis.Password,
	}
	for name, dst := range str {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	if v, ok := lookup(envPrefix + "CACHE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_SIZE: %w", envPrefix, err)
		}
		c.Cache.Size = n
	}
	if v, ok := lookup(envPrefix + "CORS_ORIGINS"); ok {
		c.CORSOrigins = strings.Split(v, ",")
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is empty")
	}
	if c.Cache.Size <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.Cache.Size)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is empty")
	}
	return nil
}
