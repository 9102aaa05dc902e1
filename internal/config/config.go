// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds the Postgres connection string and pool sizing
// (spec.md §4.1: target 5, overflow 10).
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// EngineConfig holds the reconciliation engine's tunables (spec.md §6).
type EngineConfig struct {
	Interval           time.Duration `mapstructure:"interval"`
	UpdatesLookback    time.Duration `mapstructure:"updates_lookback"`
	WelcomeMessage     string        `mapstructure:"welcome_message"`
	KickNoticeTemplate string        `mapstructure:"kick_notice_template"`
	Concurrency        int           `mapstructure:"concurrency"`
}

// RedisConfig holds the connection settings for the cycle-leadership lock
// (SPEC_FULL.md §11: "github.com/go-redis/redis/v8").
type RedisConfig struct {
	URL      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds the zerolog setup (SPEC_FULL.md §10.2).
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "console"
}

// AdminConfig holds the ops-facing health/metrics HTTP surface (SPEC_FULL.md
// §10.5). It is never the owner-facing REST CRUD surface, which is out of
// scope per spec.md §1.
type AdminConfig struct {
	Port int `mapstructure:"port"`
}

// Config is chatwarden's complete process configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("engine.interval", "30s")
	v.SetDefault("engine.updates_lookback", "24h")
	v.SetDefault("engine.concurrency", 1)
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("admin.port", 8080)
}

func load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Map the spec's environment names (spec.md §6) onto the nested keys.
	// SERVICE_INTERVAL and UPDATES_LOOKBACK_HOURS are read after Unmarshal
	// (below), since viper would reject a bare integer as a duration.
	_ = v.BindEnv("database.url", "DATABASE_URL")

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config file %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// SERVICE_INTERVAL and UPDATES_LOOKBACK_HOURS are specified in bare
	// seconds/hours (spec.md §6), not Go duration syntax; interpret a plain
	// integer from the environment accordingly.
	if raw := os.Getenv("SERVICE_INTERVAL"); raw != "" {
		if secs, err := parseSeconds(raw); err == nil {
			cfg.Engine.Interval = time.Duration(secs) * time.Second
		}
	}
	if raw := os.Getenv("UPDATES_LOOKBACK_HOURS"); raw != "" {
		if hours, err := parseSeconds(raw); err == nil {
			cfg.Engine.UpdatesLookback = time.Duration(hours) * time.Hour
		}
	}
	if cfg.Engine.Interval <= 0 {
		cfg.Engine.Interval = 30 * time.Second
	}
	if cfg.Engine.UpdatesLookback <= 0 {
		cfg.Engine.UpdatesLookback = 24 * time.Hour
	}
	if cfg.Engine.Concurrency <= 0 {
		cfg.Engine.Concurrency = 1
	}

	return &cfg, nil
}

// LoadConfig is the strict, application-level loader: it requires
// database.url. path may be "" to load purely from environment.
func LoadConfig(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	return cfg, nil
}

// LoadConfigFrom is the lenient, test-oriented variant: it never errors on a
// missing file and falls back through TEST_DATABASE_URL before DATABASE_URL,
// mirroring the teacher's LoadConfig/LoadConfigFrom split.
func LoadConfigFrom(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if env := os.Getenv("TEST_DATABASE_URL"); env != "" {
		cfg.Database.URL = env
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required (set TEST_DATABASE_URL, DATABASE_URL, or provide it in the YAML)")
	}
	return cfg, nil
}

func parseSeconds(raw string) (int64, error) {
	var n int64
	_, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &n)
	return n, err
}
