// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name
const EnvPrefix = "LIGHTHOUSE_"

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageSQLite = "sqlite"
)

// Config is the server configuration
type Config struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"10060"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/lighthouse.db"`

	ResourceDir         string `env:"RESOURCE_DIR" envDefault:"r"`
	CheckForUnsafeFiles bool   `env:"CHECK_FOR_UNSAFE_FILES" envDefault:"true"`
	SniffCacheSize      int    `env:"SNIFF_CACHE_SIZE" envDefault:"1024"`

	EntitledSlots       int  `env:"ENTITLED_SLOTS" envDefault:"50"`
	RegistrationEnabled bool `env:"REGISTRATION_ENABLED" envDefault:"true"`
	// UseExternalAuth holds game logins until they are approved on the web
	UseExternalAuth bool `env:"USE_EXTERNAL_AUTH" envDefault:"false"`

	ServerName string        `env:"SERVER_NAME" envDefault:"ProjectLighthouse"`
	EulaText   string        `env:"EULA_TEXT"`
	RoomTTL    time.Duration `env:"ROOM_TTL" envDefault:"30m"`
}

// Load reads the configuration from LIGHTHOUSE_* variables
func Load() (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom reads the configuration from the given variables instead of
// the process environment
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	switch c.StorageType {
	case StorageMemory, StorageSQLite:
	case StorageRedis:
		if c.RedisURL == "" {
			return errors.New(EnvPrefix + "REDIS_URL required when storage type is redis")
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be memory, redis or sqlite", c.StorageType)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RoomTTL < 0 {
		return errors.New("room TTL must not be negative")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
