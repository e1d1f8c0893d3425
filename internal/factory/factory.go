package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mcoot/lighthouse/internal/config"
	"github.com/mcoot/lighthouse/internal/dependencies/clock"
	"github.com/mcoot/lighthouse/internal/dependencies/random"
	"github.com/mcoot/lighthouse/internal/metrics"
	"github.com/mcoot/lighthouse/internal/services/auth"
	"github.com/mcoot/lighthouse/internal/services/match"
	"github.com/mcoot/lighthouse/internal/services/publish"
	"github.com/mcoot/lighthouse/internal/services/resource"
	"github.com/mcoot/lighthouse/internal/storage"
	"github.com/mcoot/lighthouse/internal/storage/memory"
	redisstorage "github.com/mcoot/lighthouse/internal/storage/redis"
	"github.com/mcoot/lighthouse/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage   storage.Storage
	Resources resource.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	Metrics *metrics.Metrics

	// Services
	Directory       *match.Directory
	Matchmaker      *match.Matchmaker
	MatchController *match.Controller
	AuthService     *auth.Service
	ResourceGate    *resource.Gate
	PublishService  *publish.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
	// ResourceDir is where uploaded resources live
	// If empty, resources are kept in memory
	ResourceDir string
	// AuthConfig, PublishConfig and ResourceConfig fall back to their
	// package defaults when nil
	AuthConfig     *auth.Config
	PublishConfig  *publish.Config
	ResourceConfig *resource.Config
	// RoomTTL is how long an untouched room survives. Zero keeps rooms forever.
	RoomTTL time.Duration
}

// ConfigFrom maps environment settings onto factory configuration
func ConfigFrom(settings config.Config, logger *slog.Logger) Config {
	cfg := Config{
		Logger:      logger,
		StorageType: settings.StorageType,
		SQLitePath:  settings.SQLitePath,
		ResourceDir: settings.ResourceDir,
		AuthConfig: &auth.Config{
			RegistrationEnabled: settings.RegistrationEnabled,
			UseExternalAuth:     settings.UseExternalAuth,
		},
		PublishConfig: &publish.Config{
			EntitledSlots: settings.EntitledSlots,
		},
		ResourceConfig: &resource.Config{
			CheckUnsafeFiles: settings.CheckForUnsafeFiles,
			SniffCacheSize:   settings.SniffCacheSize,
		},
		RoomTTL: settings.RoomTTL,
	}
	if settings.StorageType == config.StorageRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = settings.RedisURL
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(cfg)
	if err != nil {
		return nil, err
	}

	var resources resource.Store
	if cfg.ResourceDir == "" {
		resources = resource.NewMemoryStore()
	} else {
		fileStore, err := resource.NewFileStore(cfg.ResourceDir)
		if err != nil {
			return nil, fmt.Errorf("open resource dir: %w", err)
		}
		resources = fileStore
	}

	return newWithDependencies(dependencies{
		store:     store,
		resources: resources,
		clock:     clock.New(),
		random:    random.New(),
		metrics:   metrics.New(),
		logger:    logger,
	}, cfg)
}

func openStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageMemory
	}

	switch storageType {
	case config.StorageMemory:
		return memory.New(), nil
	case config.StorageRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case config.StorageSQLite:
		if cfg.SQLitePath == "" {
			return nil, errors.New("SQLitePath required when StorageType is sqlite")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sqlite'")
	}
}

type dependencies struct {
	store     storage.Storage
	resources resource.Store
	clock     clock.Clock
	random    random.Random
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(deps dependencies, cfg Config) (*App, error) {
	authCfg := auth.DefaultConfig()
	if cfg.AuthConfig != nil {
		authCfg = *cfg.AuthConfig
	}
	publishCfg := publish.DefaultConfig()
	if cfg.PublishConfig != nil {
		publishCfg = *cfg.PublishConfig
	}
	resourceCfg := resource.DefaultConfig()
	if cfg.ResourceConfig != nil {
		resourceCfg = *cfg.ResourceConfig
	}

	gate, err := resource.NewGate(deps.resources, resourceCfg, deps.metrics, deps.logger)
	if err != nil {
		return nil, err
	}

	directory := match.NewDirectory(deps.clock, cfg.RoomTTL)
	matchmaker := match.NewMatchmaker(deps.store, directory, deps.logger)
	deps.metrics.TrackRooms(directory.RoomCount)

	return &App{
		Storage:         deps.store,
		Resources:       deps.resources,
		Clock:           deps.clock,
		Random:          deps.random,
		Metrics:         deps.metrics,
		Directory:       directory,
		Matchmaker:      matchmaker,
		MatchController: match.NewController(directory, matchmaker, deps.metrics, deps.logger),
		AuthService:     auth.New(deps.store, deps.clock, deps.random, deps.metrics, deps.logger, authCfg),
		ResourceGate:    gate,
		PublishService:  publish.New(deps.store, gate, deps.clock, deps.logger, publishCfg),
	}, nil
}

// Close releases storage connections
func (a *App) Close() error {
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
