package resource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/lighthouse/internal/metrics"
	"github.com/mcoot/lighthouse/internal/model"
)

// ErrUnsafeResource is returned when an upload's format is refused
var ErrUnsafeResource = errors.New("resource type not allowed")

// maxConcurrentChecks bounds the existence checks one request may run at once
const maxConcurrentChecks = 16

// Config holds configuration for the resource gate
type Config struct {
	// CheckUnsafeFiles turns the format policy on. With it off every
	// kind is accepted.
	CheckUnsafeFiles bool
	SniffCacheSize   int
}

// DefaultConfig returns the default gate configuration
func DefaultConfig() Config {
	return Config{
		CheckUnsafeFiles: true,
		SniffCacheSize:   1024,
	}
}

// Gate answers existence and safety questions about resources
type Gate struct {
	store   Store
	cfg     Config
	kinds   *lru.Cache[string, FileKind]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewGate creates a new Gate over store
func NewGate(store Store, cfg Config, m *metrics.Metrics, logger *slog.Logger) (*Gate, error) {
	if cfg.SniffCacheSize <= 0 {
		cfg.SniffCacheSize = DefaultConfig().SniffCacheSize
	}
	kinds, err := lru.New[string, FileKind](cfg.SniffCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create sniff cache: %w", err)
	}
	return &Gate{
		store:   store,
		cfg:     cfg,
		kinds:   kinds,
		metrics: m,
		logger:  logger,
	}, nil
}

// Exists reports whether hash has been uploaded
func (g *Gate) Exists(ctx context.Context, hash string) (bool, error) {
	return g.store.Exists(ctx, hash)
}

// SizeOf returns the stored size of hash, or 0 if it is missing
func (g *Gate) SizeOf(ctx context.Context, hash string) (int64, error) {
	size, err := g.store.Size(ctx, hash)
	if errors.Is(err, model.ErrResourceNotFound) || errors.Is(err, ErrInvalidHash) {
		return 0, nil
	}
	return size, err
}

// IsSafe applies the format policy
func (g *Gate) IsSafe(kind FileKind) bool {
	if !g.cfg.CheckUnsafeFiles {
		return true
	}
	return safeKinds[kind]
}

// KindOf sniffs a stored resource. Resources never change, so results
// are cached by hash.
func (g *Gate) KindOf(ctx context.Context, hash string) (FileKind, error) {
	if kind, ok := g.kinds.Get(hash); ok {
		return kind, nil
	}
	data, err := g.store.Read(ctx, hash)
	if err != nil {
		return KindUnknown, err
	}
	kind := Sniff(data)
	g.kinds.Add(hash, kind)
	return kind, nil
}

// Read returns the bytes of a stored resource
func (g *Gate) Read(ctx context.Context, hash string) ([]byte, error) {
	return g.store.Read(ctx, hash)
}

// MissingResources filters hashes down to the ones not yet uploaded,
// keeping their order
func (g *Gate) MissingResources(ctx context.Context, hashes []string) ([]string, error) {
	exists := make([]bool, len(hashes))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentChecks)
	for i, hash := range hashes {
		i, hash := i, hash
		eg.Go(func() error {
			ok, err := g.store.Exists(ctx, hash)
			if err != nil {
				return fmt.Errorf("check resource %s: %w", hash, err)
			}
			exists[i] = ok
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	missing := make([]string, 0, len(hashes))
	for i, hash := range hashes {
		if !exists[i] {
			missing = append(missing, hash)
		}
	}
	return missing, nil
}

// Upload stores data under hash after checking the format policy
func (g *Gate) Upload(ctx context.Context, hash string, data []byte) (FileKind, error) {
	if !ValidHash(hash) {
		return KindUnknown, ErrInvalidHash
	}

	kind := Sniff(data)
	exists, err := g.store.Exists(ctx, hash)
	if err != nil {
		return kind, err
	}
	if exists {
		g.metrics.ResourceUpload(kind.String(), metrics.OutcomeRejected)
		return kind, model.ErrResourceExists
	}

	if !g.IsSafe(kind) {
		g.logger.Warn("refused unsafe upload",
			slog.String("hash", hash),
			slog.String("kind", kind.String()),
			slog.Int("size", len(data)),
		)
		g.metrics.ResourceUpload(kind.String(), metrics.OutcomeRejected)
		return kind, ErrUnsafeResource
	}

	if err := g.store.Write(ctx, hash, data); err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, model.ErrResourceExists) {
			outcome = metrics.OutcomeRejected
		}
		g.metrics.ResourceUpload(kind.String(), outcome)
		return kind, err
	}

	g.kinds.Add(hash, kind)
	g.metrics.ResourceUpload(kind.String(), metrics.OutcomeOK)
	g.logger.Info("resource uploaded",
		slog.String("hash", hash),
		slog.String("kind", kind.String()),
		slog.Int("size", len(data)),
	)
	return kind, nil
}
