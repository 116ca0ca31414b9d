package askdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/db"
	dbRedis "github.com/catalogix/askdex/internal/db/redis"
	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/repository/catalog"
	"github.com/catalogix/askdex/internal/repository/embcache"
	askuc "github.com/catalogix/askdex/internal/usecase/ask"
	healthuc "github.com/catalogix/askdex/internal/usecase/health"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultTextDimensions   = 384
	defaultImageDimensions  = 512
	defaultCacheCapacity    = 4096
)

// Internal interfaces for test substitution.
type askUseCase interface {
	Ask(ctx context.Context, question, strategy string) (*domain.Answer, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the askdex SDK entry point.
type Client struct {
	store     db.Store
	repo      *catalog.Repo
	textEmb   domain.Embedder
	askSvc    askUseCase
	healthSvc healthUseCase
}

// New creates an askdex Client, connects to the database, and ensures the
// search indexes exist. The provided context bounds the initial readiness
// check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		textDimensions:  defaultTextDimensions,
		imageDimensions: defaultImageDimensions,
		cacheCapacity:   defaultCacheCapacity,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("askdex: database address required (use WithRedis)")
	}
	if cfg.textEmbedder == nil {
		return nil, errors.New("askdex: text embedder required (use WithTextEmbedder)")
	}
	if cfg.imageEmbedder == nil {
		return nil, errors.New("askdex: image embedder required (use WithImageEmbedder)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("askdex: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("askdex: database not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig) (*Client, error) {
	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cache := embcache.NewMemStore(cacheCapacity(cfg.cacheCapacity))
	textEmb := embcache.New(&embedderAdapter{inner: cfg.textEmbedder}, cache, domain.SpaceText, nil, logger)
	imageEmb := embcache.New(&embedderAdapter{inner: cfg.imageEmbedder}, cache, domain.SpaceImage, nil, logger)

	var gen askuc.Generator = noopGenerator{}
	if cfg.generator != nil {
		gen = cfg.generator
	}

	repo := catalog.New(store, catalog.NewCapabilityRegistry(), logger)
	if err := repo.EnsureIndexes(ctx,
		cfg.textDimensions, cfg.imageDimensions, cfg.hnswM, cfg.hnswEFConstruct,
	); err != nil {
		return nil, fmt.Errorf("askdex: ensure indexes: %w", err)
	}

	askSvc := askuc.New(repo, gen, textEmb, imageEmb, askuc.Options{
		CorrectiveThreshold: cfg.corrective,
		ImageMinScore:       cfg.imageMinScore,
		DualMatchBoost:      cfg.dualMatchBoost,
	}, logger)

	return &Client{
		store:     store,
		repo:      repo,
		textEmb:   textEmb,
		askSvc:    askSvc,
		healthSvc: healthuc.New(store, nil),
	}, nil
}

// cacheCapacity maps the option convention (0 = default, negative =
// unbounded) to the MemStore convention (0 = unbounded).
func cacheCapacity(v int) int {
	switch {
	case v < 0:
		return 0
	case v == 0:
		return defaultCacheCapacity
	default:
		return v
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ask answers a catalog question. strategy selects the retrieval pipeline
// ("standard", "corrective", "speculative", "fusion"); empty routes
// automatically.
func (c *Client) Ask(ctx context.Context, question, strategy string) (Result, error) {
	answer, err := c.askSvc.Ask(ctx, question, strategy)
	if err != nil {
		return Result{}, err
	}
	return resultFromAnswer(answer), nil
}

// BrokenFilters returns the filter keys the search index has been learned
// to not support, for diagnostics.
func (c *Client) BrokenFilters() []string {
	return c.repo.BrokenFilters()
}
