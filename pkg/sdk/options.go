package askdex

import (
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	textEmbedder  Embedder
	imageEmbedder Embedder
	generator     Generator

	textDimensions  int
	imageDimensions int
	hnswM           int
	hnswEFConstruct int
	cacheCapacity   int

	corrective     float64
	imageMinScore  float64
	dualMatchBoost float64

	logger *zap.Logger
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithTextEmbedder sets the primary text-space embedding provider. Required.
func WithTextEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.textEmbedder = e
	})
}

// WithImageEmbedder sets the cross-modal embedding provider used for image
// discovery. Required.
func WithImageEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.imageEmbedder = e
	})
}

// WithGenerator sets the text generation provider. Optional: without it
// every LLM sub-step degrades to its safe default.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithDimensions sets the vector dimensions for the two embedding spaces.
// Defaults: 384 text, 512 image.
func WithDimensions(text, image int) Option {
	return optionFunc(func(c *clientConfig) {
		c.textDimensions = text
		c.imageDimensions = image
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
// Defaults: M=32, EFConstruct=400.
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithEmbeddingCache sets the in-process embedding cache capacity in
// entries. Default: 4096. Zero keeps the default; use a negative value to
// make the cache unbounded.
func WithEmbeddingCache(capacity int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheCapacity = capacity
	})
}

// WithTuning overrides the retrieval thresholds: the corrective relevance
// gate, the minimum image score, and the dual-match boost. Zero values
// keep the production defaults (0.7, 0.22, 1.15).
func WithTuning(corrective, imageMinScore, dualMatchBoost float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.corrective = corrective
		c.imageMinScore = imageMinScore
		c.dualMatchBoost = dualMatchBoost
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}
