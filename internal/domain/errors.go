package domain

import "errors"

var (
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGeneratorUnavailable signals a generator provider failure.
	// Pipelines degrade to strategy defaults instead of surfacing it.
	ErrGeneratorUnavailable = errors.New("generator unavailable")
	// ErrSearchBackend signals a fatal search backend failure.
	ErrSearchBackend = errors.New("search backend error")
	// ErrRequestTimeout signals the per-request deadline was exceeded.
	ErrRequestTimeout = errors.New("request timed out")
)
