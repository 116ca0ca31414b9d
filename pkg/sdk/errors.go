package askdex

import "github.com/catalogix/askdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrGeneratorUnavailable   = domain.ErrGeneratorUnavailable
	ErrSearchBackend          = domain.ErrSearchBackend
	ErrRequestTimeout         = domain.ErrRequestTimeout
)
