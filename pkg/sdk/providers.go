package askdex

import (
	"context"
	"errors"
	"fmt"

	"github.com/catalogix/askdex/internal/domain"
)

// Embedder converts text to a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces text from a prompt. Used for answer synthesis and
// the strategy sub-steps (rewriting, scoring, entity extraction,
// paraphrasing).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// embedderAdapter wraps the public Embedder to satisfy internal
// domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.Vector, error) {
	vec, err := a.inner.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	return vec, nil
}

// noopGenerator errors on use, which the orchestrator absorbs into its
// per-step defaults.
type noopGenerator struct{}

func (noopGenerator) Generate(context.Context, string) (string, error) {
	return "", errors.New("askdex: generator not configured (use WithGenerator)")
}
