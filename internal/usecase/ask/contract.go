package ask

import (
	"context"
	"time"

	"github.com/catalogix/askdex/internal/domain"
)

// Searcher retrieves ranked catalog documents by vector similarity.
// An empty category applies no filter.
type Searcher interface {
	Search(
		ctx context.Context, space domain.Space,
		vector domain.Vector, topK int, category string,
	) ([]domain.Document, error)
}

// Generator produces text from a prompt. All LLM-backed sub-steps (answer
// synthesis, rewriting, scoring, entity extraction, paraphrasing) use it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options holds the orchestrator tuning knobs. The numeric defaults come
// from the production tuning of the source system and carry no documented
// derivation; override them via config rather than editing code.
type Options struct {
	CorrectiveThreshold float64
	ImageMinScore       float64
	DualMatchBoost      float64
	MaxImages           int
	RRFK                int
	SearchConcurrency   int
	RequestTimeout      time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		CorrectiveThreshold: 0.7,
		ImageMinScore:       0.22,
		DualMatchBoost:      1.15,
		MaxImages:           12,
		RRFK:                60,
		SearchConcurrency:   4,
		RequestTimeout:      300 * time.Second,
	}
}

// applyDefaults fills zero fields with production defaults.
func (o Options) applyDefaults() Options {
	def := DefaultOptions()
	if o.CorrectiveThreshold <= 0 {
		o.CorrectiveThreshold = def.CorrectiveThreshold
	}
	if o.ImageMinScore <= 0 {
		o.ImageMinScore = def.ImageMinScore
	}
	if o.DualMatchBoost <= 0 {
		o.DualMatchBoost = def.DualMatchBoost
	}
	if o.MaxImages <= 0 {
		o.MaxImages = def.MaxImages
	}
	if o.RRFK <= 0 {
		o.RRFK = def.RRFK
	}
	if o.SearchConcurrency <= 0 {
		o.SearchConcurrency = def.SearchConcurrency
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = def.RequestTimeout
	}
	return o
}
