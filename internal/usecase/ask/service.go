package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/metrics"
	"github.com/catalogix/askdex/internal/usecase/rank"
)

// Search widths per pipeline stage.
const (
	probeWidth           = 5
	standardWidth        = 10
	correctiveWidth      = 8
	correctiveRetryWidth = 15
	speculativeWidth     = 3
	entitySearchWidth    = 3
	visualSearchWidth    = 20

	maxEntities   = 2
	maxVariations = 2
	fusedLimit    = 15
	rerankLimit   = 15
	contextDocCap = 12

	shortQueryWords = 3
	minProbeRecall  = 3
)

// Service is the retrieval orchestrator: it routes a query to one of four
// strategy pipelines and turns the resulting evidence bundle into an answer.
type Service struct {
	search     Searcher
	gen        Generator
	textEmbed  domain.Embedder
	imageEmbed domain.Embedder
	categories *CategoryDetector
	images     rank.ImageScorer
	opts       Options
	breaker    *gobreaker.CircuitBreaker[string]
	logger     *zap.Logger
}

// pipeline is the fixed strategy contract: consume the request state,
// produce an evidence bundle.
type pipeline interface {
	run(ctx context.Context, st *askState) (*domain.Bundle, error)
}

// askState carries per-request inputs shared across pipeline stages.
type askState struct {
	question string
	category string
	queryVec domain.Vector     // text-space embedding of the original question
	initial  []domain.Document // probe results handed down by the router
}

// New creates the orchestrator service.
func New(
	search Searcher,
	gen Generator,
	textEmbed, imageEmbed domain.Embedder,
	opts Options,
	logger *zap.Logger,
) *Service {
	opts = opts.applyDefaults()

	// Trip after persistent generator failure; pipelines degrade to
	// defaults while open, so an open breaker never fails a request.
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:    "generator",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Service{
		search:     search,
		gen:        gen,
		textEmbed:  textEmbed,
		imageEmbed: imageEmbed,
		categories: DefaultCategoryDetector(),
		images:     rank.NewImageScorer(opts.ImageMinScore, opts.DualMatchBoost, opts.MaxImages),
		opts:       opts,
		breaker:    breaker,
		logger:     logger,
	}
}

// Ask answers a catalog question. Empty or unknown strategy names are
// lenient: empty routes automatically, unknown degrades to standard.
func (s *Service) Ask(ctx context.Context, question, strategyName string) (*domain.Answer, error) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	st := &askState{
		question: question,
		category: s.categories.Detect(question),
	}

	strategy := domain.ParseStrategy(strategyName)
	if strategy == domain.StrategyAuto {
		routed, err := s.route(ctx, st)
		if err != nil {
			return nil, s.requestErr(strategy, err)
		}
		strategy = routed
	}

	bundle, err := s.pipelineFor(strategy).run(ctx, st)
	if err != nil {
		return nil, s.requestErr(strategy, err)
	}
	metrics.StrategyRunsTotal.WithLabelValues(string(strategy), "success").Inc()

	answer := s.generateAnswer(ctx, question, contextText(bundle.Documents))

	s.logger.Info("Ask completed",
		zap.String("strategy", string(strategy)),
		zap.String("category", st.category),
		zap.Int("documents", len(bundle.Documents)),
		zap.Int("images", len(bundle.Images)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &domain.Answer{
		Answer:          answer,
		Images:          bundle.Images,
		Mode:            strategy,
		RelevanceScore:  bundle.RelevanceScore,
		Entities:        bundle.Entities,
		QueryVariations: bundle.QueryVariations,
		Elapsed:         time.Since(start),
	}, nil
}

func (s *Service) requestErr(strategy domain.Strategy, err error) error {
	metrics.StrategyRunsTotal.WithLabelValues(string(strategy), "error").Inc()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrRequestTimeout, err)
	}
	return err
}

func (s *Service) pipelineFor(strategy domain.Strategy) pipeline {
	switch strategy {
	case domain.StrategyCorrective:
		return correctivePipeline{s}
	case domain.StrategySpeculative:
		return speculativePipeline{s}
	case domain.StrategyFusion:
		return fusionPipeline{s}
	default:
		return standardPipeline{s}
	}
}

// embedQuestion memoizes the text-space embedding of the original question
// within the request state.
func (s *Service) embedQuestion(ctx context.Context, st *askState) (domain.Vector, error) {
	if st.queryVec != nil {
		return st.queryVec, nil
	}
	vec, err := s.textEmbed.Embed(ctx, st.question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	st.queryVec = vec
	return vec, nil
}

// searchText embeds a query string and searches the primary text space.
func (s *Service) searchText(
	ctx context.Context, query string, topK int, category string,
) ([]domain.Document, error) {
	vec, err := s.textEmbed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	docs, err := s.search.Search(ctx, domain.SpaceText, vec, topK, category)
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}
	return docs, nil
}

// searchImages embeds the image query in the cross-modal space, runs the
// visual-direct pass, and scores candidates from both passes. Images from
// textDocs carry the dual-match boost.
func (s *Service) searchImages(
	ctx context.Context, query, category string, textDocs []domain.Document,
) ([]domain.ImageRef, error) {
	vec, err := s.imageEmbed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed image query: %w", err)
	}

	visual, err := s.search.Search(ctx, domain.SpaceImage, vec, visualSearchWidth, category)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}

	return s.images.Collect(vec, visual, textDocs), nil
}

// contextText assembles the generation context from document payloads.
func contextText(docs []domain.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Text != "" {
			parts = append(parts, d.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
