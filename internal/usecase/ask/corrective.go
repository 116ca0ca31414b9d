package ask

import (
	"context"

	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/usecase/rank"
)

// correctivePipeline gates a second, broader retrieval round on a
// generator-scored relevance check of the first round's context. The
// pre-rewrite score is what lands in the bundle metadata.
type correctivePipeline struct {
	svc *Service
}

func (p correctivePipeline) run(ctx context.Context, st *askState) (*domain.Bundle, error) {
	docs := st.initial
	if docs == nil {
		var err error
		docs, err = p.svc.searchText(ctx, st.question, correctiveWidth, st.category)
		if err != nil {
			return nil, err
		}
	}

	score := p.svc.scoreRelevance(ctx, st.question, contextText(docs))

	imageQuery := st.question
	if score < p.svc.opts.CorrectiveThreshold {
		rewritten := p.svc.rewriteQuery(ctx, st.question)
		p.svc.logger.Info("Low relevance, reissuing with rewritten query",
			zap.Float64("score", score),
			zap.String("rewritten", rewritten),
		)

		// Broader second pass, no category filter.
		secondary, err := p.svc.searchText(ctx, rewritten, correctiveRetryWidth, "")
		if err != nil {
			return nil, err
		}
		docs = rank.Dedupe(docs, secondary)

		// The rewritten query drives image discovery on this branch.
		imageQuery = rewritten
	}

	// Image collection sees the full merged list; only the generation
	// context is capped, so late-ranked parents keep their boost.
	images, err := p.svc.searchImages(ctx, imageQuery, st.category, docs)
	if err != nil {
		return nil, err
	}

	if len(docs) > contextDocCap {
		docs = docs[:contextDocCap]
	}

	return &domain.Bundle{
		Documents:      docs,
		Images:         images,
		Strategy:       domain.StrategyCorrective,
		RelevanceScore: &score,
	}, nil
}
