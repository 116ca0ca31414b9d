package ask

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/usecase/rank"
)

// fusionPipeline diversifies the query into semantic paraphrases, searches
// once per variation, and merges the ranked lists via Reciprocal Rank
// Fusion. The working set is capped for latency.
type fusionPipeline struct {
	svc *Service
}

func (p fusionPipeline) run(ctx context.Context, st *askState) (*domain.Bundle, error) {
	variations := p.svc.generateVariations(ctx, st.question)
	if len(variations) > maxVariations {
		variations = variations[:maxVariations]
	}

	// Per-variation searches are independent; run them concurrently
	// under the shared worker cap, same category filter on each.
	lists := make([][]domain.Document, len(variations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.svc.opts.SearchConcurrency)
	for i, query := range variations {
		g.Go(func() error {
			docs, err := p.svc.searchText(gctx, query, standardWidth, st.category)
			if err != nil {
				return err
			}
			lists[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fused := rank.FuseRRF(lists, p.svc.opts.RRFK, fusedLimit)

	images, err := p.svc.searchImages(ctx, st.question, st.category, fused)
	if err != nil {
		return nil, err
	}

	return &domain.Bundle{
		Documents:       fused,
		Images:          images,
		Strategy:        domain.StrategyFusion,
		QueryVariations: variations,
	}, nil
}
