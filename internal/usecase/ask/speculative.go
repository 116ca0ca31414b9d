package ask

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/usecase/rank"
)

// speculativePipeline drafts a hypothesis answer from a shallow search,
// extracts entities from query+draft, and enriches retrieval with one
// narrow search per entity. Breadth comes from discovered entities, not
// from the original query alone.
type speculativePipeline struct {
	svc *Service
}

func (p speculativePipeline) run(ctx context.Context, st *askState) (*domain.Bundle, error) {
	quick := st.initial
	if quick == nil {
		var err error
		quick, err = p.svc.searchText(ctx, st.question, speculativeWidth, st.category)
		if err != nil {
			return nil, err
		}
	} else if len(quick) > speculativeWidth {
		quick = quick[:speculativeWidth]
	}

	draft := p.svc.generateDraft(ctx, st.question, contextText(quick))
	entities := p.svc.extractEntities(ctx, st.question+" "+draft)

	searchEntities := entities
	if len(searchEntities) > maxEntities {
		searchEntities = searchEntities[:maxEntities]
	}

	// Per-entity searches are independent; run them concurrently under
	// the shared worker cap. No category filter on enrichment.
	enriched := make([][]domain.Document, len(searchEntities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.svc.opts.SearchConcurrency)
	for i, entity := range searchEntities {
		g.Go(func() error {
			docs, err := p.svc.searchText(gctx, entity, entitySearchWidth, "")
			if err != nil {
				return err
			}
			enriched[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := rank.Dedupe(append([][]domain.Document{quick}, enriched...)...)

	queryVec, err := p.svc.embedQuestion(ctx, st)
	if err != nil {
		return nil, err
	}
	merged = rank.RerankByEmbedding(queryVec, merged, rerankLimit)

	// Extracted entities widen image discovery beyond the raw question.
	imageQuery := st.question
	if len(searchEntities) > 0 {
		imageQuery += " " + strings.Join(searchEntities, " ")
	}
	images, err := p.svc.searchImages(ctx, imageQuery, st.category, merged)
	if err != nil {
		return nil, err
	}

	return &domain.Bundle{
		Documents: merged,
		Images:    images,
		Strategy:  domain.StrategySpeculative,
		Entities:  entities,
	}, nil
}
