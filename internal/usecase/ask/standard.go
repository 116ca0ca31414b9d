package ask

import (
	"context"

	"github.com/catalogix/askdex/internal/domain"
)

// standardPipeline is the fastest path: one text search, one image search
// driven by the original query, no feedback loop.
type standardPipeline struct {
	svc *Service
}

func (p standardPipeline) run(ctx context.Context, st *askState) (*domain.Bundle, error) {
	docs := st.initial
	if docs == nil {
		var err error
		docs, err = p.svc.searchText(ctx, st.question, standardWidth, st.category)
		if err != nil {
			return nil, err
		}
	}

	images, err := p.svc.searchImages(ctx, st.question, st.category, docs)
	if err != nil {
		return nil, err
	}

	return &domain.Bundle{
		Documents: docs,
		Images:    images,
		Strategy:  domain.StrategyStandard,
	}, nil
}
