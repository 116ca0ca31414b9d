package ask

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/domain"
)

// route picks a strategy from a cheap probe search. Short queries benefit
// from hypothesis-driven entity expansion; low probe recall benefits from
// query diversification; everything else takes the cheapest path. The
// probe results become the chosen pipeline's initial candidates so the
// first search is not repeated.
func (s *Service) route(ctx context.Context, st *askState) (domain.Strategy, error) {
	vec, err := s.embedQuestion(ctx, st)
	if err != nil {
		return "", err
	}

	probe, err := s.search.Search(ctx, domain.SpaceText, vec, probeWidth, "")
	if err != nil {
		return "", err
	}
	st.initial = probe

	var strategy domain.Strategy
	switch {
	case wordCount(st.question) <= shortQueryWords:
		strategy = domain.StrategySpeculative
	case len(probe) < minProbeRecall:
		strategy = domain.StrategyFusion
	default:
		strategy = domain.StrategyStandard
	}

	s.logger.Debug("Router decision",
		zap.String("strategy", string(strategy)),
		zap.Int("words", wordCount(st.question)),
		zap.Int("probe_hits", len(probe)),
	)
	return strategy, nil
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
