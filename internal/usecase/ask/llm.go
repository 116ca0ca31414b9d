package ask

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Generator failures never abort a pipeline: every helper collapses to a
// strategy-specific safe default and logs the degradation.

const (
	defaultRelevanceScore = 0.5
	fallbackDraft         = "Seeking further catalog details..."
	fallbackAnswer        = "I'm sorry, I couldn't find enough information in our catalogs to answer that question."
)

var floatScoreRe = regexp.MustCompile(`0\.\d+|1\.0`)

// generate routes a prompt through the circuit breaker. While the breaker
// is open calls fail fast and the caller's default applies.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	return s.breaker.Execute(func() (string, error) {
		return s.gen.Generate(ctx, prompt)
	})
}

// generateAnswer synthesizes the final answer. Degrades to an apology
// rather than failing the request.
func (s *Service) generateAnswer(ctx context.Context, question, docContext string) string {
	res, err := s.generate(ctx, answerPrompt(question, docContext))
	if err != nil {
		s.logger.Warn("Answer generation degraded", zap.Error(err))
		return fallbackAnswer
	}
	if strings.TrimSpace(res) == "" {
		return fallbackAnswer
	}
	return res
}

// generateDraft produces the speculative one-sentence hypothesis.
func (s *Service) generateDraft(ctx context.Context, question, docContext string) string {
	res, err := s.generate(ctx, draftPrompt(question, docContext))
	if err != nil {
		s.logger.Warn("Draft generation degraded", zap.Error(err))
		return fallbackDraft
	}
	return res
}

// rewriteQuery rewrites a query into catalog phrasing; default: unchanged.
func (s *Service) rewriteQuery(ctx context.Context, query string) string {
	res, err := s.generate(ctx, rewritePrompt(query))
	if err != nil {
		s.logger.Warn("Query rewrite degraded", zap.Error(err))
		return query
	}
	res = strings.TrimSpace(strings.ReplaceAll(res, `"`, ""))
	if res == "" {
		return query
	}
	return res
}

// scoreRelevance rates context relevance in [0,1]. Empty context scores 0;
// unparseable or failed generations default to 0.5.
func (s *Service) scoreRelevance(ctx context.Context, question, docContext string) float64 {
	if strings.TrimSpace(docContext) == "" {
		return 0.0
	}
	res, err := s.generate(ctx, relevancePrompt(question, docContext))
	if err != nil {
		s.logger.Warn("Relevance scoring degraded", zap.Error(err))
		return defaultRelevanceScore
	}
	match := floatScoreRe.FindString(res)
	if match == "" {
		return defaultRelevanceScore
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return defaultRelevanceScore
	}
	return score
}

// extractEntities pulls key product entities from text; default: none.
func (s *Service) extractEntities(ctx context.Context, text string) []string {
	res, err := s.generate(ctx, entitiesPrompt(text))
	if err != nil {
		s.logger.Warn("Entity extraction degraded", zap.Error(err))
		return nil
	}
	var entities []string
	for _, e := range strings.Split(res, ",") {
		if e = strings.TrimSpace(e); e != "" {
			entities = append(entities, e)
		}
	}
	return entities
}

// generateVariations produces up to 3 paraphrases plus the original query;
// default: the original query alone.
func (s *Service) generateVariations(ctx context.Context, query string) []string {
	res, err := s.generate(ctx, variationsPrompt(query))
	if err != nil {
		s.logger.Warn("Paraphrase generation degraded", zap.Error(err))
		return []string{query}
	}

	var variations []string
	for _, line := range strings.Split(res, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			variations = append(variations, line)
		}
	}
	if len(variations) > 3 {
		variations = variations[:3]
	}
	return append(variations, query)
}
