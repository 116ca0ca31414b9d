package openai

import (
	"context"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/catalogix/askdex/internal/domain"
	"github.com/catalogix/askdex/internal/metrics"
)

// Generator produces text via an OpenAI-compatible chat completions API.
// Answer synthesis, query rewriting, relevance scoring, entity extraction
// and paraphrasing all go through this one primitive with different prompts.
type Generator struct {
	client   *openai.Client
	model    string
	provider string
	logger   *zap.Logger
}

// GeneratorConfig holds the generator provider settings.
type GeneratorConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat generator.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// zeroTemperature requests deterministic sampling. The request struct
// marshals Temperature with omitempty, so a literal 0 would be dropped and
// the server default (1.0) applied; the smallest positive float32 survives
// serialization and is indistinguishable from 0 for sampling.
const zeroTemperature = math.SmallestNonzeroFloat32

// Generate runs one chat completion for the prompt at temperature 0.
// Relevance scoring gates a retrieval round on the reply, so sampling has
// to be deterministic.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: zeroTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", parseAPIError("generation", err, domain.ErrGeneratorUnavailable)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "error").Inc()
		return "", fmt.Errorf("empty generation response: %w", domain.ErrGeneratorUnavailable)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
