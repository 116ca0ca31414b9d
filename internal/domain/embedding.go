package domain

import "context"

// Embedder vectorizes text into an embedding vector. Implementations are
// pure functions of their input from the orchestrator's point of view.
type Embedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// HealthChecker is implemented by providers that can verify availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
