package driven

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// Embedder generates vector embeddings for text.
// Failures wrap domain.ErrEmbeddingUnavailable and are never retried internally.
type Embedder interface {
	// Embed generates a vector for a single text.
	Embed(ctx context.Context, text string) (domain.Vector, error)

	// EmbedBatch generates vectors for multiple texts. Output i corresponds
	// to input i; either every input gets a vector or the call fails.
	EmbedBatch(ctx context.Context, texts []string) ([]domain.Vector, error)

	// ModelVersion identifies the embedding function. Every returned vector
	// carries this value.
	ModelVersion() string

	// Dimensions returns the vector size, or zero when not known in advance.
	Dimensions() int

	// Ping validates the provider is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
