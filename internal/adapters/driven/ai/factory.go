// Package ai provides factory functions for creating embedding adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/caselex/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/caselex/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/caselex/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/caselex/internal/adapters/driven/embedding/ratelimit"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateEmbedder creates the embedder named by settings. Provider calls are
// throttled when RequestsPerSecond is positive.
func CreateEmbedder(settings *domain.EmbeddingSettings) (driven.Embedder, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrInvalidConfig)
	}

	var (
		e   driven.Embedder
		err error
	)
	switch settings.Provider {
	case domain.AIProviderHashing:
		e = hashing.New(settings.Model, settings.Dimensions)

	case domain.AIProviderOllama:
		e = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOpenAI:
		e, err = openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Timeout:    settings.Timeout,
			Dimensions: settings.Dimensions,
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", domain.ErrInvalidConfig, settings.Provider)
	}

	return ratelimit.Wrap(e, settings.RequestsPerSecond), nil
}

// CreateAndValidateEmbedder creates an embedder and validates connectivity.
func CreateAndValidateEmbedder(ctx context.Context, settings *domain.EmbeddingSettings) (driven.Embedder, error) {
	e, err := CreateEmbedder(settings)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := e.Ping(ctx); err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: %s unreachable: %w", domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	return e, nil
}
