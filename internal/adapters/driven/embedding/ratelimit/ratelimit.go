// Package ratelimit wraps an embedder with a request rate limit.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/caselex/internal/adapters/driven/embedding"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

var _ driven.Embedder = (*Embedder)(nil)

// Embedder delays each provider call until the limiter admits it.
type Embedder struct {
	next    driven.Embedder
	limiter *rate.Limiter
}

// Wrap limits next to rps calls per second. A non-positive rps returns
// next unchanged.
func Wrap(next driven.Embedder, rps float64) driven.Embedder {
	if rps <= 0 {
		return next
	}
	return &Embedder{next: next, limiter: rate.NewLimiter(rate.Limit(rps), 1)}
}

func (e *Embedder) wait(ctx context.Context) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return embedding.Unavailable("ratelimit", "wait", err)
	}
	return nil
}

// Embed waits for a token, then embeds one text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	if err := e.wait(ctx); err != nil {
		return domain.Vector{}, err
	}
	return e.next.Embed(ctx, text)
}

// EmbedBatch waits for a single token per batch, then embeds every text.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.Vector, error) {
	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	return e.next.EmbedBatch(ctx, texts)
}

// ModelVersion returns the wrapped embedder's version.
func (e *Embedder) ModelVersion() string { return e.next.ModelVersion() }

// Dimensions returns the wrapped embedder's vector size.
func (e *Embedder) Dimensions() int { return e.next.Dimensions() }

// Ping checks the wrapped embedder. It is not rate limited.
func (e *Embedder) Ping(ctx context.Context) error { return e.next.Ping(ctx) }

// Close closes the wrapped embedder.
func (e *Embedder) Close() error { return e.next.Close() }
