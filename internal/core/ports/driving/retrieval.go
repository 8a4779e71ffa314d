package driving

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// RetrievalService serves ranked passages to the chat layer.
type RetrievalService interface {
	// Retrieve embeds the query, searches the index and returns deduplicated
	// passages. It returns an error instead of an empty result on failure.
	Retrieve(ctx context.Context, q domain.Query) (*domain.RetrievalResult, error)
}
