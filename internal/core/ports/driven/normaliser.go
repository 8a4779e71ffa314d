package driven

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// Normaliser transforms raw case text into a canonical Document.
// Implementations are pure: the same input always gives the same output.
type Normaliser interface {
	// Normalise returns domain.ErrMalformedDocument when the input is empty
	// or not text. Missing metadata is never an error.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)
}
