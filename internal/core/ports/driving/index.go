package driving

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// ReindexService rebuilds the index under a new embedding model.
type ReindexService interface {
	// Rebuild re-embeds every stored chunk and swaps the index atomically.
	// On failure the previous index stays in place.
	Rebuild(ctx context.Context) (*domain.RebuildReport, error)
}

// VerifyService checks stored case numbers against document text.
type VerifyService interface {
	// Verify reports documents whose stored case number is missing or
	// disagrees with the number extracted from their text.
	Verify(ctx context.Context) (*domain.VerifyReport, error)

	// Repair runs Verify and rewrites every document whose text yields a
	// case number: the stored number, the document id, its chunk ids and
	// its index entries all follow the extracted number. Issues without an
	// extractable number are only reported.
	Repair(ctx context.Context) (*domain.VerifyReport, error)
}

// CatalogService answers read-only questions about stored cases.
type CatalogService interface {
	// Stats summarises the index.
	Stats(ctx context.Context) domain.IndexStats

	// Document returns a stored case by id, or domain.ErrNotFound.
	Document(ctx context.Context, id string) (*domain.Document, error)

	// Documents lists every stored case ordered by id.
	Documents(ctx context.Context) ([]domain.Document, error)
}
