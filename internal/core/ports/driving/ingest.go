package driving

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// IngestOptions modifies an ingestion run.
type IngestOptions struct {
	// Force re-indexes documents that are already present.
	Force bool
}

// IngestService turns raw documents into index entries.
type IngestService interface {
	// Ingest processes one document and reports its outcome.
	Ingest(ctx context.Context, raw domain.RawDocument, opts IngestOptions) domain.DocumentOutcome

	// IngestAll processes documents concurrently. Per-document failures are
	// recorded in the report; the error is non-nil only when the run itself
	// could not proceed.
	IngestAll(ctx context.Context, raws []domain.RawDocument, opts IngestOptions) (*domain.IngestReport, error)

	// Remove drops every document read from source, including the cases of
	// a bundle file, from the index and the document store. It returns the
	// removed document ids.
	Remove(ctx context.Context, source string) ([]string, error)
}
