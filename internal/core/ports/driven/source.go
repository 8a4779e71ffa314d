package driven

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// CaseSource discovers raw case documents.
type CaseSource interface {
	// Collect reads every matching file under the source paths. Bundle
	// files yield one RawDocument per contained case.
	Collect(ctx context.Context) ([]domain.RawDocument, error)

	// Read loads the documents of a single file.
	Read(ctx context.Context, path string) ([]domain.RawDocument, error)

	// Watch reports file changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.SourceChange, error)

	// Close releases resources.
	Close() error
}
