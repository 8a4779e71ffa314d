package services

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
)

// Ensure Catalog implements the interface.
var _ driving.CatalogService = (*Catalog)(nil)

// Catalog exposes stored cases and index statistics.
type Catalog struct {
	docs  driven.DocumentStore
	index driven.VectorIndex
}

// NewCatalog creates a catalog.
func NewCatalog(docs driven.DocumentStore, index driven.VectorIndex) *Catalog {
	return &Catalog{docs: docs, index: index}
}

// Stats summarises the index.
func (c *Catalog) Stats(context.Context) domain.IndexStats {
	return c.index.Stats()
}

// Document returns a stored case.
func (c *Catalog) Document(ctx context.Context, id string) (*domain.Document, error) {
	return c.docs.GetDocument(ctx, id)
}

// Documents lists every stored case.
func (c *Catalog) Documents(ctx context.Context) ([]domain.Document, error) {
	return c.docs.ListDocuments(ctx)
}
