package driven

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// DocumentStore persists normalised documents and their chunk text.
// Chunk ids are the join key from index entries back to text.
type DocumentStore interface {
	// SaveDocument stores a document together with its chunks, replacing
	// any previous chunks of the same document.
	SaveDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, in ordinal order.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns every stored document ordered by ID.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}
