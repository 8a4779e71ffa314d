package driven

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// VectorIndex stores index entries and answers filtered similarity queries.
// Writes are serialised; searches run concurrently and never observe a
// partially applied write.
type VectorIndex interface {
	// Upsert inserts or replaces entries by chunk id. The whole batch fails
	// with domain.ErrVersionMismatch if any vector disagrees with the index's
	// model version or dimension.
	Upsert(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns up to topK entries matching all filters, by descending
	// cosine similarity, ties broken by chunk id ascending.
	Search(ctx context.Context, query domain.Vector, topK int, filters map[string]string) ([]domain.SearchHit, error)

	// Delete removes entries. Absent ids are ignored.
	Delete(ctx context.Context, chunkIDs []string) error

	// Rebuild atomically replaces the whole index with entries built for
	// modelVersion.
	Rebuild(ctx context.Context, modelVersion string, entries []domain.IndexEntry) error

	// ChunkIDs lists the chunk ids indexed for a document, in ordinal order.
	ChunkIDs(ctx context.Context, documentID string) ([]string, error)

	// Entries returns a copy of every entry, ordered by chunk id.
	Entries(ctx context.Context) ([]domain.IndexEntry, error)

	// ModelVersion returns the version the index accepts.
	ModelVersion() string

	// Stats summarises the current contents.
	Stats() domain.IndexStats

	// Close releases resources. Further calls fail with domain.ErrIndexUnavailable.
	Close() error
}

// IndexState is the persisted form of an index.
type IndexState struct {
	ModelVersion string
	Dimensions   int
	Entries      []domain.IndexEntry
}

// IndexStore is the durable backing of a VectorIndex.
// Every method applies atomically.
type IndexStore interface {
	// Load reads the complete persisted state.
	Load(ctx context.Context) (*IndexState, error)

	// SetVersion records the model version and dimension.
	SetVersion(ctx context.Context, modelVersion string, dimensions int) error

	// UpsertEntries inserts or replaces entries.
	UpsertEntries(ctx context.Context, entries []domain.IndexEntry) error

	// DeleteEntries removes entries by chunk id.
	DeleteEntries(ctx context.Context, chunkIDs []string) error

	// ReplaceAll swaps the whole persisted state in one transaction.
	ReplaceAll(ctx context.Context, state *IndexState) error
}
