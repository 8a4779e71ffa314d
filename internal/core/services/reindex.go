package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
	"github.com/custodia-labs/caselex/internal/logger"
)

// Ensure Reindexer implements the interface.
var _ driving.ReindexService = (*Reindexer)(nil)

// Reindexer re-embeds stored chunks with the current embedder and swaps the
// index to its model version.
type Reindexer struct {
	embedder  driven.Embedder
	index     driven.VectorIndex
	docs      driven.DocumentStore
	batchSize int
	log       logger.Logger
}

// NewReindexer creates a reindexer.
func NewReindexer(embedder driven.Embedder, index driven.VectorIndex, docs driven.DocumentStore, batchSize int) (*Reindexer, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("reindexer: %w: batch size must be positive", domain.ErrInvalidConfig)
	}
	return &Reindexer{
		embedder:  embedder,
		index:     index,
		docs:      docs,
		batchSize: batchSize,
		log:       logger.For("rebuild"),
	}, nil
}

// Rebuild builds the complete replacement before touching the index, so a
// failed re-embed leaves the current index serving.
func (r *Reindexer) Rebuild(ctx context.Context) (*domain.RebuildReport, error) {
	start := time.Now()
	report := &domain.RebuildReport{
		PreviousVersion: r.index.ModelVersion(),
		ModelVersion:    r.embedder.ModelVersion(),
	}

	docs, err := r.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var entries []domain.IndexEntry
	for i := range docs {
		doc := &docs[i]
		chunks, err := r.docs.GetChunks(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("chunks of %s: %w", doc.ID, err)
		}
		if len(chunks) == 0 {
			continue
		}
		vectors, err := embedChunks(ctx, r.embedder, r.batchSize, chunks)
		if err != nil {
			return nil, fmt.Errorf("re-embed %s: %w", doc.ID, err)
		}
		entries = append(entries, buildEntries(doc, chunks, vectors)...)
		r.log.Debug("re-embedded %s (%d chunks)", doc.ID, len(chunks))
	}

	if err := r.index.Rebuild(ctx, report.ModelVersion, entries); err != nil {
		return nil, fmt.Errorf("swap index: %w", err)
	}

	report.Entries = len(entries)
	report.Duration = time.Since(start)
	r.log.Info("rebuilt %d entries from %d documents under %s", report.Entries, len(docs), report.ModelVersion)
	return report, nil
}
