package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

// embedChunks embeds chunk texts in batches of batchSize. The result is
// index-aligned with chunks.
func embedChunks(ctx context.Context, embedder driven.Embedder, batchSize int, chunks []domain.Chunk) ([]domain.Vector, error) {
	vectors := make([]domain.Vector, 0, len(chunks))
	for batch := range slices.Chunk(chunks, batchSize) {
		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		out, err := embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
				err = fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
			}
			return nil, err
		}
		if len(out) != len(texts) {
			return nil, fmt.Errorf("%w: %d vectors for %d texts", domain.ErrEmbeddingUnavailable, len(out), len(texts))
		}
		vectors = append(vectors, out...)
	}
	return vectors, nil
}

// buildEntries pairs chunks with their vectors. Each entry carries a
// snapshot of the document metadata plus the chunk's source span.
func buildEntries(doc *domain.Document, chunks []domain.Chunk, vectors []domain.Vector) []domain.IndexEntry {
	fields := doc.Metadata.Fields()
	fields[domain.MetaSourceID] = doc.SourceID

	entries := make([]domain.IndexEntry, len(chunks))
	for i, c := range chunks {
		meta := make(map[string]string, len(fields)+2)
		for k, v := range fields {
			meta[k] = v
		}
		meta[domain.MetaStart] = strconv.Itoa(c.Start)
		meta[domain.MetaEnd] = strconv.Itoa(c.End)
		entries[i] = domain.IndexEntry{
			ChunkID:    c.ID,
			DocumentID: doc.ID,
			Ordinal:    c.Ordinal,
			Vector:     vectors[i],
			Metadata:   meta,
		}
	}
	return entries
}
