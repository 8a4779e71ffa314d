package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
	"github.com/custodia-labs/caselex/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever answers queries from the vector index.
type Retriever struct {
	embedder driven.Embedder
	index    driven.VectorIndex
	docs     driven.DocumentStore
	settings domain.RetrievalSettings
	log      logger.Logger
}

// NewRetriever creates a retriever. The settings are validated here so a
// bad proximity window fails at startup rather than on the first query.
func NewRetriever(
	embedder driven.Embedder,
	index driven.VectorIndex,
	docs driven.DocumentStore,
	settings domain.RetrievalSettings,
) (*Retriever, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("retriever: %w", err)
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		docs:     docs,
		settings: settings,
		log:      logger.For("retrieve"),
	}, nil
}

// Retrieve embeds the query, over-fetches candidates, collapses neighbouring
// chunks of the same document and hydrates the survivors with their text.
func (r *Retriever) Retrieve(ctx context.Context, q domain.Query) (*domain.RetrievalResult, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	topK := q.TopK
	if topK <= 0 {
		topK = r.settings.TopK
	}
	if topK > domain.MaxTopK {
		return nil, fmt.Errorf("top_k %d exceeds %d: %w", topK, domain.MaxTopK, domain.ErrInvalidInput)
	}

	version := r.embedder.ModelVersion()
	if indexed := r.index.ModelVersion(); indexed != version {
		return nil, fmt.Errorf("embedder %q cannot query index built with %q (run rebuild): %w",
			version, indexed, domain.ErrVersionMismatch)
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates := topK * r.settings.CandidateMultiplier
	hits, err := r.index.Search(ctx, vec, candidates, q.Filters)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	r.log.Debug("%d candidates for %q (asked %d)", len(hits), text, candidates)

	hits = Deduplicate(hits, r.settings.ProximityWindow)
	if len(hits) > topK {
		hits = hits[:topK]
	}

	result := &domain.RetrievalResult{
		Passages:     make([]domain.RetrievedPassage, 0, len(hits)),
		ModelVersion: version,
	}
	for _, h := range hits {
		chunk, err := r.docs.GetChunk(ctx, h.ChunkID)
		if errors.Is(err, domain.ErrNotFound) {
			r.log.Warn("indexed chunk %s has no stored text, skipping", h.ChunkID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("hydrate %s: %w", h.ChunkID, err)
		}
		result.Passages = append(result.Passages, domain.RetrievedPassage{
			ChunkID:    h.ChunkID,
			DocumentID: h.DocumentID,
			Ordinal:    h.Ordinal,
			Score:      h.Score,
			Text:       chunk.Text,
			Metadata:   h.Metadata,
		})
	}
	return result, nil
}

// Deduplicate walks hits in rank order and drops a hit when an already kept
// hit of the same document lies within window ordinals of it. A window of
// zero returns hits unchanged.
func Deduplicate(hits []domain.SearchHit, window int) []domain.SearchHit {
	if window <= 0 {
		return hits
	}
	kept := make([]domain.SearchHit, 0, len(hits))
	ordinals := make(map[string][]int)
	for _, h := range hits {
		near := false
		for _, o := range ordinals[h.DocumentID] {
			if abs(o-h.Ordinal) <= window {
				near = true
				break
			}
		}
		if near {
			continue
		}
		ordinals[h.DocumentID] = append(ordinals[h.DocumentID], h.Ordinal)
		kept = append(kept, h)
	}
	return kept
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
