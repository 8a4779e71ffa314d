package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	indexmem "github.com/custodia-labs/caselex/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/caselex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caselex/internal/core/domain"
)

// seeded builds a retriever over hand-placed vectors. The query "q" embeds
// to (1, 0).
func seeded(t *testing.T, window int, entries ...domain.IndexEntry) (*Retriever, *stubEmbedder, *indexmem.Index) {
	t.Helper()
	ctx := context.Background()
	embedder := newStub(stubVersion)
	embedder.fixed = map[string][]float32{"q": {1, 0}}
	index := indexmem.New(stubVersion)
	docs := memory.NewDocumentStore()

	byDoc := map[string][]domain.Chunk{}
	for _, e := range entries {
		byDoc[e.DocumentID] = append(byDoc[e.DocumentID], domain.Chunk{
			ID: e.ChunkID, DocumentID: e.DocumentID, Ordinal: e.Ordinal, Text: "text of " + e.ChunkID,
		})
	}
	for id, chunks := range byDoc {
		require.NoError(t, docs.SaveDocument(ctx, &domain.Document{ID: id}, chunks))
	}
	require.NoError(t, index.Upsert(ctx, entries))

	r, err := NewRetriever(embedder, index, docs, testRetrievalSettings(window))
	require.NoError(t, err)
	return r, embedder, index
}

func hit(doc string, ordinal int, x, y float32) domain.IndexEntry {
	return domain.IndexEntry{
		ChunkID:    domain.ChunkID(doc, ordinal),
		DocumentID: doc,
		Ordinal:    ordinal,
		Vector:     domain.Vector{Values: []float32{x, y}, ModelVersion: stubVersion},
		Metadata:   map[string]string{domain.MetaCourt: doc},
	}
}

func ids(result *domain.RetrievalResult) []string {
	out := make([]string, 0, result.Len())
	for _, p := range result.Passages {
		out = append(out, p.ChunkID)
	}
	return out
}

func TestNewRetriever_InvalidSettings(t *testing.T) {
	_, err := NewRetriever(newStub(stubVersion), indexmem.New(stubVersion), memory.NewDocumentStore(),
		domain.RetrievalSettings{TopK: 5, ProximityWindow: -1, CandidateMultiplier: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestRetrieve_RejectsOversizedTopK(t *testing.T) {
	r, _, _ := seeded(t, 0, hit("a", 0, 1, 0))

	for _, k := range []int{domain.MaxTopK + 1, math.MaxInt/3 + 1, math.MaxInt} {
		result, err := r.Retrieve(context.Background(), domain.Query{Text: "q", TopK: k})

		assert.ErrorIs(t, err, domain.ErrInvalidInput, "top_k %d", k)
		assert.Nil(t, result)
	}
}

func TestRetrieve_MaxTopKAccepted(t *testing.T) {
	r, _, _ := seeded(t, 0, hit("a", 0, 1, 0), hit("b", 0, 0, 1))

	result, err := r.Retrieve(context.Background(), domain.Query{Text: "q", TopK: domain.MaxTopK})

	require.NoError(t, err)
	assert.Equal(t, []string{"a#00000", "b#00000"}, ids(result))
}

func TestRetrieve_DeduplicatesNeighbours(t *testing.T) {
	r, _, _ := seeded(t, 1,
		hit("a", 0, 1, 0),
		hit("a", 1, 0.9, 0.1),
		hit("b", 0, 0.8, 0.2),
		hit("a", 2, 0, 1),
	)

	result, err := r.Retrieve(context.Background(), domain.Query{Text: "q", TopK: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"a#00000", "b#00000"}, ids(result))
	assert.Equal(t, "text of a#00000", result.Passages[0].Text)
	assert.InDelta(t, 1.0, result.Passages[0].Score, 1e-6)
	assert.Equal(t, stubVersion, result.ModelVersion)
}

func TestRetrieve_WindowZeroKeepsNeighbours(t *testing.T) {
	r, _, _ := seeded(t, 0,
		hit("a", 0, 1, 0),
		hit("a", 1, 0.9, 0.1),
		hit("b", 0, 0.8, 0.2),
	)

	result, err := r.Retrieve(context.Background(), domain.Query{Text: "q", TopK: 2})

	require.NoError(t, err)
	assert.Equal(t, []string{"a#00000", "a#00001"}, ids(result))
}

func TestRetrieve_DefaultTopKAndFilters(t *testing.T) {
	var entries []domain.IndexEntry
	for o := 0; o < 8; o++ {
		entries = append(entries, hit("a", o*3, 1, float32(o)), hit("b", o*3, 1, float32(o)))
	}
	r, _, _ := seeded(t, 1, entries...)

	result, err := r.Retrieve(context.Background(), domain.Query{Text: "q"})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Len())

	result, err = r.Retrieve(context.Background(), domain.Query{Text: "q", TopK: 10, Filters: map[string]string{domain.MetaCourt: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 8, result.Len())
	for _, p := range result.Passages {
		assert.Equal(t, "b", p.DocumentID)
	}
}

func TestRetrieve_MissingChunkSkipped(t *testing.T) {
	r, _, index := seeded(t, 0, hit("a", 0, 1, 0))
	orphan := hit("ghost", 0, 1, 0)
	require.NoError(t, index.Upsert(context.Background(), []domain.IndexEntry{orphan}))

	result, err := r.Retrieve(context.Background(), domain.Query{Text: "q"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a#00000"}, ids(result))
}

func TestRetrieve_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		r, _, _ := seeded(t, 1, hit("a", 0, 1, 0))
		_, err := r.Retrieve(ctx, domain.Query{Text: "  "})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("version mismatch", func(t *testing.T) {
		r, embedder, _ := seeded(t, 1, hit("a", 0, 1, 0))
		embedder.version = "stub:v2"
		result, err := r.Retrieve(ctx, domain.Query{Text: "q"})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrVersionMismatch)
		assert.Empty(t, embedder.batchSizes())
	})

	t.Run("embedding unavailable", func(t *testing.T) {
		r, embedder, _ := seeded(t, 1, hit("a", 0, 1, 0))
		embedder.err = errors.New("503")
		_, err := r.Retrieve(ctx, domain.Query{Text: "q"})
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})

	t.Run("index unavailable", func(t *testing.T) {
		r, _, index := seeded(t, 1, hit("a", 0, 1, 0))
		require.NoError(t, index.Close())
		result, err := r.Retrieve(ctx, domain.Query{Text: "q"})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})
}

func TestDeduplicate(t *testing.T) {
	h := func(doc string, ordinal int) domain.SearchHit {
		return domain.SearchHit{DocumentID: doc, Ordinal: ordinal}
	}
	tests := []struct {
		name   string
		window int
		in     []domain.SearchHit
		want   []domain.SearchHit
	}{
		{"disabled", 0, []domain.SearchHit{h("a", 0), h("a", 1)}, []domain.SearchHit{h("a", 0), h("a", 1)}},
		{"adjacent dropped", 1, []domain.SearchHit{h("a", 3), h("a", 2), h("a", 4)}, []domain.SearchHit{h("a", 3)}},
		{"outside window kept", 1, []domain.SearchHit{h("a", 0), h("a", 2)}, []domain.SearchHit{h("a", 0), h("a", 2)}},
		{"wider window", 2, []domain.SearchHit{h("a", 0), h("a", 2), h("a", 3)}, []domain.SearchHit{h("a", 0), h("a", 3)}},
		{"other documents untouched", 1, []domain.SearchHit{h("a", 0), h("b", 1), h("a", 1)}, []domain.SearchHit{h("a", 0), h("b", 1)}},
		{"empty", 1, nil, []domain.SearchHit{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Deduplicate(tt.in, tt.window))
		})
	}
}
