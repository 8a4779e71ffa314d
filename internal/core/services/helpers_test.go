package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caselex/internal/adapters/driven/embedding/hashing"
	indexmem "github.com/custodia-labs/caselex/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/caselex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/normalisers/legal"
	"github.com/custodia-labs/caselex/internal/postprocessors/chunker"
)

const stubVersion = "stub:v1"

// stubEmbedder returns fixed vectors for known texts and hashing vectors
// for everything else, tagged with its own version.
type stubEmbedder struct {
	version string
	fixed   map[string][]float32
	err     error
	block   bool

	mu      sync.Mutex
	batches []int
}

var fallback = hashing.New("", 256)

func newStub(version string) *stubEmbedder {
	return &stubEmbedder{version: version}
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.Vector, error) {
	s.mu.Lock()
	s.batches = append(s.batches, len(texts))
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, fmt.Errorf("stub: %w: %w", domain.ErrEmbeddingUnavailable, ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("stub: %w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if s.err != nil {
		return nil, s.err
	}

	out := make([]domain.Vector, len(texts))
	for i, t := range texts {
		values, ok := s.fixed[t]
		if !ok {
			v, _ := fallback.Embed(ctx, t)
			values = v.Values
		}
		out[i] = domain.Vector{Values: values, ModelVersion: s.version}
	}
	return out, nil
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return domain.Vector{}, err
	}
	return out[0], nil
}

func (s *stubEmbedder) ModelVersion() string       { return s.version }
func (s *stubEmbedder) Dimensions() int            { return 0 }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

func (s *stubEmbedder) batchSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.batches...)
}

// pipeline wires real adapters around a stub embedder.
type pipeline struct {
	embedder  *stubEmbedder
	index     *indexmem.Index
	docs      *memory.DocumentStore
	ingester  *Ingester
	retriever *Retriever
}

func testIngestSettings() domain.IngestSettings {
	return domain.IngestSettings{Concurrency: 4, DocumentTimeout: 5 * time.Second}
}

func testRetrievalSettings(window int) domain.RetrievalSettings {
	return domain.RetrievalSettings{TopK: 5, ProximityWindow: window, CandidateMultiplier: 3}
}

func newPipeline(t *testing.T, ingest domain.IngestSettings, window int) *pipeline {
	t.Helper()
	p := &pipeline{
		embedder: newStub(stubVersion),
		index:    indexmem.New(stubVersion),
		docs:     memory.NewDocumentStore(),
	}
	ch, err := chunker.New(chunker.WithChunkSize(400), chunker.WithOverlap(50))
	require.NoError(t, err)

	p.ingester, err = NewIngester(legal.New(), ch, p.embedder, p.index, p.docs, ingest, 2)
	require.NoError(t, err)
	p.retriever, err = NewRetriever(p.embedder, p.index, p.docs, testRetrievalSettings(window))
	require.NoError(t, err)
	return p
}

func paragraph(word string, n int) string {
	var b []byte
	for i := 0; len(b) < n; i++ {
		b = fmt.Appendf(b, "%s%d ", word, i)
	}
	return string(b[:n-1]) + "."
}

// threeParagraphs is 898 runes that chunk at 400/50 into (0,300),
// (250,600) and (550,898).
func threeParagraphs() string {
	return paragraph("alpha", 298) + "\n\n" + paragraph("beta", 298) + "\n\n" + paragraph("gamma", 298)
}
