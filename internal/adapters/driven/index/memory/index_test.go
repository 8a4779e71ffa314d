package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

const v1 = "test:v1"

func entry(id, doc string, ordinal int, version string, values ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		ChunkID:    id,
		DocumentID: doc,
		Ordinal:    ordinal,
		Vector:     domain.Vector{Values: values, ModelVersion: version},
		Metadata:   map[string]string{},
	}
}

func query(values ...float32) domain.Vector {
	return domain.Vector{Values: values, ModelVersion: v1}
}

// mockStore is an in-memory driven.IndexStore that can be told to fail.
type mockStore struct {
	mu    sync.Mutex
	state driven.IndexState
	fail  error
	calls []string
}

func (m *mockStore) Load(context.Context) (*driven.IndexState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	s := m.state
	return &s, nil
}

func (m *mockStore) SetVersion(_ context.Context, version string, dims int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "set_version")
	if m.fail != nil {
		return m.fail
	}
	m.state.ModelVersion, m.state.Dimensions = version, dims
	return nil
}

func (m *mockStore) UpsertEntries(_ context.Context, entries []domain.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "upsert")
	if m.fail != nil {
		return m.fail
	}
	m.state.Entries = append(m.state.Entries, entries...)
	return nil
}

func (m *mockStore) DeleteEntries(context.Context, []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete")
	return m.fail
}

func (m *mockStore) ReplaceAll(_ context.Context, state *driven.IndexState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "replace")
	if m.fail != nil {
		return m.fail
	}
	m.state = *state
	return nil
}

func TestUpsert_SelfRetrieval(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
		entry("a#00000", "a", 0, v1, 1, 0, 0),
		entry("a#00001", "a", 1, v1, 0, 1, 0),
		entry("b#00000", "b", 0, v1, 0.6, 0.8, 0),
	}))

	hits, err := idx.Search(ctx, query(0, 1, 0), 1, nil)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a#00001", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestSearch_SelfScoreIsExactlyOne(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	own := []float32{0.1, 0.2, 0.3, 0.7, 0.013}
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
		entry("a#00000", "a", 0, v1, own...),
		entry("b#00000", "b", 0, v1, 0.3, 0.1, 0.2, 0, 0.5),
	}))

	hits, err := idx.Search(ctx, query(own...), 2, nil)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a#00000", hits[0].ChunkID)
	assert.Equal(t, 1.0, hits[0].Score)
	assert.Less(t, hits[1].Score, 1.0)
}

func TestCosine_StaysInRange(t *testing.T) {
	vectors := [][]float32{
		{0.1, 0.2, 0.3},
		{0.2, 0.4, 0.6},
		{-0.1, -0.2, -0.3},
		{1e-20, 3e-20, 1e-20},
		{3.4e38, 3.4e38, 1},
	}
	for _, a := range vectors {
		for _, b := range vectors {
			score := cosine(a, norm(a), b, norm(b))
			assert.GreaterOrEqual(t, score, -1.0, "%v vs %v", a, b)
			assert.LessOrEqual(t, score, 1.0, "%v vs %v", a, b)
		}
	}
	assert.Equal(t, 0.0, cosine([]float32{0, 0}, 0, []float32{1, 0}, 1))
}

func TestUpsert_AdoptsDimensionThenEnforces(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)

	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 2)}))
	assert.Equal(t, 2, idx.Stats().Dimensions)

	err := idx.Upsert(ctx, []domain.IndexEntry{entry("b", "d", 1, v1, 1, 2, 3)})
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)
	assert.Equal(t, 1, idx.Stats().Entries)
}

func TestUpsert_VersionMismatchRejectsWholeBatch(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)}))

	err := idx.Upsert(ctx, []domain.IndexEntry{
		entry("b", "d", 1, v1, 0, 1),
		entry("c", "d", 2, "test:v2", 0, 1),
	})

	assert.ErrorIs(t, err, domain.ErrVersionMismatch)
	assert.Equal(t, 1, idx.Stats().Entries)
}

func TestUpsert_InvalidEntries(t *testing.T) {
	idx := New(v1)

	assert.ErrorIs(t, idx.Upsert(context.Background(), []domain.IndexEntry{entry("", "d", 0, v1, 1)}), domain.ErrInvalidInput)
	assert.ErrorIs(t, idx.Upsert(context.Background(), []domain.IndexEntry{entry("a", "d", 0, v1)}), domain.ErrInvalidInput)
}

func TestUpsert_ReplacesByChunkID(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)}))
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 0, 1)}))

	hits, err := idx.Search(ctx, query(0, 1), 5, nil)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestUpsert_CallerCannotMutateSnapshot(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	e := entry("a", "d", 0, v1, 1, 0)
	e.Metadata["court"] = "A"
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{e}))

	e.Vector.Values[0] = 0
	e.Metadata["court"] = "B"

	hits, err := idx.Search(ctx, query(1, 0), 1, map[string]string{"court": "A"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestSearch_Filters(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	var entries []domain.IndexEntry
	for n := 0; n < 10; n++ {
		e := entry(fmt.Sprintf("d%d#00000", n), fmt.Sprintf("d%d", n), 0, v1, 1, float32(n))
		e.Metadata[domain.MetaCourt] = map[bool]string{true: "A", false: "B"}[n%2 == 0]
		entries = append(entries, e)
	}
	require.NoError(t, idx.Upsert(ctx, entries))

	hits, err := idx.Search(ctx, query(1, 0), 10, map[string]string{domain.MetaCourt: "B"})

	require.NoError(t, err)
	assert.Len(t, hits, 5)
	for _, h := range hits {
		assert.Equal(t, "B", h.Metadata[domain.MetaCourt])
	}

	hits, err = idx.Search(ctx, query(1, 0), 10, map[string]string{domain.MetaCourt: "C"})
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.Search(ctx, query(1, 0), 10, map[string]string{"missing": ""})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_OrderAndTies(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
		entry("c", "d", 2, v1, 1, 0),
		entry("a", "d", 0, v1, 1, 0),
		entry("b", "d", 1, v1, 0, 1),
		entry("z", "d", 3, v1, 1, 1),
	}))

	hits, err := idx.Search(ctx, query(1, 0), 10, nil)

	require.NoError(t, err)
	ids := make([]string, len(hits))
	for n, h := range hits {
		ids[n] = h.ChunkID
	}
	assert.Equal(t, []string{"a", "c", "z", "b"}, ids)
}

func TestSearch_Edges(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)

	hits, err := idx.Search(ctx, query(1, 0), 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits, "empty index")

	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)}))

	hits, err = idx.Search(ctx, query(1, 0), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, hits, "topK zero")

	hits, err = idx.Search(ctx, query(0, 0), 5, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Zero(t, hits[0].Score, "zero query vector")

	_, err = idx.Search(ctx, domain.Vector{Values: []float32{1, 0}, ModelVersion: "test:v2"}, 5, nil)
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)

	_, err = idx.Search(ctx, query(1, 0, 0), 5, nil)
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
		entry("a#00000", "a", 0, v1, 1, 0),
		entry("a#00001", "a", 1, v1, 0, 1),
	}))

	require.NoError(t, idx.Delete(ctx, []string{"a#00000", "missing"}))
	require.NoError(t, idx.Delete(ctx, []string{"missing"}))

	ids, err := idx.ChunkIDs(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a#00001"}, ids)
}

func TestChunkIDs_OrdinalOrder(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{
		entry("x-last", "a", 2, v1, 1),
		entry("a-first", "a", 0, v1, 1),
		entry("m-mid", "a", 1, v1, 1),
		entry("other", "b", 0, v1, 1),
	}))

	ids, err := idx.ChunkIDs(ctx, "a")

	require.NoError(t, err)
	assert.Equal(t, []string{"a-first", "m-mid", "x-last"}, ids)
	assert.Equal(t, domain.IndexStats{ModelVersion: v1, Dimensions: 1, Entries: 4, Documents: 2}, idx.Stats())
}

func TestRebuild_SwapsVersion(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)}))

	require.NoError(t, idx.Rebuild(ctx, "test:v2", []domain.IndexEntry{
		entry("a", "d", 0, "test:v2", 1, 0, 0),
		entry("b", "d", 1, "test:v2", 0, 1, 0),
	}))

	assert.Equal(t, "test:v2", idx.ModelVersion())
	assert.Equal(t, 3, idx.Stats().Dimensions)
	_, err := idx.Search(ctx, query(1, 0), 1, nil)
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)
}

func TestRebuild_RejectsBadBatch(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)}))

	err := idx.Rebuild(ctx, "test:v2", []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)})
	assert.ErrorIs(t, err, domain.ErrVersionMismatch)

	err = idx.Rebuild(ctx, "test:v2", []domain.IndexEntry{
		entry("a", "d", 0, "test:v2", 1), entry("a", "d", 0, "test:v2", 1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.ErrorIs(t, idx.Rebuild(ctx, "", nil), domain.ErrInvalidInput)
	assert.Equal(t, v1, idx.ModelVersion())
	assert.Equal(t, 1, idx.Stats().Entries)
}

// Searches running during a rebuild must see either the old index or the
// new one, never a mixture.
func TestRebuild_AtomicUnderConcurrentSearch(t *testing.T) {
	ctx := context.Background()
	const n = 200
	build := func(version string, value float32) []domain.IndexEntry {
		out := make([]domain.IndexEntry, n)
		for k := range out {
			out[k] = entry(fmt.Sprintf("c%05d", k), "d", k, version, value, 1)
		}
		return out
	}
	idx := New("old")
	require.NoError(t, idx.Upsert(ctx, build("old", 1)))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				version := idx.ModelVersion()
				hits, err := idx.Search(ctx, domain.Vector{Values: []float32{1, 1}, ModelVersion: version}, n, nil)
				if errors.Is(err, domain.ErrVersionMismatch) {
					continue // swapped between the two loads
				}
				if err != nil {
					errs <- err
					return
				}
				if len(hits) != n {
					errs <- fmt.Errorf("saw %d hits", len(hits))
					return
				}
				for _, h := range hits[1:] {
					if h.Score != hits[0].Score {
						errs <- fmt.Errorf("mixed snapshot: %v vs %v", h.Score, hits[0].Score)
						return
					}
				}
			}
		}()
	}

	for round := 0; round < 20; round++ {
		if round%2 == 0 {
			require.NoError(t, idx.Rebuild(ctx, "new", build("new", -1)))
		} else {
			require.NoError(t, idx.Rebuild(ctx, "old", build("old", 1)))
		}
	}
	close(stop)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestStore_WriteThrough(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	idx := New(v1, WithStore(store))

	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)}))
	require.NoError(t, idx.Delete(ctx, []string{"a"}))
	require.NoError(t, idx.Rebuild(ctx, "test:v2", nil))

	assert.Equal(t, []string{"set_version", "upsert", "delete", "replace"}, store.calls)
	assert.Equal(t, "test:v2", store.state.ModelVersion)
}

func TestStore_FailureLeavesIndexUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	idx := New(v1, WithStore(store))
	require.NoError(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)}))

	store.fail = errors.New("disk full")

	err := idx.Upsert(ctx, []domain.IndexEntry{entry("b", "d", 1, v1, 0, 1)})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	err = idx.Delete(ctx, []string{"a"})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	err = idx.Rebuild(ctx, "test:v2", nil)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	assert.Equal(t, domain.IndexStats{ModelVersion: v1, Dimensions: 2, Entries: 1, Documents: 1}, idx.Stats())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("hydrates", func(t *testing.T) {
		store := &mockStore{state: driven.IndexState{
			ModelVersion: v1,
			Dimensions:   2,
			Entries:      []domain.IndexEntry{entry("a", "d", 0, v1, 1, 0)},
		}}

		idx, err := Open(ctx, store, "ignored")

		require.NoError(t, err)
		assert.Equal(t, v1, idx.ModelVersion())
		hits, err := idx.Search(ctx, query(1, 0), 1, nil)
		require.NoError(t, err)
		assert.Len(t, hits, 1)
	})

	t.Run("records version on empty store", func(t *testing.T) {
		store := &mockStore{}

		idx, err := Open(ctx, store, v1)

		require.NoError(t, err)
		assert.Equal(t, v1, idx.ModelVersion())
		assert.Equal(t, v1, store.state.ModelVersion)
	})

	t.Run("load failure", func(t *testing.T) {
		_, err := Open(ctx, &mockStore{fail: errors.New("locked")}, v1)

		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	idx := New(v1)
	require.NoError(t, idx.Close())

	assert.ErrorIs(t, idx.Upsert(ctx, []domain.IndexEntry{entry("a", "d", 0, v1, 1)}), domain.ErrIndexUnavailable)
	_, err := idx.Search(ctx, query(1), 1, nil)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	assert.ErrorIs(t, idx.Delete(ctx, []string{"a"}), domain.ErrIndexUnavailable)
	assert.ErrorIs(t, idx.Rebuild(ctx, v1, nil), domain.ErrIndexUnavailable)
	_, err = idx.Entries(ctx)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
