package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

var log = logger.For("index")

// errClosed is returned by every operation after Close.
var errClosed = fmt.Errorf("index closed: %w", domain.ErrIndexUnavailable)

// Index is an exact cosine-similarity index.
type Index struct {
	mu     sync.Mutex // serialises writers
	snap   atomic.Pointer[snapshot]
	closed atomic.Bool
	store  driven.IndexStore
}

// Option configures an Index.
type Option func(*Index)

// WithStore persists every write to store before publishing it.
func WithStore(store driven.IndexStore) Option {
	return func(i *Index) {
		i.store = store
	}
}

// New creates an empty index accepting modelVersion. The dimension is
// adopted from the first upsert.
func New(modelVersion string, opts ...Option) *Index {
	idx := &Index{}
	for _, opt := range opts {
		opt(idx)
	}
	idx.snap.Store(newSnapshot(modelVersion, 0, nil))
	return idx
}

// Open creates an index hydrated from store. When the store has never
// recorded a version, modelVersion is used and recorded.
func Open(ctx context.Context, store driven.IndexStore, modelVersion string) (*Index, error) {
	state, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index: %w: %w", domain.ErrIndexUnavailable, err)
	}

	idx := &Index{store: store}
	if state.ModelVersion == "" {
		if err := store.SetVersion(ctx, modelVersion, state.Dimensions); err != nil {
			return nil, fmt.Errorf("record index version: %w: %w", domain.ErrIndexUnavailable, err)
		}
		state.ModelVersion = modelVersion
	}
	idx.snap.Store(newSnapshot(state.ModelVersion, state.Dimensions, state.Entries))
	log.Debug("opened index %s with %d entries", state.ModelVersion, len(state.Entries))
	return idx, nil
}

// Upsert inserts or replaces entries. The batch is applied completely or
// not at all.
func (i *Index) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return i.check()
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.check(); err != nil {
		return err
	}

	cur := i.snap.Load()
	dims, err := validate(cur.version, cur.dimensions, entries)
	if err != nil {
		return err
	}

	owned := make([]domain.IndexEntry, len(entries))
	for n, e := range entries {
		owned[n] = own(e)
	}

	if i.store != nil {
		if dims != cur.dimensions {
			if err := i.store.SetVersion(ctx, cur.version, dims); err != nil {
				return unavailable("upsert", err)
			}
		}
		if err := i.store.UpsertEntries(ctx, owned); err != nil {
			return unavailable("upsert", err)
		}
	}

	i.snap.Store(cur.with(dims, owned, nil))
	return nil
}

// Search scans every entry that passes the filters.
func (i *Index) Search(ctx context.Context, query domain.Vector, topK int, filters map[string]string) ([]domain.SearchHit, error) {
	if err := i.check(); err != nil {
		return nil, err
	}
	cur := i.snap.Load()
	if query.ModelVersion != cur.version {
		return nil, fmt.Errorf("query vector %q, index %q: %w", query.ModelVersion, cur.version, domain.ErrVersionMismatch)
	}
	if cur.dimensions != 0 && query.Dimensions() != cur.dimensions {
		return nil, fmt.Errorf("query dimension %d, index %d: %w", query.Dimensions(), cur.dimensions, domain.ErrVersionMismatch)
	}
	if topK <= 0 || len(cur.entries) == 0 {
		return nil, nil
	}

	qn := norm(query.Values)
	hits := make([]domain.SearchHit, 0, min(topK, len(cur.entries)))
	for n, e := range cur.entries {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !e.Matches(filters) {
			continue
		}
		hits = append(hits, domain.SearchHit{
			ChunkID:    e.ChunkID,
			DocumentID: e.DocumentID,
			Ordinal:    e.Ordinal,
			Score:      cosine(e.Vector.Values, cur.norms[n], query.Values, qn),
			Metadata:   e.Metadata,
		})
	}

	slices.SortFunc(hits, func(a, b domain.SearchHit) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ChunkID, b.ChunkID)
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	for n := range hits {
		hits[n].Metadata = maps.Clone(hits[n].Metadata)
	}
	return hits, nil
}

// Delete removes entries by chunk id.
func (i *Index) Delete(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return i.check()
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.check(); err != nil {
		return err
	}

	cur := i.snap.Load()
	present := slices.DeleteFunc(slices.Clone(chunkIDs), func(id string) bool {
		_, ok := cur.byID[id]
		return !ok
	})
	if len(present) == 0 {
		return nil
	}

	if i.store != nil {
		if err := i.store.DeleteEntries(ctx, present); err != nil {
			return unavailable("delete", err)
		}
	}

	i.snap.Store(cur.with(cur.dimensions, nil, present))
	return nil
}

// Rebuild replaces the whole index. Readers that loaded the old snapshot
// finish against it; later readers see only the new one.
func (i *Index) Rebuild(ctx context.Context, modelVersion string, entries []domain.IndexEntry) error {
	if modelVersion == "" {
		return fmt.Errorf("rebuild: empty model version: %w", domain.ErrInvalidInput)
	}
	dims, err := validate(modelVersion, 0, entries)
	if err != nil {
		return err
	}
	owned := make([]domain.IndexEntry, len(entries))
	for n, e := range entries {
		owned[n] = own(e)
	}
	next := newSnapshot(modelVersion, dims, owned)
	if len(next.byID) != len(owned) {
		return fmt.Errorf("rebuild: duplicate chunk ids: %w", domain.ErrInvalidInput)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.check(); err != nil {
		return err
	}

	if i.store != nil {
		state := &driven.IndexState{ModelVersion: modelVersion, Dimensions: dims, Entries: owned}
		if err := i.store.ReplaceAll(ctx, state); err != nil {
			return unavailable("rebuild", err)
		}
	}

	prev := i.snap.Swap(next)
	log.Info("rebuilt index: %s (%d entries) -> %s (%d entries)",
		prev.version, len(prev.entries), modelVersion, len(owned))
	return nil
}

// ChunkIDs lists the chunks of a document in ordinal order.
func (i *Index) ChunkIDs(_ context.Context, documentID string) ([]string, error) {
	if err := i.check(); err != nil {
		return nil, err
	}
	cur := i.snap.Load()
	var owned []domain.IndexEntry
	for _, e := range cur.entries {
		if e.DocumentID == documentID {
			owned = append(owned, e)
		}
	}
	slices.SortFunc(owned, func(a, b domain.IndexEntry) int {
		return cmp.Compare(a.Ordinal, b.Ordinal)
	})
	ids := make([]string, len(owned))
	for n, e := range owned {
		ids[n] = e.ChunkID
	}
	return ids, nil
}

// Entries returns a copy of every entry ordered by chunk id.
func (i *Index) Entries(_ context.Context) ([]domain.IndexEntry, error) {
	if err := i.check(); err != nil {
		return nil, err
	}
	cur := i.snap.Load()
	out := make([]domain.IndexEntry, len(cur.entries))
	for n, e := range cur.entries {
		out[n] = own(e)
	}
	return out, nil
}

// ModelVersion returns the version the index accepts.
func (i *Index) ModelVersion() string {
	return i.snap.Load().version
}

// Stats summarises the current snapshot.
func (i *Index) Stats() domain.IndexStats {
	cur := i.snap.Load()
	return domain.IndexStats{
		ModelVersion: cur.version,
		Dimensions:   cur.dimensions,
		Entries:      len(cur.entries),
		Documents:    cur.documents(),
	}
}

// Close marks the index unusable. The store is owned by the caller.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed.Store(true)
	return nil
}

func (i *Index) check() error {
	if i.closed.Load() {
		return errClosed
	}
	return nil
}

// validate checks a batch against version and dimensions and returns the
// dimension the index has after the batch. A zero dims adopts the first
// entry's dimension.
func validate(version string, dims int, entries []domain.IndexEntry) (int, error) {
	for _, e := range entries {
		if e.ChunkID == "" {
			return dims, fmt.Errorf("entry without chunk id: %w", domain.ErrInvalidInput)
		}
		if len(e.Vector.Values) == 0 {
			return dims, fmt.Errorf("entry %s has an empty vector: %w", e.ChunkID, domain.ErrInvalidInput)
		}
		if e.Vector.ModelVersion != version {
			return dims, fmt.Errorf("entry %s has version %q, index %q: %w",
				e.ChunkID, e.Vector.ModelVersion, version, domain.ErrVersionMismatch)
		}
		if dims == 0 {
			dims = len(e.Vector.Values)
		}
		if len(e.Vector.Values) != dims {
			return dims, fmt.Errorf("entry %s has dimension %d, index %d: %w",
				e.ChunkID, len(e.Vector.Values), dims, domain.ErrVersionMismatch)
		}
	}
	return dims, nil
}

// own copies the mutable parts of an entry so callers cannot reach into a
// published snapshot.
func own(e domain.IndexEntry) domain.IndexEntry {
	e.Vector.Values = slices.Clone(e.Vector.Values)
	e.Metadata = maps.Clone(e.Metadata)
	return e
}

func unavailable(op string, err error) error {
	if errors.Is(err, domain.ErrIndexUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrIndexUnavailable, err)
}
