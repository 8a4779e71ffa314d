package memory

import (
	"cmp"
	"math"
	"slices"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// snapshot is never modified after publication.
type snapshot struct {
	version    string
	dimensions int
	entries    []domain.IndexEntry // ordered by chunk id
	norms      []float64
	byID       map[string]int
}

func newSnapshot(version string, dimensions int, entries []domain.IndexEntry) *snapshot {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b domain.IndexEntry) int {
		return cmp.Compare(a.ChunkID, b.ChunkID)
	})
	s := &snapshot{
		version:    version,
		dimensions: dimensions,
		entries:    sorted,
		norms:      make([]float64, len(sorted)),
		byID:       make(map[string]int, len(sorted)),
	}
	for i, e := range sorted {
		s.norms[i] = norm(e.Vector.Values)
		s.byID[e.ChunkID] = i
	}
	return s
}

// with returns a copy of s with upserts applied and removed ids dropped.
func (s *snapshot) with(dimensions int, upserts []domain.IndexEntry, removed []string) *snapshot {
	merged := make(map[string]domain.IndexEntry, len(s.entries)+len(upserts))
	for _, e := range s.entries {
		merged[e.ChunkID] = e
	}
	for _, id := range removed {
		delete(merged, id)
	}
	for _, e := range upserts {
		merged[e.ChunkID] = e
	}
	entries := make([]domain.IndexEntry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	return newSnapshot(s.version, dimensions, entries)
}

func (s *snapshot) documents() int {
	seen := make(map[string]struct{})
	for _, e := range s.entries {
		seen[e.DocumentID] = struct{}{}
	}
	return len(seen)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns zero when either side has no magnitude. The result is
// always within [-1, 1] and is exactly 1 for identical vectors.
func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	if slices.Equal(a, b) {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return max(-1, min(1, dot/(an*bn)))
}
