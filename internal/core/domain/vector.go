package domain

import (
	"slices"
	"strings"
)

// Vector is an embedding tagged with the model version that produced it.
// Vectors of different versions are not comparable.
type Vector struct {
	// Values holds the components. The dimension is len(Values).
	Values []float32

	// ModelVersion identifies the embedding function.
	ModelVersion string
}

// Dimensions returns the vector length.
func (v Vector) Dimensions() int {
	return len(v.Values)
}

// IndexEntry is what the index stores for one chunk.
type IndexEntry struct {
	// ChunkID is the join key back to chunk storage.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// Ordinal is the chunk position within its document.
	Ordinal int

	// Vector is the chunk embedding.
	Vector Vector

	// Metadata is a snapshot of the document fields used for filtering.
	Metadata map[string]string
}

// Matches reports whether the entry satisfies every filter. List-valued
// fields (parties, referenced laws) also match a single member.
func (e IndexEntry) Matches(filters map[string]string) bool {
	for k, want := range filters {
		got, ok := e.Metadata[k]
		if !ok {
			return false
		}
		if got == want {
			continue
		}
		if !listFields[k] || !slices.Contains(strings.Split(got, ListSeparator), want) {
			return false
		}
	}
	return true
}

// ListSeparator joins list-valued metadata fields.
const ListSeparator = "; "

var listFields = map[string]bool{MetaParties: true, MetaLaws: true}

// SearchHit is one scored index match.
type SearchHit struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// DocumentID is the owning document.
	DocumentID string

	// Ordinal is the chunk position within its document.
	Ordinal int

	// Score is the cosine similarity with the query.
	Score float64

	// Metadata is the entry's metadata snapshot.
	Metadata map[string]string
}

// IndexStats summarises an index.
type IndexStats struct {
	ModelVersion string `json:"model_version"`
	Dimensions   int    `json:"dimensions"`
	Entries      int    `json:"entries"`
	Documents    int    `json:"documents"`
}
