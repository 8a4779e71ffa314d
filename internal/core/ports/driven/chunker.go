package driven

import (
	"iter"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// Chunker splits a normalised document into overlapping passages.
type Chunker interface {
	// Chunks returns a lazy, restartable sequence. Ranging over it twice
	// yields identical chunks.
	Chunks(doc *domain.Document) iter.Seq[domain.Chunk]

	// MaxSize returns the configured maximum chunk length.
	MaxSize() int

	// Overlap returns the configured overlap length.
	Overlap() int
}
