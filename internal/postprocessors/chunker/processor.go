// Package chunker splits normalised documents into overlapping passages
// along paragraph and sentence boundaries.
package chunker

import (
	"fmt"
	"iter"
	"slices"
	"unicode"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits document text into bounded, overlapping chunks.
// Sizes and offsets are measured in runes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// New creates a chunker. It fails with domain.ErrInvalidConfig unless
// the size is positive and the overlap is between 0 and size/2.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(p)
	}

	cfg := domain.ChunkingSettings{MaxSize: p.chunkSize, Overlap: p.overlap}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("chunker: %w", err)
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxSize returns the maximum chunk length.
func (p *Processor) MaxSize() int { return p.chunkSize }

// Overlap returns the overlap length.
func (p *Processor) Overlap() int { return p.overlap }

// Chunks returns the chunk sequence for doc. Work happens as the caller
// ranges, and every range starts from the beginning of the text.
func (p *Processor) Chunks(doc *domain.Document) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		if doc == nil || doc.Text == "" {
			return
		}
		text := []rune(doc.Text)
		start := 0
		for ordinal := 0; ; ordinal++ {
			end := p.boundary(text, start)
			c := domain.Chunk{
				ID:         domain.ChunkID(doc.ID, ordinal),
				DocumentID: doc.ID,
				Ordinal:    ordinal,
				Text:       string(text[start:end]),
				Start:      start,
				End:        end,
			}
			if !yield(c) || end == len(text) {
				return
			}
			start = end - p.overlap
		}
	}
}

// Process collects every chunk of doc.
func (p *Processor) Process(doc *domain.Document) []domain.Chunk {
	return slices.Collect(p.Chunks(doc))
}

// boundary picks the end of the chunk beginning at start. The end always
// lies beyond start+overlap so each chunk advances the cursor.
func (p *Processor) boundary(text []rune, start int) int {
	hi := start + p.chunkSize
	if hi >= len(text) {
		return len(text)
	}
	lo := start + p.overlap

	sentence, space := -1, -1
	for b := hi; b > lo; b-- {
		switch {
		case isParagraphBreak(text, b):
			return b
		case sentence < 0 && isSentenceEnd(text, b):
			sentence = b
		case space < 0 && unicode.IsSpace(text[b-1]):
			space = b
		}
	}
	if sentence > 0 {
		return sentence
	}
	if space > 0 {
		return space
	}
	return hi
}

// isParagraphBreak reports whether b directly follows a blank line.
func isParagraphBreak(text []rune, b int) bool {
	return b >= 2 && text[b-1] == '\n' && text[b-2] == '\n'
}

// isSentenceEnd reports whether b directly follows terminal punctuation
// and a space.
func isSentenceEnd(text []rune, b int) bool {
	if b < 2 || !unicode.IsSpace(text[b-1]) {
		return false
	}
	switch text[b-2] {
	case '.', '?', '!', ';', ':', '。':
		return true
	}
	return false
}
