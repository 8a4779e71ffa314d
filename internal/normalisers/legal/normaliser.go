package legal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser cleans court decisions and extracts case metadata.
type Normaliser struct {
	now func() time.Time
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithClock sets the clock used for Document.IngestedAt.
func WithClock(now func() time.Time) Option {
	return func(n *Normaliser) {
		n.now = now
	}
}

// New creates a legal normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise converts raw case text into a canonical document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, ok := decode(raw.Content)
	if !ok {
		return nil, fmt.Errorf("%w: %s: empty or not UTF-8 text", domain.ErrMalformedDocument, raw.SourceID)
	}
	if isMarkup(raw.SourceID, text) {
		text = stripMarkup(text)
	}

	text = clean(text)
	if text == "" {
		return nil, fmt.Errorf("%w: %s: no text left after cleaning", domain.ErrMalformedDocument, raw.SourceID)
	}

	meta := ExtractMetadata(text)

	return &domain.Document{
		ID:         documentID(raw.SourceID, text, meta),
		SourceID:   raw.SourceID,
		Text:       text,
		Metadata:   meta,
		IngestedAt: n.now(),
	}, nil
}

// documentID prefers the case number, then the source id, then a content hash.
func documentID(sourceID, text string, meta domain.CaseMetadata) string {
	if meta.CaseNumber != nil {
		return domain.DocumentIDForCase(*meta.CaseNumber)
	}
	if sourceID != "" {
		return domain.DocumentIDForSource(sourceID)
	}
	sum := sha256.Sum256([]byte(text))
	return "doc_" + hex.EncodeToString(sum[:8])
}
