package domain

import (
	"fmt"
	"strings"
	"time"
)

// Metadata keys stored in index entry snapshots.
const (
	MetaCaseNumber   = "case_number"
	MetaCourt        = "court"
	MetaDate         = "date"
	MetaParties      = "parties"
	MetaJurisdiction = "jurisdiction"
	MetaDocumentType = "document_type"
	MetaLaws         = "referenced_laws"
	MetaSourceID     = "source_id"
	MetaStart        = "start"
	MetaEnd          = "end"
)

// CaseMetadata holds structural fields extracted from case text.
// Extraction is best-effort: a nil field means the rule did not match.
type CaseMetadata struct {
	// CaseNumber is the docket number, e.g. "1234/2019".
	CaseNumber *string

	// Court is the deciding court or tribunal.
	Court *string

	// Date is the decision date in YYYY-MM-DD form.
	Date *string

	// Parties lists the named parties in caption order.
	Parties []string

	// Jurisdiction is the jurisdiction the court sits in.
	Jurisdiction *string

	// DocumentType is the kind of decision named in the title, e.g.
	// "Judgment" or "คำพิพากษาศาลฎีกา".
	DocumentType *string

	// ReferencedLaws lists the statutes and codes cited, in order of first
	// mention.
	ReferencedLaws []string
}

// Fields flattens the metadata into string pairs, omitting absent fields.
func (m CaseMetadata) Fields() map[string]string {
	out := make(map[string]string, 7)
	if m.CaseNumber != nil {
		out[MetaCaseNumber] = *m.CaseNumber
	}
	if m.Court != nil {
		out[MetaCourt] = *m.Court
	}
	if m.Date != nil {
		out[MetaDate] = *m.Date
	}
	if len(m.Parties) > 0 {
		out[MetaParties] = strings.Join(m.Parties, ListSeparator)
	}
	if m.Jurisdiction != nil {
		out[MetaJurisdiction] = *m.Jurisdiction
	}
	if m.DocumentType != nil {
		out[MetaDocumentType] = *m.DocumentType
	}
	if len(m.ReferencedLaws) > 0 {
		out[MetaLaws] = strings.Join(m.ReferencedLaws, ListSeparator)
	}
	return out
}

// Document is a normalised case. It is immutable once produced.
type Document struct {
	// ID is the stable case identifier.
	ID string

	// SourceID identifies where the raw text came from.
	SourceID string

	// Text is the canonical text after normalisation.
	Text string

	// Metadata holds the extracted case fields.
	Metadata CaseMetadata

	// IngestedAt is when the document was normalised.
	IngestedAt time.Time
}

// Chunk is a bounded contiguous passage of a document.
type Chunk struct {
	// ID is unique across the index and sorts in ordinal order within a document.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the zero-based position within the document.
	Ordinal int

	// Text is the passage content.
	Text string

	// Start is the rune offset of the first character in the normalised text.
	Start int

	// End is the rune offset one past the last character.
	End int
}

// Len returns the chunk length in runes.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// DocumentIDForCase derives the stable document id from a case number.
func DocumentIDForCase(caseNumber string) string {
	return "case_" + strings.ReplaceAll(caseNumber, "/", "-")
}

// DocumentIDForSource derives a document id when no case number is known.
func DocumentIDForSource(sourceID string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", " ", "_", "#", "-")
	return "src_" + r.Replace(strings.TrimLeft(sourceID, "/"))
}

// ChunkID builds the id of the chunk at ordinal within a document.
func ChunkID(documentID string, ordinal int) string {
	return fmt.Sprintf("%s#%05d", documentID, ordinal)
}
