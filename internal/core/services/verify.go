package services

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
	"github.com/custodia-labs/caselex/internal/logger"
)

// Ensure Verifier implements the interface.
var _ driving.VerifyService = (*Verifier)(nil)

// Problems reported by Verify.
const (
	ProblemMissing  = "case number missing"
	ProblemMismatch = "stored case number differs from text"
	ProblemNotFound = "stored case number not found in text"
	ProblemID       = "document id does not match case number"
)

// CaseNumberExtractor finds the case number in normalised text.
type CaseNumberExtractor func(text string) (string, bool)

// Verifier re-extracts case numbers from stored documents and, on request,
// rewrites the documents whose stored number or id disagrees with the text.
type Verifier struct {
	docs    driven.DocumentStore
	index   driven.VectorIndex
	extract CaseNumberExtractor
	log     logger.Logger
}

// NewVerifier creates a verifier.
func NewVerifier(docs driven.DocumentStore, index driven.VectorIndex, extract CaseNumberExtractor) *Verifier {
	return &Verifier{docs: docs, index: index, extract: extract, log: logger.For("verify")}
}

// Verify checks every stored document. Nothing is changed.
func (v *Verifier) Verify(ctx context.Context) (*domain.VerifyReport, error) {
	report, _, err := v.check(ctx)
	return report, err
}

// Repair checks every stored document and fixes those whose text carries
// a case number.
func (v *Verifier) Repair(ctx context.Context) (*domain.VerifyReport, error) {
	report, docs, err := v.check(ctx)
	if err != nil {
		return nil, err
	}
	if len(report.Issues) == 0 {
		return report, nil
	}

	entries, err := v.index.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list index entries: %w", err)
	}
	byDoc := make(map[string][]domain.IndexEntry)
	for _, e := range entries {
		byDoc[e.DocumentID] = append(byDoc[e.DocumentID], e)
	}

	for i := range report.Issues {
		issue := &report.Issues[i]
		if issue.Extracted == "" {
			continue
		}
		id, err := v.repair(ctx, docs[issue.DocumentID], issue.Extracted, byDoc[issue.DocumentID])
		if errors.Is(err, errRepairConflict) {
			v.log.Warn("%s: not repaired: %v", issue.DocumentID, err)
			continue
		}
		if err != nil {
			return report, fmt.Errorf("repair %s: %w", issue.DocumentID, err)
		}
		issue.RepairedID = id
		v.log.Info("%s: repaired as %s (case number %s)", issue.DocumentID, id, issue.Extracted)
	}
	return report, nil
}

var errRepairConflict = errors.New("another document already uses that id")

// repair rewrites doc under the id derived from caseNumber. New rows are
// written before old ones are removed, so an interrupted repair leaves a
// duplicate, never a loss.
func (v *Verifier) repair(ctx context.Context, doc *domain.Document, caseNumber string, entries []domain.IndexEntry) (string, error) {
	newID := domain.DocumentIDForCase(caseNumber)
	moved := newID != doc.ID
	if moved {
		_, err := v.docs.GetDocument(ctx, newID)
		if err == nil {
			return "", fmt.Errorf("%s: %w", newID, errRepairConflict)
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
	}

	chunks, err := v.docs.GetChunks(ctx, doc.ID)
	if err != nil {
		return "", fmt.Errorf("load chunks: %w", err)
	}

	fixed := *doc
	fixed.ID = newID
	fixed.Metadata.CaseNumber = &caseNumber

	rekeyed := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.ID, c.DocumentID = domain.ChunkID(newID, c.Ordinal), newID
		rekeyed[i] = c
	}
	stale := make([]string, 0, len(entries))
	updated := make([]domain.IndexEntry, len(entries))
	for i, e := range entries {
		stale = append(stale, e.ChunkID)
		e.ChunkID, e.DocumentID = domain.ChunkID(newID, e.Ordinal), newID
		e.Metadata = maps.Clone(e.Metadata)
		if e.Metadata == nil {
			e.Metadata = map[string]string{}
		}
		e.Metadata[domain.MetaCaseNumber] = caseNumber
		updated[i] = e
	}

	if len(updated) > 0 {
		if err := v.index.Upsert(ctx, updated); err != nil {
			return "", fmt.Errorf("index entries: %w", err)
		}
	}
	if err := v.docs.SaveDocument(ctx, &fixed, rekeyed); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	if !moved {
		return newID, nil
	}
	if err := v.index.Delete(ctx, stale); err != nil {
		return "", fmt.Errorf("drop old entries: %w", err)
	}
	if err := v.docs.DeleteDocument(ctx, doc.ID); err != nil {
		return "", fmt.Errorf("drop old document: %w", err)
	}
	return newID, nil
}

// check builds the report and returns the documents it looked at by id.
func (v *Verifier) check(ctx context.Context) (*domain.VerifyReport, map[string]*domain.Document, error) {
	docs, err := v.docs.ListDocuments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list documents: %w", err)
	}

	byID := make(map[string]*domain.Document, len(docs))
	report := &domain.VerifyReport{Checked: len(docs), Issues: []domain.CaseNumberIssue{}}
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		doc := &docs[i]
		byID[doc.ID] = doc
		extracted, found := v.extract(doc.Text)
		issue := domain.CaseNumberIssue{DocumentID: doc.ID, SourceID: doc.SourceID, Extracted: extracted}

		switch stored := doc.Metadata.CaseNumber; {
		case stored == nil:
			if !found {
				issue.Problem = ProblemMissing
			} else {
				issue.Problem = ProblemMismatch
			}
		case !found:
			issue.Stored, issue.Problem = *stored, ProblemNotFound
		case *stored != extracted:
			issue.Stored, issue.Problem = *stored, ProblemMismatch
		case doc.ID != domain.DocumentIDForCase(*stored):
			issue.Stored, issue.Problem = *stored, ProblemID
		default:
			continue
		}
		report.Issues = append(report.Issues, issue)
	}
	return report, byID, nil
}
