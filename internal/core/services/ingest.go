package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
	"github.com/custodia-labs/caselex/internal/logger"
)

// Ensure Ingester implements the interface.
var _ driving.IngestService = (*Ingester)(nil)

// Skip and failure reasons reported in outcomes.
const (
	ReasonNoCaseNumber   = "no case number"
	ReasonAlreadyIndexed = "already indexed"
	ReasonNoChunks       = "no chunks"
	ReasonTimeout        = "timeout"
	ReasonCancelled      = "cancelled"
)

// Ingester normalises, chunks, embeds and indexes raw case documents.
type Ingester struct {
	normaliser driven.Normaliser
	chunker    driven.Chunker
	embedder   driven.Embedder
	index      driven.VectorIndex
	docs       driven.DocumentStore
	settings   domain.IngestSettings
	batchSize  int
	log        logger.Logger

	// serialises work on the same document id across workers
	docLocks sync.Map
}

// NewIngester creates an ingester. batchSize is the number of chunk texts
// sent per embedding call.
func NewIngester(
	normaliser driven.Normaliser,
	chunker driven.Chunker,
	embedder driven.Embedder,
	index driven.VectorIndex,
	docs driven.DocumentStore,
	settings domain.IngestSettings,
	batchSize int,
) (*Ingester, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("ingester: %w", err)
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("ingester: %w: batch size must be positive", domain.ErrInvalidConfig)
	}
	return &Ingester{
		normaliser: normaliser,
		chunker:    chunker,
		embedder:   embedder,
		index:      index,
		docs:       docs,
		settings:   settings,
		batchSize:  batchSize,
		log:        logger.For("ingest"),
	}, nil
}

// IngestAll runs up to settings.Concurrency documents at once. Outcomes keep
// submission order. Cancelling ctx stops workers from picking up new
// documents; those are reported as failed and ctx's error is returned with
// the partial report.
func (g *Ingester) IngestAll(
	ctx context.Context, raws []domain.RawDocument, opts driving.IngestOptions,
) (*domain.IngestReport, error) {
	if err := g.checkVersion(); err != nil {
		return nil, err
	}

	report := &domain.IngestReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Outcomes:  make([]domain.DocumentOutcome, len(raws)),
	}
	logger.Section("Ingest " + report.RunID)
	g.log.Info("run %s: %d documents, %d workers", report.RunID, len(raws), g.settings.Concurrency)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(g.settings.Concurrency, len(raws)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Outcomes[i] = g.Ingest(ctx, raws[i], opts)
			}
		}()
	}

	next := 0
feed:
	for ; next < len(raws); next++ {
		select {
		case jobs <- next:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(raws); i++ {
		report.Outcomes[i] = domain.DocumentOutcome{
			SourceID: raws[i].SourceID,
			Status:   domain.OutcomeFailed,
			Reason:   ReasonCancelled,
			Err:      ctx.Err(),
		}
	}
	report.FinishedAt = time.Now()

	g.log.Info("run %s: %d succeeded, %d skipped, %d failed, %d chunks",
		report.RunID, report.Succeeded(), report.Skipped(), report.Failed(), report.Chunks())
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("ingest run %s: %w", report.RunID, err)
	}
	return report, nil
}

// Ingest processes one raw document under its own timeout. Every problem
// becomes an outcome.
func (g *Ingester) Ingest(ctx context.Context, raw domain.RawDocument, opts driving.IngestOptions) domain.DocumentOutcome {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, g.settings.DocumentTimeout)
	defer cancel()

	out := g.ingest(ctx, raw, opts)
	out.SourceID = raw.SourceID
	out.Duration = time.Since(start)

	// Timed-out documents are skipped and reported, not failed.
	if out.Status == domain.OutcomeFailed &&
		(errors.Is(out.Err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		out.Status, out.Reason = domain.OutcomeSkipped, ReasonTimeout
	}

	switch out.Status {
	case domain.OutcomeSucceeded:
		g.log.Info("%s: indexed %s as %d chunks", raw.SourceID, out.DocumentID, out.Chunks)
	case domain.OutcomeSkipped:
		if out.Err != nil {
			g.log.Warn("%s: skipped: %s: %v", raw.SourceID, out.Reason, out.Err)
		} else {
			g.log.Warn("%s: skipped: %s", raw.SourceID, out.Reason)
		}
	case domain.OutcomeFailed:
		g.log.Error("%s: failed: %v", raw.SourceID, out.Err)
	}
	return out
}

func (g *Ingester) ingest(ctx context.Context, raw domain.RawDocument, opts driving.IngestOptions) domain.DocumentOutcome {
	doc, err := g.normaliser.Normalise(ctx, &raw)
	if errors.Is(err, domain.ErrMalformedDocument) {
		return skipped("", err.Error(), err)
	}
	if err != nil {
		return failed("", err)
	}
	if g.settings.RequireCaseNumber && doc.Metadata.CaseNumber == nil {
		return skipped(doc.ID, ReasonNoCaseNumber, nil)
	}

	unlock := g.lock(doc.ID)
	defer unlock()

	existing, err := g.index.ChunkIDs(ctx, doc.ID)
	if err != nil {
		return failed(doc.ID, err)
	}
	if len(existing) > 0 && !opts.Force {
		return skipped(doc.ID, ReasonAlreadyIndexed, nil)
	}
	if err := g.checkVersion(); err != nil {
		return failed(doc.ID, err)
	}

	chunks := slices.Collect(g.chunker.Chunks(doc))
	if len(chunks) == 0 {
		return skipped(doc.ID, ReasonNoChunks, nil)
	}

	vectors, err := embedChunks(ctx, g.embedder, g.batchSize, chunks)
	if err != nil {
		return failed(doc.ID, err)
	}
	if err := ctx.Err(); err != nil {
		return failed(doc.ID, err)
	}

	if err := g.docs.SaveDocument(ctx, doc, chunks); err != nil {
		return failed(doc.ID, fmt.Errorf("%w: save document: %w", domain.ErrIndexUnavailable, err))
	}

	entries := buildEntries(doc, chunks, vectors)
	if err := g.index.Upsert(ctx, entries); err != nil {
		return failed(doc.ID, err)
	}

	// A forced re-ingest can produce fewer chunks than before.
	if stale := staleIDs(existing, chunks); len(stale) > 0 {
		if err := g.index.Delete(ctx, stale); err != nil {
			return failed(doc.ID, err)
		}
	}

	return domain.DocumentOutcome{DocumentID: doc.ID, Status: domain.OutcomeSucceeded, Chunks: len(chunks)}
}

// Remove deletes the documents whose source is source itself or one of its
// bundle segments ("source#n"). Index entries go first so a failure never
// leaves entries pointing at missing text.
func (g *Ingester) Remove(ctx context.Context, source string) ([]string, error) {
	docs, err := g.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var removed []string
	for _, doc := range docs {
		if doc.SourceID != source && !strings.HasPrefix(doc.SourceID, source+"#") {
			continue
		}
		if err := g.remove(ctx, doc.ID); err != nil {
			return removed, fmt.Errorf("remove %s: %w", doc.ID, err)
		}
		removed = append(removed, doc.ID)
		g.log.Info("%s: removed %s", source, doc.ID)
	}
	return removed, nil
}

func (g *Ingester) remove(ctx context.Context, documentID string) error {
	unlock := g.lock(documentID)
	defer unlock()

	ids, err := g.index.ChunkIDs(ctx, documentID)
	if err != nil {
		return err
	}
	if err := g.index.Delete(ctx, ids); err != nil {
		return err
	}
	return g.docs.DeleteDocument(ctx, documentID)
}

func (g *Ingester) checkVersion() error {
	if e, i := g.embedder.ModelVersion(), g.index.ModelVersion(); e != i {
		return fmt.Errorf("embedder %q cannot write to index built with %q (run rebuild): %w",
			e, i, domain.ErrVersionMismatch)
	}
	return nil
}

func (g *Ingester) lock(documentID string) func() {
	v, _ := g.docLocks.LoadOrStore(documentID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func staleIDs(existing []string, chunks []domain.Chunk) []string {
	current := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		current[c.ID] = struct{}{}
	}
	var stale []string
	for _, id := range existing {
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

func skipped(documentID, reason string, err error) domain.DocumentOutcome {
	return domain.DocumentOutcome{DocumentID: documentID, Status: domain.OutcomeSkipped, Reason: reason, Err: err}
}

func failed(documentID string, err error) domain.DocumentOutcome {
	return domain.DocumentOutcome{
		DocumentID: documentID,
		Status:     domain.OutcomeFailed,
		Reason:     string(domain.KindOf(err)),
		Err:        err,
	}
}
