package domain

import (
	"errors"
	"fmt"
	"time"
)

// OutcomeStatus is the result of ingesting one document.
type OutcomeStatus string

// Outcome statuses.
const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeSkipped   OutcomeStatus = "skipped"
	OutcomeFailed    OutcomeStatus = "failed"
)

// DocumentOutcome records what happened to one raw document.
type DocumentOutcome struct {
	// SourceID identifies the raw document.
	SourceID string

	// DocumentID is set once normalisation produced an id.
	DocumentID string

	// Status is the outcome.
	Status OutcomeStatus

	// Chunks is the number of chunks indexed on success.
	Chunks int

	// Reason is a short human-readable explanation for skips and failures.
	Reason string

	// Err is the underlying error, if any.
	Err error

	// Duration is how long the document took.
	Duration time.Duration
}

// IngestReport summarises an ingestion run.
type IngestReport struct {
	// RunID uniquely identifies the run.
	RunID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the last document completed.
	FinishedAt time.Time

	// Outcomes holds one entry per raw document, in submission order.
	Outcomes []DocumentOutcome
}

func (r *IngestReport) count(s OutcomeStatus) int {
	n := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].Status == s {
			n++
		}
	}
	return n
}

// Succeeded returns the number of indexed documents.
func (r *IngestReport) Succeeded() int { return r.count(OutcomeSucceeded) }

// Skipped returns the number of skipped documents.
func (r *IngestReport) Skipped() int { return r.count(OutcomeSkipped) }

// Failed returns the number of failed documents.
func (r *IngestReport) Failed() int { return r.count(OutcomeFailed) }

// Chunks returns the total number of chunks indexed in the run.
func (r *IngestReport) Chunks() int {
	n := 0
	for i := range r.Outcomes {
		n += r.Outcomes[i].Chunks
	}
	return n
}

// Err joins the errors of all failed documents, or returns nil.
func (r *IngestReport) Err() error {
	var errs []error
	for i := range r.Outcomes {
		o := r.Outcomes[i]
		if o.Status == OutcomeFailed && o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.SourceID, o.Err))
		}
	}
	return errors.Join(errs...)
}
