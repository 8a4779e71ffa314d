package domain

import "time"

// RebuildReport summarises a re-embedding rebuild.
type RebuildReport struct {
	// PreviousVersion is the model version replaced.
	PreviousVersion string

	// ModelVersion is the version now served.
	ModelVersion string

	// Entries is the number of entries in the new index.
	Entries int

	// Duration is how long the rebuild took.
	Duration time.Duration
}

// CaseNumberIssue describes a document whose stored case number is suspect.
type CaseNumberIssue struct {
	DocumentID string `json:"document_id"`
	SourceID   string `json:"source_id"`
	Stored     string `json:"stored,omitempty"`
	Extracted  string `json:"extracted,omitempty"`
	Problem    string `json:"problem"`

	// RepairedID is the document id after a repair, empty when the issue
	// was only reported.
	RepairedID string `json:"repaired_id,omitempty"`
}

// Repaired reports whether the issue was fixed in place.
func (i CaseNumberIssue) Repaired() bool {
	return i.RepairedID != ""
}

// VerifyReport lists case-number problems found in stored documents.
type VerifyReport struct {
	Checked int               `json:"checked"`
	Issues  []CaseNumberIssue `json:"issues"`
}

// Outstanding counts the issues left unrepaired.
func (r *VerifyReport) Outstanding() int {
	n := 0
	for _, i := range r.Issues {
		if !i.Repaired() {
			n++
		}
	}
	return n
}

// OK reports whether no unrepaired issues remain.
func (r *VerifyReport) OK() bool {
	return r.Outstanding() == 0
}
