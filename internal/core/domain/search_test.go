package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexEntry_Matches(t *testing.T) {
	entry := IndexEntry{Metadata: map[string]string{
		MetaCourt:   "B",
		MetaDate:    "2020-01-01",
		MetaLaws:    "Penal Code; Evidence Act",
		MetaParties: "Smith; Jones",
	}}

	tests := []struct {
		name    string
		filters map[string]string
		want    bool
	}{
		{"no filters", nil, true},
		{"matching", map[string]string{MetaCourt: "B"}, true},
		{"all matching", map[string]string{MetaCourt: "B", MetaDate: "2020-01-01"}, true},
		{"different value", map[string]string{MetaCourt: "A"}, false},
		{"missing key", map[string]string{MetaJurisdiction: "X"}, false},
		{"whole list", map[string]string{MetaLaws: "Penal Code; Evidence Act"}, true},
		{"list member", map[string]string{MetaLaws: "Evidence Act"}, true},
		{"party member", map[string]string{MetaParties: "Jones"}, true},
		{"list substring", map[string]string{MetaLaws: "Evidence"}, false},
		{"scalar is not a list", map[string]string{MetaCourt: "High"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entry.Matches(tt.filters))
		})
	}
}

func TestRetrievalResult_Len(t *testing.T) {
	var r *RetrievalResult
	assert.Equal(t, 0, r.Len())

	r = &RetrievalResult{Passages: make([]RetrievedPassage, 3)}
	assert.Equal(t, 3, r.Len())
}

func TestIngestReport_Counts(t *testing.T) {
	boom := errors.New("provider down")
	r := &IngestReport{Outcomes: []DocumentOutcome{
		{SourceID: "a", Status: OutcomeSucceeded, Chunks: 3},
		{SourceID: "b", Status: OutcomeSkipped, Reason: "malformed"},
		{SourceID: "c", Status: OutcomeFailed, Err: boom},
		{SourceID: "d", Status: OutcomeSucceeded, Chunks: 2},
	}}

	assert.Equal(t, 2, r.Succeeded())
	assert.Equal(t, 1, r.Skipped())
	assert.Equal(t, 1, r.Failed())
	assert.Equal(t, 5, r.Chunks())

	err := r.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "c:")
}

func TestIngestReport_ErrNilWhenNoFailures(t *testing.T) {
	r := &IngestReport{Outcomes: []DocumentOutcome{{Status: OutcomeSucceeded}}}
	assert.NoError(t, r.Err())
}
