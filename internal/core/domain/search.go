package domain

// DefaultTopK is used when a query does not set TopK.
const DefaultTopK = 5

// MaxTopK is the largest TopK a query or the retrieval settings may ask for.
const MaxTopK = 1000

// MaxCandidateMultiplier bounds RetrievalSettings.CandidateMultiplier.
const MaxCandidateMultiplier = 100

// Query is a retrieval request. It is never persisted.
type Query struct {
	// Text is the natural-language question.
	Text string

	// TopK is the maximum number of passages. Zero or negative means DefaultTopK.
	// Values above MaxTopK are rejected.
	TopK int

	// Filters restricts matches to entries whose metadata equals every pair.
	Filters map[string]string
}

// RetrievedPassage is one ranked passage returned to the chat layer.
type RetrievedPassage struct {
	ChunkID    string            `json:"chunk_id"`
	DocumentID string            `json:"document_id"`
	Ordinal    int               `json:"ordinal"`
	Score      float64           `json:"score"`
	Text       string            `json:"text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// RetrievalResult is the ordered answer to a Query, highest score first.
type RetrievalResult struct {
	// Passages has at most TopK elements.
	Passages []RetrievedPassage `json:"passages"`

	// ModelVersion is the embedding version the query was served with.
	ModelVersion string `json:"model_version"`
}

// Len returns the number of passages.
func (r *RetrievalResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Passages)
}
