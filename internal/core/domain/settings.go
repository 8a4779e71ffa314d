package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an embedding provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI API or any compatible server.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderHashing is the built-in offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs without network access to a third party.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI-compatible (cloud)"
	case AIProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings controls how documents are split.
type ChunkingSettings struct {
	// MaxSize is the maximum chunk length in characters.
	MaxSize int

	// Overlap is the number of characters shared by consecutive chunks.
	// Must not exceed MaxSize/2.
	Overlap int
}

// Validate checks the chunking invariants.
func (c ChunkingSettings) Validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: chunk max size must be positive, got %d", ErrInvalidConfig, c.MaxSize)
	}
	if c.Overlap < 0 || c.Overlap > c.MaxSize/2 {
		return fmt.Errorf("%w: chunk overlap %d must be between 0 and max_size/2 (%d)",
			ErrInvalidConfig, c.Overlap, c.MaxSize/2)
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the provider's default dimension.
	Dimensions int

	// BatchSize is the number of texts per provider call.
	BatchSize int

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64

	// Timeout bounds a single provider call.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// IndexInMemory as IndexSettings.Path keeps documents and the index in
// process memory only.
const IndexInMemory = ":memory:"

// IndexSettings locates the persisted index.
type IndexSettings struct {
	// Path is the data directory holding the SQLite database. Empty means
	// ~/.caselex/data.
	Path string
}

// RetrievalSettings controls query-time ranking.
type RetrievalSettings struct {
	// TopK is the default number of passages.
	TopK int

	// ProximityWindow collapses hits from the same document whose ordinals
	// differ by at most this many positions. Zero disables deduplication.
	ProximityWindow int

	// CandidateMultiplier scales TopK to size the pre-deduplication search.
	CandidateMultiplier int
}

// Validate checks the retrieval invariants.
func (r RetrievalSettings) Validate() error {
	if r.TopK <= 0 {
		return fmt.Errorf("%w: retrieval top_k must be positive, got %d", ErrInvalidConfig, r.TopK)
	}
	if r.TopK > MaxTopK {
		return fmt.Errorf("%w: retrieval top_k must be at most %d, got %d", ErrInvalidConfig, MaxTopK, r.TopK)
	}
	if r.ProximityWindow < 0 {
		return fmt.Errorf("%w: proximity window must not be negative", ErrInvalidConfig)
	}
	if r.CandidateMultiplier < 1 {
		return fmt.Errorf("%w: candidate multiplier must be at least 1", ErrInvalidConfig)
	}
	if r.CandidateMultiplier > MaxCandidateMultiplier {
		return fmt.Errorf("%w: candidate multiplier must be at most %d", ErrInvalidConfig, MaxCandidateMultiplier)
	}
	return nil
}

// IngestSettings controls batch ingestion.
type IngestSettings struct {
	// Concurrency is the number of documents processed at once.
	Concurrency int

	// DocumentTimeout bounds the work on a single document.
	DocumentTimeout time.Duration

	// RequireCaseNumber skips documents without an extractable case number.
	RequireCaseNumber bool

	// Extensions lists the file suffixes picked up from directories.
	Extensions []string
}

// Validate checks the ingestion invariants.
func (i IngestSettings) Validate() error {
	if i.Concurrency <= 0 {
		return fmt.Errorf("%w: ingest concurrency must be positive", ErrInvalidConfig)
	}
	if i.DocumentTimeout <= 0 {
		return fmt.Errorf("%w: document timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// Settings is the complete application configuration.
type Settings struct {
	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	Index     IndexSettings
	Retrieval RetrievalSettings
	Ingest    IngestSettings
}

// DefaultSettings returns the configuration used when nothing is set.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{MaxSize: 1000, Overlap: 200},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			Model:     "bge-m3",
			BatchSize: 128,
			Timeout:   60 * time.Second,
		},
		Retrieval: RetrievalSettings{TopK: DefaultTopK, ProximityWindow: 1, CandidateMultiplier: 3},
		Ingest: IngestSettings{
			Concurrency:     4,
			DocumentTimeout: 2 * time.Minute,
			Extensions:      []string{".md", ".txt"},
		},
	}
}

// Validate checks every section.
func (s Settings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfig, s.Embedding.Provider)
	}
	if s.Embedding.BatchSize <= 0 {
		return fmt.Errorf("%w: embedding batch size must be positive", ErrInvalidConfig)
	}
	if s.Embedding.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidConfig)
	}
	if err := s.Retrieval.Validate(); err != nil {
		return err
	}
	return s.Ingest.Validate()
}
