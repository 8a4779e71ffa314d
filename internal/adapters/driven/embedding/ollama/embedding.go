// Package ollama provides an embedding adapter for a local Ollama server.
package ollama

import (
	"context"
	"net/http"
	"time"

	"github.com/custodia-labs/caselex/internal/adapters/driven/embedding"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.Embedder = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "bge-m3"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 1024 // bge-m3 dense output
)

const provider = "ollama"

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: bge-m3).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions is the expected vector size. Zero means 1024 for the
	// default model and "whatever the server returns" for any other.
	Dimensions int
}

// EmbeddingService generates embeddings with Ollama's /api/embed.
type EmbeddingService struct {
	transport  *embedding.Transport
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 && cfg.Model == DefaultModel {
		cfg.Dimensions = DefaultDimensions
	}

	return &EmbeddingService{
		transport:  embedding.NewTransport(provider, cfg.BaseURL, cfg.Timeout),
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed returns the vector for a single text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) (domain.Vector, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return domain.Vector{}, err
	}
	return vectors[0], nil
}

// EmbedBatch sends every text in one call. Ollama returns embeddings in
// input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]domain.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var out embedResponse
	err := s.transport.Do(ctx, "embed", http.MethodPost, "/api/embed",
		embedRequest{Model: s.model, Input: texts}, &out)
	if err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, embedding.Malformed(provider, "%s", out.Error)
	}
	return embedding.Assemble(provider, s.ModelVersion(), len(texts), s.dimensions, out.Embeddings)
}

// Dimensions returns the embedding vector size, or zero when unknown.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelVersion identifies the model, e.g. "ollama:bge-m3".
func (s *EmbeddingService) ModelVersion() string {
	return embedding.Version(domain.AIProviderOllama, s.model)
}

// Ping lists local models, which needs no inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.transport.Do(ctx, "ping", http.MethodGet, "/api/tags", nil, nil)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
