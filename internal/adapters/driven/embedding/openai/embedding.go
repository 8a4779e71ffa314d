// Package openai provides an embedding adapter for the OpenAI API and
// compatible servers.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/caselex/internal/adapters/driven/embedding"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.Embedder = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "text-embedding-3-small"
	DefaultTimeout = 60 * time.Second
)

const provider = "openai"

// Model dimensions for OpenAI embedding models.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Dimensions overrides the default dimension for the model.
	// Only sent to the API for text-embedding-3-* models.
	Dimensions int
}

// EmbeddingService generates embeddings with the /embeddings endpoint.
type EmbeddingService struct {
	transport  *embedding.Transport
	model      string
	dimensions int
	override   bool
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// embeddingResponse carries an error object on some compatible servers
// even with a 200 status.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: API key is required", domain.ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = modelDimensions[cfg.Model]
	}

	transport := embedding.NewTransport(provider, cfg.BaseURL, cfg.Timeout)
	transport.SetHeader("Authorization", "Bearer "+cfg.APIKey)

	return &EmbeddingService{
		transport:  transport,
		model:      cfg.Model,
		dimensions: dimensions,
		override:   cfg.Dimensions > 0 && strings.HasPrefix(cfg.Model, "text-embedding-3-"),
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) (domain.Vector, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return domain.Vector{}, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
// Results are placed by the index the API reports, not by arrival order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]domain.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embeddingRequest{Model: s.model, Input: texts}
	if s.override {
		reqBody.Dimensions = s.dimensions
	}

	var embedResp embeddingResponse
	if err := s.transport.Do(ctx, "embed", http.MethodPost, "/embeddings", reqBody, &embedResp); err != nil {
		return nil, err
	}
	if embedResp.Error != nil {
		return nil, embedding.Unavailable(provider, "embed", errors.New(embedResp.Error.Message))
	}

	if len(embedResp.Data) != len(texts) {
		return nil, embedding.Malformed(provider, "got %d vectors for %d inputs", len(embedResp.Data), len(texts))
	}
	ordered := make([][]float32, len(texts))
	for _, data := range embedResp.Data {
		if data.Index < 0 || data.Index >= len(texts) || ordered[data.Index] != nil {
			return nil, embedding.Malformed(provider, "unexpected index %d", data.Index)
		}
		ordered[data.Index] = data.Embedding
	}

	return embedding.Assemble(provider, s.ModelVersion(), len(texts), s.dimensions, ordered)
}

// Dimensions returns the embedding vector size, or zero when unknown.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelVersion identifies the model. A dimension override is part of the
// version since truncated vectors are not comparable with full ones.
func (s *EmbeddingService) ModelVersion() string {
	v := embedding.Version(domain.AIProviderOpenAI, s.model)
	if s.override {
		v = fmt.Sprintf("%s@%d", v, s.dimensions)
	}
	return v
}

// Ping lists models, which checks the API key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	return s.transport.Do(ctx, "ping", http.MethodGet, "/models", nil, nil)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
