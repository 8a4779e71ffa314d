// Package hashing provides a deterministic, offline embedder based on
// signed feature hashing of word tokens and character bigrams. It needs
// no model server and is used for tests, demos and air-gapped installs.
package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/caselex/internal/adapters/driven/embedding"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

var _ driven.Embedder = (*Embedder)(nil)

// Defaults.
const (
	DefaultModel      = "bow"
	DefaultDimensions = 512
)

// Embedder hashes features into a fixed number of buckets.
type Embedder struct {
	model      string
	dimensions int
}

// New creates a hashing embedder. Zero or negative dimensions fall back to
// DefaultDimensions.
func New(model string, dimensions int) *Embedder {
	if model == "" {
		model = DefaultModel
	}
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{model: model, dimensions: dimensions}
}

// Embed returns the L2-normalised feature vector of text. Text without
// any letters or digits maps to the zero vector.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.Vector, error) {
	if err := ctx.Err(); err != nil {
		return domain.Vector{}, embedding.Unavailable("hashing", "embed", err)
	}
	values := make([]float32, e.dimensions)
	for _, f := range features(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(f))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dimensions))
		if sum&(1<<63) != 0 {
			values[idx]--
		} else {
			values[idx]++
		}
	}
	normalise(values)
	return domain.Vector{Values: values, ModelVersion: e.ModelVersion()}, nil
}

// EmbedBatch embeds each text in order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([]domain.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([]domain.Vector, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ModelVersion includes the bucket count because vectors of different
// widths are not comparable.
func (e *Embedder) ModelVersion() string {
	return embedding.Version(domain.AIProviderHashing, fmt.Sprintf("%s-%d", e.model, e.dimensions))
}

// Dimensions returns the bucket count.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Ping always succeeds.
func (e *Embedder) Ping(context.Context) error { return nil }

// Close is a no-op.
func (e *Embedder) Close() error { return nil }

// features returns lowercased word tokens plus character bigrams of each
// token. Bigrams give scripts written without spaces, such as Thai, some
// overlap between related passages.
func features(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.Is(unicode.Mn, r)
	})
	out := make([]string, 0, len(words)*3)
	for _, w := range words {
		out = append(out, "w:"+w)
		runes := []rune(w)
		for i := 0; i+1 < len(runes); i++ {
			out = append(out, "b:"+string(runes[i:i+2]))
		}
	}
	return out
}

func normalise(values []float32) {
	var sum float64
	for _, v := range values {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range values {
		values[i] /= norm
	}
}
