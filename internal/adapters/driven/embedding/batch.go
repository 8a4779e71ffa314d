package embedding

import (
	"fmt"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// Version builds the model version string for a provider and model.
func Version(provider domain.AIProvider, model string) string {
	return string(provider) + ":" + model
}

// Unavailable wraps a provider failure so callers can match
// domain.ErrEmbeddingUnavailable.
func Unavailable(provider, op string, err error) error {
	return fmt.Errorf("%s: %s: %w: %w", provider, op, domain.ErrEmbeddingUnavailable, err)
}

// Malformed reports provider output that cannot be used.
func Malformed(provider, format string, args ...any) error {
	return fmt.Errorf("%s: malformed response: %w: %s", provider, domain.ErrEmbeddingUnavailable, fmt.Sprintf(format, args...))
}

// Assemble validates raw provider vectors for a batch of n inputs and
// tags them with version. Every slot must be filled with a non-empty
// vector and all vectors must share one dimension, matching dims when
// dims is non-zero.
func Assemble(provider, version string, n, dims int, raw [][]float32) ([]domain.Vector, error) {
	if len(raw) != n {
		return nil, Malformed(provider, "got %d vectors for %d inputs", len(raw), n)
	}
	want := dims
	out := make([]domain.Vector, n)
	for i, v := range raw {
		if len(v) == 0 {
			return nil, Malformed(provider, "missing vector for input %d", i)
		}
		if want == 0 {
			want = len(v)
		}
		if len(v) != want {
			return nil, Malformed(provider, "vector %d has dimension %d, want %d", i, len(v), want)
		}
		out[i] = domain.Vector{Values: v, ModelVersion: version}
	}
	return out, nil
}
