package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

func dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}

func TestEmbed_DeterministicAndNormalised(t *testing.T) {
	e := New("", 0)
	ctx := context.Background()

	a, err := e.Embed(ctx, "The appellant was convicted of theft.")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "The appellant was convicted of theft.")
	require.NoError(t, err)

	assert.Equal(t, a.Values, b.Values)
	assert.Len(t, a.Values, DefaultDimensions)
	assert.InDelta(t, 1.0, dot(a.Values, a.Values), 1e-5)
	assert.Equal(t, "hashing:bow-512", a.ModelVersion)
}

func TestEmbed_RelatedTextScoresHigher(t *testing.T) {
	e := New("bow", 256)
	ctx := context.Background()

	q, _ := e.Embed(ctx, "breach of contract damages")
	near, _ := e.Embed(ctx, "damages awarded for breach of the contract")
	far, _ := e.Embed(ctx, "custody of the minor child")

	assert.Greater(t, dot(q.Values, near.Values), dot(q.Values, far.Values))
}

func TestEmbed_EmptyTextIsZero(t *testing.T) {
	v, err := New("", 8).Embed(context.Background(), "  ...  ")

	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), v.Values)
}

func TestEmbed_Thai(t *testing.T) {
	v, err := New("", 64).Embed(context.Background(), "ศาลฎีกาพิพากษายืน")

	require.NoError(t, err)
	assert.InDelta(t, 1.0, math.Sqrt(dot(v.Values, v.Values)), 1e-5)
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New("", 8).Embed(ctx, "text")

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedBatch(t *testing.T) {
	e := New("", 16)

	vectors, err := e.EmbedBatch(context.Background(), []string{"one", "two"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	single, _ := e.Embed(context.Background(), "two")
	assert.Equal(t, single.Values, vectors[1].Values)
}
