package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

func TestCatalog(t *testing.T) {
	ctx := context.Background()
	p := ingested(t)
	c := NewCatalog(p.docs, p.index)

	stats := c.Stats(ctx)
	assert.Equal(t, stubVersion, stats.ModelVersion)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 4, stats.Entries)

	docs, err := c.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "case_4-2022", docs[0].ID)

	doc, err := c.Document(ctx, "case_4-2022")
	require.NoError(t, err)
	assert.Contains(t, doc.Text, "Appeal dismissed.")

	_, err = c.Document(ctx, "case_404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
