package mcp

import (
	"context"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error
	last   domain.Query
}

func (m *mockRetrievalService) Retrieve(_ context.Context, q domain.Query) (*domain.RetrievalResult, error) {
	m.last = q
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.RetrievalResult{Passages: []domain.RetrievedPassage{}}, nil
	}
	return m.result, nil
}

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	stats domain.IndexStats
	docs  []domain.Document
	err   error
}

func (m *mockCatalogService) Stats(context.Context) domain.IndexStats {
	return m.stats
}

func (m *mockCatalogService) Document(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCatalogService) Documents(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}
