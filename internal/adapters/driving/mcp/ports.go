package mcp

import (
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval answers retrieve tool calls.
	Retrieval driving.RetrievalService

	// Catalog backs the stats and case resources. Optional.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
