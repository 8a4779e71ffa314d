package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for caselex resources.
	uriScheme = "caselex://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Catalog == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "index/stats",
		Name:        "index-stats",
		Description: "Model version, dimension and size of the case index",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cases",
		Name:        "cases",
		Description: "Stored cases with their extracted metadata",
		MIMEType:    "application/json",
	}, s.handleCasesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cases/{documentId}",
		Name:        "case-text",
		Description: "Normalised text of a stored case",
		MIMEType:    "text/plain",
	}, s.handleCaseTextResource)
}

// handleStatsResource returns index statistics.
func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Catalog.Stats(ctx))
}

// handleCasesResource lists stored cases without their text.
func (s *Server) handleCasesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Catalog.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cases: %w", err)
	}

	type caseInfo struct {
		ID       string            `json:"id"`
		SourceID string            `json:"source_id"`
		Metadata map[string]string `json:"metadata"`
	}

	infos := make([]caseInfo, len(docs))
	for i := range docs {
		infos[i] = caseInfo{
			ID:       docs[i].ID,
			SourceID: docs[i].SourceID,
			Metadata: docs[i].Metadata.Fields(),
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleCaseTextResource returns the text of a stored case.
func (s *Server) handleCaseTextResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// caselex://cases/{documentId}
	id := extractDocumentID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Catalog.Document(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting case: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Text,
		}},
	}, nil
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like caselex://cases/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "cases/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
