package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/caselex/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query   string            `json:"query" jsonschema:"the question to find case passages for"`
	TopK    int               `json:"top_k,omitempty" jsonschema:"maximum number of passages, at most 1000 (default from configuration)"`
	Filters map[string]string `json:"filters,omitempty" jsonschema:"exact-match metadata filters such as court, case_number, document_type or one of referenced_laws"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Passages     []domain.RetrievedPassage `json:"passages"`
	Count        int                       `json:"count"`
	ModelVersion string                    `json:"model_version"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "retrieve",
		Description: "Retrieve the case-law passages most relevant to a question. " +
			"Errors start with a machine-readable code such as version_mismatch.",
	}, s.handleRetrieve)
}

// handleRetrieve handles the retrieve tool invocation. Errors are prefixed
// with their domain.KindOf code.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	result, err := s.ports.Retrieval.Retrieve(ctx, domain.Query{
		Text:    input.Query,
		TopK:    input.TopK,
		Filters: input.Filters,
	})
	if err != nil {
		return nil, RetrieveOutput{}, fmt.Errorf("%s: %w", domain.KindOf(err), err)
	}

	return nil, RetrieveOutput{
		Passages:     result.Passages,
		Count:        result.Len(),
		ModelVersion: result.ModelVersion,
	}, nil
}
