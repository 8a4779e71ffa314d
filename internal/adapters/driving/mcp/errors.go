// Package mcp provides an MCP (Model Context Protocol) server adapter for
// caselex. It lets chat assistants retrieve case passages from the local
// index.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
