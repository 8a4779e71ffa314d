// Package domain defines the core entities of the caselex retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Case text as read from a source, before normalisation
//   - Document: A normalised case with extracted metadata
//   - Chunk: A bounded passage of a document, the unit of embedding
//   - Vector: An embedding tagged with the model version that produced it
//   - IndexEntry: A vector plus the metadata snapshot held by the index
//   - Query / RetrievalResult: The retrieval request and its ranked answer
//   - IngestReport: The per-document outcome of an ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
