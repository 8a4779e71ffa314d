// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - Ingester: normalise, chunk, embed and index raw documents
//   - Retriever: answer queries with deduplicated passages
//   - Reindexer: re-embed everything under a new model version
//   - Verifier: report documents with a suspect case number
package services
