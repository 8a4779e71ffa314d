// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - Normaliser: Turns raw case text into a Document
//   - Chunker: Splits a Document into overlapping Chunks
//   - Embedder: Maps text to version-tagged vectors
//   - VectorIndex: Vector storage and filtered similarity search
//   - IndexStore: Durable backing for a VectorIndex
//   - DocumentStore: Document and chunk text persistence
//   - CaseSource: Discovers and watches raw case files
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
