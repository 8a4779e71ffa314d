// Package memory implements driven.VectorIndex as an exact, in-memory
// cosine index.
//
// The index holds one immutable snapshot behind an atomic pointer. Writers
// take a mutex, build a new snapshot and publish it with a single store, so
// searches never wait on a writer and never see a half-applied batch.
//
// An optional driven.IndexStore makes the index durable. Every write is
// committed to the store before the new snapshot is published; if the store
// fails, the index is left as it was.
package memory
