// Package sqlite stores case documents, chunk text and the persisted vector
// index in one SQLite database, using the pure Go modernc.org/sqlite driver.
//
// A Store hands out two views over the same connection pool:
//
//   - DocumentStore: documents with their case metadata, and chunk text
//   - IndexStore: index entries and the single index_meta row
//
// # Schema
//
// Tables are created by the numbered files in migrations/. Only the .up.sql
// files are applied; each records its own version in schema_migrations.
//
// # Concurrency
//
// The database runs in WAL mode with a busy timeout, so searches read while
// an ingest run writes. Multi-row writes happen in one transaction.
package sqlite
