package domain

import "errors"

// Domain errors represent pipeline failures.
// Adapters wrap them with context using fmt.Errorf and %w.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedDocument indicates raw text that is empty or not text.
	// The document is skipped and ingestion continues.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrInvalidConfig indicates chunking, index or retrieval parameters
	// that violate their invariants. Fatal at startup.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrEmbeddingUnavailable indicates the embedding provider is unreachable
	// or returned malformed output. Callers decide whether to retry.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVersionMismatch indicates a vector whose dimension or model version
	// is incompatible with the index.
	ErrVersionMismatch = errors.New("embedding version mismatch")

	// ErrIndexUnavailable indicates the index storage backend is unreachable
	// or the index has been closed.
	ErrIndexUnavailable = errors.New("index unavailable")
)

// ErrorKind is the machine-readable code of a pipeline error.
type ErrorKind string

// Error kinds, one per sentinel.
const (
	KindMalformedDocument    ErrorKind = "malformed_document"
	KindInvalidConfig        ErrorKind = "invalid_config"
	KindEmbeddingUnavailable ErrorKind = "embedding_unavailable"
	KindVersionMismatch      ErrorKind = "version_mismatch"
	KindIndexUnavailable     ErrorKind = "index_unavailable"
	KindInvalidInput         ErrorKind = "invalid_input"
	KindNotFound             ErrorKind = "not_found"
	KindInternal             ErrorKind = "internal"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrMalformedDocument, KindMalformedDocument},
	{ErrInvalidConfig, KindInvalidConfig},
	{ErrEmbeddingUnavailable, KindEmbeddingUnavailable},
	{ErrVersionMismatch, KindVersionMismatch},
	{ErrIndexUnavailable, KindIndexUnavailable},
	{ErrInvalidInput, KindInvalidInput},
	{ErrNotFound, KindNotFound},
}

// KindOf classifies err. It returns the empty kind for a nil error and
// KindInternal for errors outside the taxonomy.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
