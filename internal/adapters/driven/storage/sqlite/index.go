package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
)

// indexStore implements driven.IndexStore.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

// Load reads index_meta and every entry ordered by chunk id. A store that
// has never recorded a version yields an empty state.
func (s *indexStore) Load(ctx context.Context) (*driven.IndexState, error) {
	state := &driven.IndexState{}

	err := s.store.db.QueryRowContext(ctx,
		"SELECT model_version, dimensions FROM index_meta WHERE id = 1",
	).Scan(&state.ModelVersion, &state.Dimensions)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading index meta: %w", err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT chunk_id, document_id, ordinal, vector, model_version, metadata
		FROM index_entries ORDER BY chunk_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying index entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.IndexEntry
		var blob []byte
		var metadata string
		if err := rows.Scan(&e.ChunkID, &e.DocumentID, &e.Ordinal, &blob, &e.Vector.ModelVersion, &metadata); err != nil {
			return nil, fmt.Errorf("scanning index entry: %w", err)
		}
		e.Vector.Values = decodeVector(blob)
		if err := json.Unmarshal([]byte(metadata), &e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling entry metadata: %w", err)
		}
		state.Entries = append(state.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index entries: %w", err)
	}
	return state, nil
}

// SetVersion records the model version and dimension.
func (s *indexStore) SetVersion(ctx context.Context, modelVersion string, dimensions int) error {
	return setMeta(ctx, s.store.db, modelVersion, dimensions)
}

// UpsertEntries inserts or replaces entries in one transaction.
func (s *indexStore) UpsertEntries(ctx context.Context, entries []domain.IndexEntry) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := insertEntries(ctx, tx, entries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteEntries removes entries by chunk id in one transaction.
func (s *indexStore) DeleteEntries(ctx context.Context, chunkIDs []string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM index_entries WHERE chunk_id = ?")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, id := range chunkIDs {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("deleting index entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ReplaceAll swaps meta and entries in one transaction.
func (s *indexStore) ReplaceAll(ctx context.Context, state *driven.IndexState) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_entries"); err != nil {
		return fmt.Errorf("clearing index entries: %w", err)
	}
	if err := setMeta(ctx, tx, state.ModelVersion, state.Dimensions); err != nil {
		return err
	}
	if err := insertEntries(ctx, tx, state.Entries); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func setMeta(ctx context.Context, db execer, modelVersion string, dimensions int) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO index_meta (id, model_version, dimensions, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			model_version = excluded.model_version,
			dimensions = excluded.dimensions,
			updated_at = excluded.updated_at
	`, modelVersion, dimensions)
	if err != nil {
		return fmt.Errorf("saving index meta: %w", err)
	}
	return nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []domain.IndexEntry) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_entries (chunk_id, document_id, ordinal, vector, model_version, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			document_id = excluded.document_id,
			ordinal = excluded.ordinal,
			vector = excluded.vector,
			model_version = excluded.model_version,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		metadata := e.Metadata
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadataJSON, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshalling entry metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, e.ChunkID, e.DocumentID, e.Ordinal,
			encodeVector(e.Vector.Values), e.Vector.ModelVersion, string(metadataJSON)); err != nil {
			return fmt.Errorf("saving index entry: %w", err)
		}
	}
	return nil
}
