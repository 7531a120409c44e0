package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruchit2005/JustiX-AI-Model/models"
)

// PgChunkStore is the pgvector-backed ChunkStore. Chunks are keyed by a
// generation uuid; a row in knowledge_collections points at the active
// generation for each (partition, collection_id). Replace writes the new
// generation and repoints the alias in one transaction, so a query always
// joins against a complete generation and concurrent writers serialize on
// the collection row.
type PgChunkStore struct {
	db *pgxpool.Pool
}

// NewPgChunkStore creates a Postgres chunk store.
func NewPgChunkStore(db *pgxpool.Pool) *PgChunkStore {
	return &PgChunkStore{db: db}
}

// formatVector formats an embedding vector as a pgvector literal.
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Replace installs a new generation of chunks for the collection and retires
// the previous one. The whole swap runs in one transaction: the alias upsert
// takes the collection's row lock, so concurrent Replaces of the same key
// serialize and each prune only ever removes generations it displaced.
func (s *PgChunkStore) Replace(ctx context.Context, key models.CollectionKey, chunks []models.KnowledgeChunk, summary string) error {
	generation := uuid.New()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin replace transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		batch.Queue(`
			INSERT INTO knowledge_chunks
				(id, generation, partition, collection_id, chunk_index, chunk_text, source_label, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector)`,
			chunk.ID, generation, string(key.Partition), key.ID,
			chunk.Index, chunk.Text, chunk.SourceLabel, formatVector(chunk.Embedding),
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range chunks {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to insert chunk generation: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to flush chunk batch: %w", err)
	}

	// Repoint the alias. The upsert locks the collection row; a concurrent
	// Replace blocks here until this transaction commits.
	_, err = tx.Exec(ctx, `
		INSERT INTO knowledge_collections (partition, collection_id, active_generation, summary, chunk_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (partition, collection_id)
		DO UPDATE SET active_generation = $3, summary = $4, chunk_count = $5, updated_at = NOW()`,
		string(key.Partition), key.ID, generation, summary, len(chunks),
	)
	if err != nil {
		return fmt.Errorf("failed to activate chunk generation: %w", err)
	}

	// Retired generations are garbage once the alias moved. Inside the
	// transaction this only sees committed rows, never another writer's
	// in-flight generation.
	_, err = tx.Exec(ctx, `
		DELETE FROM knowledge_chunks
		WHERE partition = $1 AND collection_id = $2 AND generation <> $3`,
		string(key.Partition), key.ID, generation,
	)
	if err != nil {
		return fmt.Errorf("failed to prune retired chunk generation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk generation: %w", err)
	}
	return nil
}

// Search returns the topK nearest chunks of the active generation, ordered
// by cosine distance with insertion order as the tie-break.
func (s *PgChunkStore) Search(ctx context.Context, key models.CollectionKey, embedding []float32, topK int) ([]models.KnowledgeChunk, error) {
	exists, err := s.Exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCollectionNotFound
	}

	vectorStr := formatVector(embedding)

	rows, err := s.db.Query(ctx, `
		SELECT
			c.id,
			c.chunk_text,
			c.source_label,
			c.chunk_index,
			1 - (c.embedding <=> $1::vector) AS score
		FROM knowledge_chunks c
		JOIN knowledge_collections col
			ON col.partition = c.partition
			AND col.collection_id = c.collection_id
			AND col.active_generation = c.generation
		WHERE c.partition = $2 AND c.collection_id = $3
		ORDER BY c.embedding <=> $1::vector, c.chunk_index
		LIMIT $4`,
		vectorStr, string(key.Partition), key.ID, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.KnowledgeChunk
	for rows.Next() {
		chunk := models.KnowledgeChunk{Partition: key.Partition}
		if err := rows.Scan(&chunk.ID, &chunk.Text, &chunk.SourceLabel, &chunk.Index, &chunk.Score); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating knowledge chunks: %w", err)
	}

	return chunks, nil
}

// Summary returns the cached collection summary.
func (s *PgChunkStore) Summary(ctx context.Context, key models.CollectionKey) (string, error) {
	var summary string
	err := s.db.QueryRow(ctx, `
		SELECT summary FROM knowledge_collections
		WHERE partition = $1 AND collection_id = $2`,
		string(key.Partition), key.ID,
	).Scan(&summary)
	if err == pgx.ErrNoRows {
		return "", ErrCollectionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load collection summary: %w", err)
	}
	return summary, nil
}

// Exists reports whether the collection has an active generation.
func (s *PgChunkStore) Exists(ctx context.Context, key models.CollectionKey) (bool, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM knowledge_collections
		WHERE partition = $1 AND collection_id = $2`,
		string(key.Partition), key.ID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return count > 0, nil
}
