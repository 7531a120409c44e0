package repository

import (
	"context"
	"errors"

	"github.com/ruchit2005/JustiX-AI-Model/models"
)

// ErrCollectionNotFound is returned when a search or summary lookup targets
// a collection that was never initialized.
var ErrCollectionNotFound = errors.New("knowledge collection not found")

// ChunkStore is the similarity-search port of the engine. A collection is
// addressed by (partition, id); mutation happens only through Replace, which
// must be atomic: concurrent readers observe either the fully-old or the
// fully-new chunk set, never a mix.
type ChunkStore interface {
	// Replace swaps the collection's content in one visible step and caches
	// the collection summary alongside it.
	Replace(ctx context.Context, key models.CollectionKey, chunks []models.KnowledgeChunk, summary string) error

	// Search returns the topK nearest chunks to the query embedding within
	// the addressed collection only. Ties in similarity are broken by
	// original insertion order. Returns ErrCollectionNotFound for unknown
	// collections.
	Search(ctx context.Context, key models.CollectionKey, embedding []float32, topK int) ([]models.KnowledgeChunk, error)

	// Summary returns the cached collection summary.
	Summary(ctx context.Context, key models.CollectionKey) (string, error)

	// Exists reports whether the collection has been initialized.
	Exists(ctx context.Context, key models.CollectionKey) (bool, error)
}
