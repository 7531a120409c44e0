package repository

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/ruchit2005/JustiX-AI-Model/models"
)

// memoryCollection is an immutable snapshot of a collection. Replace builds
// a fresh one and swaps the map entry, so a reader that grabbed the pointer
// keeps a consistent view even while a re-initialization runs.
type memoryCollection struct {
	chunks  []models.KnowledgeChunk
	summary string
}

// MemoryChunkStore is an in-process ChunkStore. It backs the no-database dev
// mode and the test suite; the similarity math mirrors the pgvector cosine
// ordering.
type MemoryChunkStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
}

// NewMemoryChunkStore creates an empty in-memory store.
func NewMemoryChunkStore() *MemoryChunkStore {
	return &MemoryChunkStore{
		collections: make(map[string]*memoryCollection),
	}
}

// Replace atomically installs a new snapshot for the collection.
func (s *MemoryChunkStore) Replace(_ context.Context, key models.CollectionKey, chunks []models.KnowledgeChunk, summary string) error {
	snapshot := &memoryCollection{
		chunks:  make([]models.KnowledgeChunk, len(chunks)),
		summary: summary,
	}
	copy(snapshot.chunks, chunks)

	s.mu.Lock()
	s.collections[key.String()] = snapshot
	s.mu.Unlock()
	return nil
}

// Search scores every chunk in the collection by cosine similarity and
// returns the topK, ties broken by insertion index.
func (s *MemoryChunkStore) Search(_ context.Context, key models.CollectionKey, embedding []float32, topK int) ([]models.KnowledgeChunk, error) {
	s.mu.RLock()
	col, ok := s.collections[key.String()]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCollectionNotFound
	}

	scored := make([]models.KnowledgeChunk, len(col.chunks))
	copy(scored, col.chunks)
	for i := range scored {
		scored[i].Score = cosineSimilarity(embedding, scored[i].Embedding)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Summary returns the cached summary for the collection.
func (s *MemoryChunkStore) Summary(_ context.Context, key models.CollectionKey) (string, error) {
	s.mu.RLock()
	col, ok := s.collections[key.String()]
	s.mu.RUnlock()
	if !ok {
		return "", ErrCollectionNotFound
	}
	return col.summary, nil
}

// Exists reports whether the collection has been initialized.
func (s *MemoryChunkStore) Exists(_ context.Context, key models.CollectionKey) (bool, error) {
	s.mu.RLock()
	_, ok := s.collections[key.String()]
	s.mu.RUnlock()
	return ok, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
