package models

import (
	"github.com/google/uuid"
)

// Partition identifies one of the two isolated knowledge domains.
type Partition string

const (
	// PartitionCase holds fact chunks specific to a single case.
	PartitionCase Partition = "case"
	// PartitionLegal holds shared legal rules and procedure chunks.
	PartitionLegal Partition = "legal"
)

// DefaultLegalCollection is the collection name used when a caller does not
// supply one for the legal store.
const DefaultLegalCollection = "legal_laws_guidelines"

// KnowledgeChunk is the unit of retrieval: a bounded span of source text plus
// its embedding. Chunks are immutable once stored; a partition is only ever
// replaced wholesale.
type KnowledgeChunk struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	SourceLabel string    `json:"source_label"`
	Partition   Partition `json:"partition"`
	Index       int       `json:"index"`
	Embedding   []float32 `json:"-"`
	Score       float64   `json:"score,omitempty"` // similarity to the query, set on retrieval
}

// CollectionKey addresses a chunk collection: the legal store is keyed by
// collection name, case stores by case id.
type CollectionKey struct {
	Partition Partition
	ID        string
}

func (k CollectionKey) String() string {
	return string(k.Partition) + "/" + k.ID
}
