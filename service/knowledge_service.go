package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ruchit2005/JustiX-AI-Model/llm"
	"github.com/ruchit2005/JustiX-AI-Model/models"
	"github.com/ruchit2005/JustiX-AI-Model/repository"
)

const (
	defaultCaseChunkSize     = 1000
	defaultCaseChunkOverlap  = 200
	defaultLegalChunkSize    = 800
	defaultLegalChunkOverlap = 150

	defaultInitTimeout  = 120 * time.Second
	defaultQueryTimeout = 30 * time.Second

	retryBackoff = time.Second

	summaryInputLimit = 3000
)

// KnowledgeService is the knowledge partition manager. It owns ingestion
// (split, embed, atomic replace) and partition-scoped querying for both the
// case store and the legal store. A query can never cross partitions: the
// partition is part of the collection key at the storage layer.
type KnowledgeService struct {
	store     repository.ChunkStore
	embedder  llm.Embedder
	generator llm.TextGenerator

	caseSplitter  *TextSplitter
	legalSplitter *TextSplitter
	initTimeout   time.Duration
	queryTimeout  time.Duration
	logger        *logrus.Logger
}

// KnowledgeOption is a functional option for KnowledgeService.
type KnowledgeOption func(*KnowledgeService)

// KnowledgeWithCaseChunking overrides the case-partition chunk size/overlap.
func KnowledgeWithCaseChunking(size, overlap int) KnowledgeOption {
	return func(s *KnowledgeService) { s.caseSplitter = NewTextSplitter(size, overlap) }
}

// KnowledgeWithLegalChunking overrides the legal-partition chunk size/overlap.
func KnowledgeWithLegalChunking(size, overlap int) KnowledgeOption {
	return func(s *KnowledgeService) { s.legalSplitter = NewTextSplitter(size, overlap) }
}

// KnowledgeWithTimeouts overrides the per-call timeouts. Initialization
// tolerates longer timeouts than queries: it is one-shot bulk work while
// queries sit on the interactive turn path.
func KnowledgeWithTimeouts(init, query time.Duration) KnowledgeOption {
	return func(s *KnowledgeService) {
		s.initTimeout = init
		s.queryTimeout = query
	}
}

// KnowledgeWithLogger sets the logger.
func KnowledgeWithLogger(logger *logrus.Logger) KnowledgeOption {
	return func(s *KnowledgeService) { s.logger = logger }
}

// NewKnowledgeService creates a knowledge partition manager.
func NewKnowledgeService(store repository.ChunkStore, embedder llm.Embedder, generator llm.TextGenerator, opts ...KnowledgeOption) *KnowledgeService {
	s := &KnowledgeService{
		store:         store,
		embedder:      embedder,
		generator:     generator,
		caseSplitter:  NewTextSplitter(defaultCaseChunkSize, defaultCaseChunkOverlap),
		legalSplitter: NewTextSplitter(defaultLegalChunkSize, defaultLegalChunkOverlap),
		initTimeout:   defaultInitTimeout,
		queryTimeout:  defaultQueryTimeout,
		logger:        logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitializeLegal ingests a legal corpus into the named collection,
// replacing any prior content in one visible step. Returns the number of
// chunks processed.
func (s *KnowledgeService) InitializeLegal(ctx context.Context, collectionName, legalText string) (int, error) {
	if collectionName == "" {
		collectionName = models.DefaultLegalCollection
	}
	key := models.CollectionKey{Partition: models.PartitionLegal, ID: collectionName}

	chunks, err := s.ingest(ctx, key, s.legalSplitter, legalText)
	if err != nil {
		return 0, err
	}

	if err := s.store.Replace(ctx, key, chunks, ""); err != nil {
		return 0, fmt.Errorf("%w: storing legal collection %q: %v", ErrIngestionFailed, collectionName, err)
	}

	s.logger.WithFields(logrus.Fields{
		"collection": collectionName,
		"chunks":     len(chunks),
	}).Info("Legal collection initialized")

	return len(chunks), nil
}

// InitializeCase ingests a case file for the given case id and caches a
// three-sentence summary with the collection. Re-initializing the same id
// is a full replace.
func (s *KnowledgeService) InitializeCase(ctx context.Context, caseID, caseText string) (string, error) {
	key := models.CollectionKey{Partition: models.PartitionCase, ID: caseID}

	chunks, err := s.ingest(ctx, key, s.caseSplitter, caseText)
	if err != nil {
		return "", err
	}

	summary, err := s.summarizeCase(ctx, caseText)
	if err != nil {
		return "", fmt.Errorf("%w: summarizing case %q: %v", ErrIngestionFailed, caseID, err)
	}

	if err := s.store.Replace(ctx, key, chunks, summary); err != nil {
		return "", fmt.Errorf("%w: storing case collection %q: %v", ErrIngestionFailed, caseID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"case_id": caseID,
		"chunks":  len(chunks),
	}).Info("Case collection initialized")

	return summary, nil
}

// Query embeds the query text once and searches only the addressed
// partition. Returns ErrPartitionNotInitialized for unknown collections.
func (s *KnowledgeService) Query(ctx context.Context, partition models.Partition, id, queryText string, topK int) ([]models.KnowledgeChunk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	embedding, err := s.embedder.Embed(ctx, queryText, llm.TaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	key := models.CollectionKey{Partition: partition, ID: id}
	chunks, err := s.store.Search(ctx, key, embedding, topK)
	if err == repository.ErrCollectionNotFound {
		return nil, fmt.Errorf("%w: %s", ErrPartitionNotInitialized, key)
	}
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", key, err)
	}
	return chunks, nil
}

// CaseExists reports whether the case collection has been initialized.
func (s *KnowledgeService) CaseExists(ctx context.Context, caseID string) (bool, error) {
	return s.store.Exists(ctx, models.CollectionKey{Partition: models.PartitionCase, ID: caseID})
}

// CaseSummary returns the summary cached at case initialization.
func (s *KnowledgeService) CaseSummary(ctx context.Context, caseID string) (string, error) {
	summary, err := s.store.Summary(ctx, models.CollectionKey{Partition: models.PartitionCase, ID: caseID})
	if err == repository.ErrCollectionNotFound {
		return "", ErrPartitionNotInitialized
	}
	return summary, err
}

// ingest splits the text and embeds each chunk with the document task type.
// Embedding retries once on transient failure before surfacing the error.
func (s *KnowledgeService) ingest(ctx context.Context, key models.CollectionKey, splitter *TextSplitter, text string) ([]models.KnowledgeChunk, error) {
	ctx, cancel := context.WithTimeout(ctx, s.initTimeout)
	defer cancel()

	pieces := splitter.Split(text)
	if len(pieces) == 0 {
		return nil, fmt.Errorf("%w: no text to ingest for %s", ErrIngestionFailed, key)
	}

	chunks := make([]models.KnowledgeChunk, 0, len(pieces))
	for i, piece := range pieces {
		embedding, err := retryOnce(ctx, retryBackoff, func(ctx context.Context) ([]float32, error) {
			return s.embedder.Embed(ctx, piece, llm.TaskDocument)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: embedding chunk %d of %s: %v", ErrIngestionFailed, i, key, err)
		}

		chunks = append(chunks, models.KnowledgeChunk{
			ID:          uuid.New(),
			Text:        piece,
			SourceLabel: fmt.Sprintf("%s#%d", key.String(), i),
			Partition:   key.Partition,
			Index:       i,
			Embedding:   embedding,
		})
	}

	return chunks, nil
}

// summarizeCase asks the generator for a three-sentence case summary from
// the opening of the case file.
func (s *KnowledgeService) summarizeCase(ctx context.Context, caseText string) (string, error) {
	excerpt := caseText
	if len(excerpt) > summaryInputLimit {
		excerpt = excerpt[:runeBoundaryBefore(excerpt, summaryInputLimit)]
	}

	prompt := fmt.Sprintf(`You are a legal expert. Summarize this legal case in 3 clear sentences.
Focus on: 1) The parties involved, 2) The main legal issue, 3) The key facts.

Case text: %s`, excerpt)

	return retryOnce(ctx, retryBackoff, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, "", prompt, 0.3)
	})
}
