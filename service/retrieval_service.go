package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ruchit2005/JustiX-AI-Model/models"
)

const (
	defaultCaseTopK  = 3
	defaultLegalTopK = 2
)

// FusionResult carries the per-partition retrieval results for one turn.
// The Missing flags distinguish an uninitialized partition from an
// initialized one that simply matched nothing.
type FusionResult struct {
	CaseChunks  []models.KnowledgeChunk
	LegalChunks []models.KnowledgeChunk

	CaseMissing  bool
	LegalMissing bool
}

// RetrievalService runs the dual-partition retrieval for a turn: the case
// store and the legal store are queried independently and a failure on one
// side never suppresses results from the other.
type RetrievalService struct {
	knowledge *KnowledgeService
	caseTopK  int
	legalTopK int
	logger    *logrus.Logger
}

// RetrievalOption is a functional option for RetrievalService.
type RetrievalOption func(*RetrievalService)

// RetrievalWithTopK overrides the per-partition result counts.
func RetrievalWithTopK(caseTopK, legalTopK int) RetrievalOption {
	return func(s *RetrievalService) {
		s.caseTopK = caseTopK
		s.legalTopK = legalTopK
	}
}

// RetrievalWithLogger sets the logger.
func RetrievalWithLogger(logger *logrus.Logger) RetrievalOption {
	return func(s *RetrievalService) { s.logger = logger }
}

// NewRetrievalService creates a retrieval fusion service.
func NewRetrievalService(knowledge *KnowledgeService, opts ...RetrievalOption) *RetrievalService {
	s := &RetrievalService{
		knowledge: knowledge,
		caseTopK:  defaultCaseTopK,
		legalTopK: defaultLegalTopK,
		logger:    logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retrieve queries both partitions for the turn. Retrieval is best effort:
// an error on either side is logged, the corresponding chunk list stays
// empty, and the Missing flag records an uninitialized partition.
func (s *RetrievalService) Retrieve(ctx context.Context, query, caseID, legalCollection string) FusionResult {
	if legalCollection == "" {
		legalCollection = models.DefaultLegalCollection
	}

	var result FusionResult

	caseChunks, err := s.knowledge.Query(ctx, models.PartitionCase, caseID, query, s.caseTopK)
	switch {
	case errors.Is(err, ErrPartitionNotInitialized):
		result.CaseMissing = true
	case err != nil:
		s.logger.WithError(err).WithField("case_id", caseID).Warn("Case retrieval failed")
	default:
		result.CaseChunks = caseChunks
	}

	legalChunks, err := s.knowledge.Query(ctx, models.PartitionLegal, legalCollection, query, s.legalTopK)
	switch {
	case errors.Is(err, ErrPartitionNotInitialized):
		result.LegalMissing = true
	case err != nil:
		s.logger.WithError(err).WithField("collection", legalCollection).Warn("Legal retrieval failed")
	default:
		result.LegalChunks = legalChunks
	}

	return result
}
