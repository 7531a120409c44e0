package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ruchit2005/JustiX-AI-Model/models"
)

const (
	defaultHistoryWindow = 4

	notInitializedReply = "Case not initialized. Please upload the case file first."
)

// OrchestratorService runs one stateless debate turn end to end: retrieval
// fusion, violation detection, role selection, and reply synthesis. Every
// outcome is a usable reply; failures degrade, they never abort the turn.
type OrchestratorService struct {
	knowledge   *KnowledgeService
	retrieval   *RetrievalService
	detector    *DetectorService
	synthesizer *SynthesizerService

	legalCollection      string
	historyWindow        int
	countOffTopicAsError bool
	logger               *logrus.Logger
}

// OrchestratorOption is a functional option for OrchestratorService.
type OrchestratorOption func(*OrchestratorService)

// OrchestratorWithLegalCollection overrides the legal collection consulted
// on every turn.
func OrchestratorWithLegalCollection(name string) OrchestratorOption {
	return func(s *OrchestratorService) { s.legalCollection = name }
}

// OrchestratorWithHistoryWindow overrides how many trailing turns feed the
// detector and synthesizer.
func OrchestratorWithHistoryWindow(n int) OrchestratorOption {
	return func(s *OrchestratorService) { s.historyWindow = n }
}

// OrchestratorWithOffTopicAsError makes off-topic verdicts count toward
// the turn's errors_detected flag.
func OrchestratorWithOffTopicAsError(v bool) OrchestratorOption {
	return func(s *OrchestratorService) { s.countOffTopicAsError = v }
}

// OrchestratorWithLogger sets the logger.
func OrchestratorWithLogger(logger *logrus.Logger) OrchestratorOption {
	return func(s *OrchestratorService) { s.logger = logger }
}

// NewOrchestratorService wires the turn pipeline.
func NewOrchestratorService(knowledge *KnowledgeService, retrieval *RetrievalService, detector *DetectorService, synthesizer *SynthesizerService, opts ...OrchestratorOption) *OrchestratorService {
	s := &OrchestratorService{
		knowledge:       knowledge,
		retrieval:       retrieval,
		detector:        detector,
		synthesizer:     synthesizer,
		legalCollection: models.DefaultLegalCollection,
		historyWindow:   defaultHistoryWindow,
		logger:          logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessTurn executes one debate turn. The returned outcome always holds
// a speakable response; Degraded marks the cases where the pipeline fell
// back rather than completed cleanly.
func (s *OrchestratorService) ProcessTurn(ctx context.Context, caseID, statement string, history []models.ConversationTurn, turnNumber int) models.TurnOutcome {
	exists, err := s.knowledge.CaseExists(ctx, caseID)
	if err != nil {
		s.logger.WithError(err).WithField("case_id", caseID).Warn("Case existence check failed")
	}
	if err != nil || !exists {
		response := s.synthesizer.FallbackResponse()
		response.ReplyText = notInitializedReply
		return models.TurnOutcome{
			Response: response,
			Degraded: true,
			Reason:   "case_not_initialized",
		}
	}

	window := windowHistory(history, s.historyWindow)

	fusion := s.retrieval.Retrieve(ctx, statement, caseID, s.legalCollection)
	assessment := s.detector.Assess(ctx, statement, fusion.CaseChunks, fusion.LegalChunks, window)
	decision := Select(assessment)

	if decision.Role == models.RoleArbiter && len(fusion.LegalChunks) == 0 {
		s.logger.WithField("case_id", caseID).Warn("No legal context for arbiter, falling back to advocate")
		decision = Decision{Role: models.RoleAdvocate}
	}

	var (
		response models.AgentResponse
		synthErr error
	)
	switch decision.Role {
	case models.RoleArbiter:
		response, synthErr = s.synthesizer.SynthesizeArbiter(ctx, statement, fusion.LegalChunks, window, assessment, decision.Redirect)
	default:
		response, synthErr = s.synthesizer.SynthesizeAdvocate(ctx, statement, fusion.CaseChunks, fusion.LegalChunks, window)
	}

	if synthErr != nil {
		return models.TurnOutcome{
			Response: response,
			Degraded: true,
			Reason:   "synthesis_failure",
		}
	}

	response.ViolationDetected = s.violationFlag(assessment)

	s.logger.WithFields(logrus.Fields{
		"case_id":   caseID,
		"turn":      turnNumber,
		"role":      response.Role,
		"violation": response.ViolationDetected,
	}).Info("Turn processed")

	outcome := models.TurnOutcome{Response: response}
	if assessment.Rationale == models.DetectorParseFailureRationale {
		outcome.Degraded = true
		outcome.Reason = models.DetectorParseFailureRationale
	}
	return outcome
}

func (s *OrchestratorService) violationFlag(assessment models.ViolationAssessment) bool {
	switch assessment.Kind {
	case models.ViolationFactual, models.ViolationLegal:
		return true
	case models.ViolationOffTopic:
		return s.countOffTopicAsError
	default:
		return false
	}
}

func windowHistory(history []models.ConversationTurn, n int) []models.ConversationTurn {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// Emotion derives the presentation hint the conversational clients expect
// from the role and the reply text.
func Emotion(role models.AgentRole, reply string) string {
	if role == models.RoleArbiter {
		return "authoritative"
	}
	if role == models.RoleAdvocate {
		if strings.Contains(reply, "Objection") || strings.Contains(reply, "!") {
			return "aggressive"
		}
		if strings.Contains(reply, "?") {
			return "questioning"
		}
	}
	return "neutral"
}
