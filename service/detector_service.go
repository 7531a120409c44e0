package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ruchit2005/JustiX-AI-Model/llm"
	"github.com/ruchit2005/JustiX-AI-Model/models"
)

const (
	verdictLegal    = "LEGAL_VIOLATION:"
	verdictFactual  = "FACTUAL_ERROR:"
	verdictOffTopic = "OFF_TOPIC:"
	verdictOK       = "OK"
)

// DetectorService classifies each user statement against the retrieved
// context. It fails open: any generation or parse failure yields a
// no-violation assessment so the turn always proceeds.
type DetectorService struct {
	generator llm.TextGenerator
	timeout   time.Duration
	logger    *logrus.Logger
}

// DetectorOption is a functional option for DetectorService.
type DetectorOption func(*DetectorService)

// DetectorWithTimeout overrides the per-assessment timeout.
func DetectorWithTimeout(d time.Duration) DetectorOption {
	return func(s *DetectorService) { s.timeout = d }
}

// DetectorWithLogger sets the logger.
func DetectorWithLogger(logger *logrus.Logger) DetectorOption {
	return func(s *DetectorService) { s.logger = logger }
}

// NewDetectorService creates a violation detector.
func NewDetectorService(generator llm.TextGenerator, opts ...DetectorOption) *DetectorService {
	s := &DetectorService{
		generator: generator,
		timeout:   defaultQueryTimeout,
		logger:    logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assess classifies the statement. It never returns an error: failures
// produce a no-violation assessment carrying a parse-failure rationale.
func (s *DetectorService) Assess(ctx context.Context, statement string, caseChunks, legalChunks []models.KnowledgeChunk, history []models.ConversationTurn) models.ViolationAssessment {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	prompt := s.buildPrompt(statement, caseChunks, legalChunks, history)

	raw, err := s.generator.Generate(ctx, "", prompt, 0.0)
	if err != nil {
		s.logger.WithError(err).Warn("Violation detection call failed, proceeding without a verdict")
		return failOpen()
	}

	assessment, ok := parseVerdict(raw)
	if !ok {
		s.logger.WithField("output", truncateForLog(raw)).Warn("Unparseable detector output, proceeding without a verdict")
		return failOpen()
	}
	return assessment
}

func failOpen() models.ViolationAssessment {
	return models.ViolationAssessment{
		Kind:      models.ViolationNone,
		Rationale: models.DetectorParseFailureRationale,
	}
}

func (s *DetectorService) buildPrompt(statement string, caseChunks, legalChunks []models.KnowledgeChunk, history []models.ConversationTurn) string {
	var b strings.Builder

	b.WriteString("You are a strict legal accuracy checker reviewing an attorney's courtroom statement.\n\n")
	b.WriteString("CASE FACTS:\n")
	b.WriteString(joinChunkText(caseChunks))
	b.WriteString("\n\nLEGAL GUIDELINES:\n")
	b.WriteString(joinChunkText(legalChunks))
	b.WriteString("\n\nRECENT EXCHANGE:\n")
	b.WriteString(formatHistory(history))
	b.WriteString("\nATTORNEY'S STATEMENT:\n")
	b.WriteString(statement)
	b.WriteString("\n\nCRITICAL: Only flag statements that clearly contradict the case facts, violate the legal guidelines, or are unrelated to the case. DO NOT flag legal strategy, argumentation style, or statements of opinion.\n\n")
	b.WriteString("Respond with EXACTLY ONE line in one of these formats:\n")
	b.WriteString(verdictLegal + " <brief reason>\n")
	b.WriteString(verdictFactual + " <brief reason>\n")
	b.WriteString(verdictOffTopic + " <brief reason>\n")
	b.WriteString(verdictOK + "\n")

	return b.String()
}

// parseVerdict scans every line of the detector output and keeps the most
// severe verdict found. Returns ok=false when no line matches any format.
func parseVerdict(raw string) (models.ViolationAssessment, bool) {
	best := models.ViolationAssessment{}
	found := false

	for _, line := range strings.Split(raw, "\n") {
		assessment, ok := matchVerdictLine(strings.TrimSpace(line))
		if !ok {
			continue
		}
		if !found || assessment.Kind.Severity() > best.Kind.Severity() {
			best = assessment
		}
		found = true
	}

	return best, found
}

func matchVerdictLine(line string) (models.ViolationAssessment, bool) {
	if line == "" {
		return models.ViolationAssessment{}, false
	}
	upper := strings.ToUpper(line)

	switch {
	case strings.HasPrefix(upper, verdictLegal):
		return models.ViolationAssessment{
			Kind:      models.ViolationLegal,
			Rationale: strings.TrimSpace(line[len(verdictLegal):]),
		}, true
	case strings.HasPrefix(upper, verdictFactual):
		return models.ViolationAssessment{
			Kind:      models.ViolationFactual,
			Rationale: strings.TrimSpace(line[len(verdictFactual):]),
		}, true
	case strings.HasPrefix(upper, verdictOffTopic):
		return models.ViolationAssessment{
			Kind:      models.ViolationOffTopic,
			Rationale: strings.TrimSpace(line[len(verdictOffTopic):]),
		}, true
	case upper == verdictOK || upper == verdictOK+".":
		return models.ViolationAssessment{Kind: models.ViolationNone}, true
	}

	return models.ViolationAssessment{}, false
}

func joinChunkText(chunks []models.KnowledgeChunk) string {
	if len(chunks) == 0 {
		return "(none available)"
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, "\n\n")
}

func formatHistory(history []models.ConversationTurn) string {
	if len(history) == 0 {
		return "(start of session)\n"
	}
	var b strings.Builder
	for _, turn := range history {
		b.WriteString(capitalize(string(turn.Role)))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncateForLog(s string) string {
	if len(s) <= 200 {
		return s
	}
	return s[:200] + "..."
}
