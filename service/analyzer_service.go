package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ruchit2005/JustiX-AI-Model/llm"
	"github.com/ruchit2005/JustiX-AI-Model/models"
)

const defaultAnalyzeTimeout = 60 * time.Second

// AnalyzerService scores a completed session transcript and produces the
// performance report.
type AnalyzerService struct {
	generator llm.TextGenerator
	timeout   time.Duration
	logger    *logrus.Logger
}

// AnalyzerOption is a functional option for AnalyzerService.
type AnalyzerOption func(*AnalyzerService)

// AnalyzerWithTimeout overrides the analysis timeout.
func AnalyzerWithTimeout(d time.Duration) AnalyzerOption {
	return func(s *AnalyzerService) { s.timeout = d }
}

// AnalyzerWithLogger sets the logger.
func AnalyzerWithLogger(logger *logrus.Logger) AnalyzerOption {
	return func(s *AnalyzerService) { s.logger = logger }
}

// NewAnalyzerService creates a transcript analyzer.
func NewAnalyzerService(generator llm.TextGenerator, opts ...AnalyzerOption) *AnalyzerService {
	s := &AnalyzerService{
		generator: generator,
		timeout:   defaultAnalyzeTimeout,
		logger:    logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze scores the transcript against the courtroom performance rubric.
func (s *AnalyzerService) Analyze(ctx context.Context, transcript []models.ConversationTurn) (*models.PerformanceReport, error) {
	if len(transcript) == 0 {
		return nil, fmt.Errorf("%w: transcript is empty", ErrAnalysisFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var conv strings.Builder
	for _, turn := range transcript {
		conv.WriteString(capitalize(string(turn.Role)))
		conv.WriteString(": ")
		conv.WriteString(turn.Content)
		conv.WriteString("\n\n")
	}

	prompt := fmt.Sprintf(`You are a senior legal educator evaluating a law student's courtroom performance.

TRANSCRIPT:
%s
Evaluate the student's performance using this rubric:
- Legal reasoning and argumentation (30%%)
- Use of case facts and evidence (25%%)
- Clarity and persuasiveness (20%%)
- Handling of objections and interventions (15%%)
- Professional demeanor (10%%)

Respond in EXACTLY this format:
SCORE: <number between 0 and 100>
FEEDBACK: <2-4 sentences of specific, constructive feedback>
SUMMARY: <1-2 sentences summarizing the session>`, conv.String())

	raw, err := retryOnce(ctx, retryBackoff, func(ctx context.Context) (string, error) {
		return s.generator.Generate(ctx, "", prompt, 0.3)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	report := parseAnalysis(raw)
	s.logger.WithField("score", report.Score).Info("Transcript analyzed")
	return report, nil
}

// parseAnalysis extracts the labeled sections, tolerating extra prose and
// missing labels. A missing score defaults to 75.
func parseAnalysis(raw string) *models.PerformanceReport {
	report := &models.PerformanceReport{Score: 75}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		switch {
		case strings.HasPrefix(upper, "SCORE:"):
			report.Score = parseScore(trimmed[len("SCORE:"):])
		case strings.HasPrefix(upper, "FEEDBACK:"):
			report.Feedback = collectBlock(trimmed[len("FEEDBACK:"):], lines[i+1:])
		case strings.HasPrefix(upper, "SUMMARY:"):
			report.Summary = collectBlock(trimmed[len("SUMMARY:"):], lines[i+1:])
		}
	}

	if report.Feedback == "" {
		report.Feedback = strings.TrimSpace(raw)
	}
	if report.Summary == "" {
		report.Summary = "Analysis completed. Review the detailed feedback above."
	}
	return report
}

// collectBlock gathers the text after a label plus any continuation lines
// up to the next label. The first argument is the labeled line with its
// label already stripped, so indentation in front of the label cannot
// shift the slice.
func collectBlock(first string, rest []string) string {
	parts := []string{strings.TrimSpace(first)}
	for _, line := range rest {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "SCORE:") || strings.HasPrefix(upper, "FEEDBACK:") || strings.HasPrefix(upper, "SUMMARY:") {
			break
		}
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func parseScore(s string) int {
	digits := strings.Builder{}
	for _, r := range strings.TrimSpace(s) {
		if r < '0' || r > '9' {
			break
		}
		digits.WriteRune(r)
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 75
	}
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
