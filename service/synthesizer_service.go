package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"github.com/ruchit2005/JustiX-AI-Model/llm"
	"github.com/ruchit2005/JustiX-AI-Model/models"
)

const (
	defaultAdvocateMaxWords = 35
	defaultArbiterMaxWords  = 40

	fallbackReplyText = "The court is experiencing a technical issue processing this exchange. Please restate your argument and continue."
)

// SynthesizerService turns a retrieval result and a role decision into the
// agent's spoken reply. The arbiter path takes no case chunks at all, so a
// judge reply cannot leak case facts it was never given.
type SynthesizerService struct {
	generator llm.TextGenerator

	advocateMaxWords int
	arbiterMaxWords  int
	temperature      float32
	timeout          time.Duration
	logger           *logrus.Logger
}

// SynthesizerOption is a functional option for SynthesizerService.
type SynthesizerOption func(*SynthesizerService)

// SynthesizerWithMaxWords overrides the per-role word caps.
func SynthesizerWithMaxWords(advocate, arbiter int) SynthesizerOption {
	return func(s *SynthesizerService) {
		s.advocateMaxWords = advocate
		s.arbiterMaxWords = arbiter
	}
}

// SynthesizerWithTemperature overrides the generation temperature.
func SynthesizerWithTemperature(t float32) SynthesizerOption {
	return func(s *SynthesizerService) { s.temperature = t }
}

// SynthesizerWithTimeout overrides the per-synthesis timeout.
func SynthesizerWithTimeout(d time.Duration) SynthesizerOption {
	return func(s *SynthesizerService) { s.timeout = d }
}

// SynthesizerWithLogger sets the logger.
func SynthesizerWithLogger(logger *logrus.Logger) SynthesizerOption {
	return func(s *SynthesizerService) { s.logger = logger }
}

// NewSynthesizerService creates a reply synthesizer.
func NewSynthesizerService(generator llm.TextGenerator, opts ...SynthesizerOption) *SynthesizerService {
	s := &SynthesizerService{
		generator:        generator,
		advocateMaxWords: defaultAdvocateMaxWords,
		arbiterMaxWords:  defaultArbiterMaxWords,
		temperature:      0.7,
		timeout:          defaultQueryTimeout,
		logger:           logrus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FallbackResponse is the reply used when synthesis cannot complete. The
// session keeps going with a neutral courtroom line instead of an error.
func (s *SynthesizerService) FallbackResponse() models.AgentResponse {
	return models.AgentResponse{
		Role:             models.RoleSystem,
		ReplyText:        fallbackReplyText,
		CaseContextUsed:  []string{},
		LegalContextUsed: []string{},
	}
}

// SynthesizeAdvocate produces the opposing counsel's reply grounded in
// both partitions.
func (s *SynthesizerService) SynthesizeAdvocate(ctx context.Context, statement string, caseChunks, legalChunks []models.KnowledgeChunk, history []models.ConversationTurn) (models.AgentResponse, error) {
	system := "You are an aggressive and skilled opposing counsel in a legal case."

	var b strings.Builder
	b.WriteString("CASE FACTS:\n")
	b.WriteString(joinChunkText(caseChunks))
	b.WriteString("\n\nLEGAL GUIDELINES:\n")
	b.WriteString(joinChunkText(legalChunks))
	b.WriteString("\n\nCONVERSATION HISTORY:\n")
	b.WriteString(formatHistory(history))
	b.WriteString("\nUSER'S CURRENT ARGUMENT:\n")
	b.WriteString(statement)
	b.WriteString("\n\nRespond as the opposing lawyer:\n")
	b.WriteString("- Counter their argument using the case facts and legal guidelines above\n")
	b.WriteString("- Be sharp and confident, open with \"Objection!\" when their argument is weak\n")
	b.WriteString("- Stay strictly grounded in the material provided\n")
	b.WriteString(fmt.Sprintf("- Maximum %d words\n", s.advocateMaxWords))

	reply, err := s.generate(ctx, system, b.String())
	if err != nil {
		return s.FallbackResponse(), err
	}

	return models.AgentResponse{
		Role:             models.RoleAdvocate,
		ReplyText:        clampToSentences(reply, s.advocateMaxWords),
		CaseContextUsed:  sourceLabels(caseChunks),
		LegalContextUsed: sourceLabels(legalChunks),
	}, nil
}

// SynthesizeArbiter produces the judge's intervention. It deliberately
// accepts no case chunks: the judge rules on conduct and procedure only.
func (s *SynthesizerService) SynthesizeArbiter(ctx context.Context, statement string, legalChunks []models.KnowledgeChunk, history []models.ConversationTurn, assessment models.ViolationAssessment, redirect bool) (models.AgentResponse, error) {
	system := "You are a fair and NEUTRAL judge presiding over this legal case."

	var b strings.Builder
	b.WriteString("LEGAL GUIDELINES:\n")
	b.WriteString(joinChunkText(legalChunks))
	b.WriteString("\n\nCONVERSATION HISTORY:\n")
	b.WriteString(formatHistory(history))
	b.WriteString("\nATTORNEY'S STATEMENT:\n")
	b.WriteString(statement)
	if redirect {
		b.WriteString("\n\nThe attorney has drifted away from the matter at hand.\n")
		b.WriteString("Address the attorney as \"Counsel,\" and firmly steer the discussion back to the case.\n")
	} else {
		b.WriteString("\n\nThe statement raises a concern: ")
		b.WriteString(assessment.Rationale)
		b.WriteString("\n")
		b.WriteString("Open with \"I must intervene,\" and rule on the issue, citing the relevant guideline.\n")
	}
	b.WriteString("- Do NOT discuss the facts of the case, only conduct and procedure\n")
	b.WriteString(fmt.Sprintf("- Maximum %d words\n", s.arbiterMaxWords))

	reply, err := s.generate(ctx, system, b.String())
	if err != nil {
		return s.FallbackResponse(), err
	}

	return models.AgentResponse{
		Role:              models.RoleArbiter,
		ReplyText:         clampToSentences(reply, s.arbiterMaxWords),
		CaseContextUsed:   []string{},
		LegalContextUsed:  sourceLabels(legalChunks),
		ViolationDetected: !redirect,
	}, nil
}

func (s *SynthesizerService) generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reply, err := s.generator.Generate(ctx, system, prompt, s.temperature)
	if err != nil {
		s.logger.WithError(err).Warn("Reply synthesis failed")
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func sourceLabels(chunks []models.KnowledgeChunk) []string {
	labels := make([]string, len(chunks))
	for i, c := range chunks {
		labels[i] = c.SourceLabel
	}
	return labels
}

// clampToSentences trims the reply to the word cap on a sentence boundary,
// always keeping at least the first sentence.
func clampToSentences(text string, maxWords int) string {
	if countWords(text) <= maxWords {
		return text
	}

	sentences := splitSentences(text)
	var b strings.Builder
	words := 0
	for i, sentence := range sentences {
		n := countWords(sentence)
		if i > 0 && words+n > maxWords {
			break
		}
		b.WriteString(sentence)
		words += n
	}
	return strings.TrimSpace(b.String())
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		atEnd := i == len(runes)-1
		if !atEnd && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		end := i + 1
		for end < len(runes) && unicode.IsSpace(runes[end]) {
			end++
		}
		sentences = append(sentences, string(runes[start:end]))
		start = end
		i = end - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
