package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruchit2005/JustiX-AI-Model/models"
)

func TestDetectorParsesEachVerdict(t *testing.T) {
	cases := []struct {
		raw       string
		kind      models.ViolationKind
		rationale string
	}{
		{"LEGAL_VIOLATION: forcing a client to testify is unethical", models.ViolationLegal, "forcing a client to testify is unethical"},
		{"FACTUAL_ERROR: the witness statement says 10:43 PM", models.ViolationFactual, "the witness statement says 10:43 PM"},
		{"OFF_TOPIC: the statement discusses the weather", models.ViolationOffTopic, "the statement discusses the weather"},
		{"OK", models.ViolationNone, ""},
		{"ok.", models.ViolationNone, ""},
		{"legal_violation: lowercase labels still count", models.ViolationLegal, "lowercase labels still count"},
	}

	for _, tc := range cases {
		gen := &fakeGenerator{replies: []string{tc.raw}}
		detector := NewDetectorService(gen)

		assessment := detector.Assess(context.Background(), "statement", nil, nil, nil)
		assert.Equal(t, tc.kind, assessment.Kind, "raw: %q", tc.raw)
		assert.Equal(t, tc.rationale, assessment.Rationale, "raw: %q", tc.raw)
	}
}

func TestDetectorKeepsMostSevereVerdict(t *testing.T) {
	raw := "OFF_TOPIC: drifting\nFACTUAL_ERROR: wrong time\nLEGAL_VIOLATION: coerced testimony"
	detector := NewDetectorService(&fakeGenerator{replies: []string{raw}})

	assessment := detector.Assess(context.Background(), "statement", nil, nil, nil)
	assert.Equal(t, models.ViolationLegal, assessment.Kind)
	assert.Equal(t, "coerced testimony", assessment.Rationale)
}

func TestDetectorToleratesSurroundingProse(t *testing.T) {
	raw := "After review, my verdict is:\nFACTUAL_ERROR: contradicts the GPS record\nI hope this helps."
	detector := NewDetectorService(&fakeGenerator{replies: []string{raw}})

	assessment := detector.Assess(context.Background(), "statement", nil, nil, nil)
	assert.Equal(t, models.ViolationFactual, assessment.Kind)
}

func TestDetectorFailsOpenOnGenerationError(t *testing.T) {
	detector := NewDetectorService(&fakeGenerator{err: errors.New("quota exhausted")})

	assessment := detector.Assess(context.Background(), "statement", nil, nil, nil)
	assert.Equal(t, models.ViolationNone, assessment.Kind)
	assert.Equal(t, models.DetectorParseFailureRationale, assessment.Rationale)
}

func TestDetectorFailsOpenOnUnparseableOutput(t *testing.T) {
	detector := NewDetectorService(&fakeGenerator{replies: []string{"the attorney made an interesting point"}})

	assessment := detector.Assess(context.Background(), "statement", nil, nil, nil)
	assert.Equal(t, models.ViolationNone, assessment.Kind)
	assert.Equal(t, models.DetectorParseFailureRationale, assessment.Rationale)
}

func TestDetectorPromptCarriesContextAndStatement(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"OK"}}
	detector := NewDetectorService(gen)

	caseChunks := []models.KnowledgeChunk{{Text: "The defendant was at the warehouse."}}
	legalChunks := []models.KnowledgeChunk{{Text: "Counsel may not coerce testimony."}}
	history := []models.ConversationTurn{{Role: models.TurnRoleUser, Content: "My client is innocent."}}

	detector.Assess(context.Background(), "The GPS proves nothing.", caseChunks, legalChunks, history)

	call := gen.lastCall()
	require.NotEmpty(t, call.Prompt)
	assert.Contains(t, call.Prompt, "The defendant was at the warehouse.")
	assert.Contains(t, call.Prompt, "Counsel may not coerce testimony.")
	assert.Contains(t, call.Prompt, "User: My client is innocent.")
	assert.Contains(t, call.Prompt, "The GPS proves nothing.")
	assert.Zero(t, call.Temperature)
}

func TestDetectorPromptMarksMissingContext(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"OK"}}
	detector := NewDetectorService(gen)

	detector.Assess(context.Background(), "statement", nil, nil, nil)

	call := gen.lastCall()
	assert.Contains(t, call.Prompt, "(none available)")
	assert.Contains(t, call.Prompt, "(start of session)")
}
