package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruchit2005/JustiX-AI-Model/models"
)

func chunkWithLabel(text, label string) models.KnowledgeChunk {
	return models.KnowledgeChunk{Text: text, SourceLabel: label}
}

func TestSynthesizeAdvocateBuildsGroundedResponse(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Objection! The GPS record places your client at the scene."}}
	synth := NewSynthesizerService(gen)

	caseChunks := []models.KnowledgeChunk{chunkWithLabel("GPS at 10:43 PM", "case/c1#0")}
	legalChunks := []models.KnowledgeChunk{chunkWithLabel("Evidence rules", "legal/legal_laws_guidelines#2")}

	resp, err := synth.SynthesizeAdvocate(context.Background(), "My client was elsewhere.", caseChunks, legalChunks, nil)
	require.NoError(t, err)

	assert.Equal(t, models.RoleAdvocate, resp.Role)
	assert.Equal(t, "Objection! The GPS record places your client at the scene.", resp.ReplyText)
	assert.Equal(t, []string{"case/c1#0"}, resp.CaseContextUsed)
	assert.Equal(t, []string{"legal/legal_laws_guidelines#2"}, resp.LegalContextUsed)

	call := gen.lastCall()
	assert.Contains(t, call.System, "opposing counsel")
	assert.Contains(t, call.Prompt, "GPS at 10:43 PM")
	assert.Contains(t, call.Prompt, "My client was elsewhere.")
}

func TestSynthesizeArbiterCarriesNoCaseContext(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"I must intervene, counsel cannot compel testimony."}}
	synth := NewSynthesizerService(gen)

	legalChunks := []models.KnowledgeChunk{chunkWithLabel("No coerced testimony", "legal/legal_laws_guidelines#0")}
	assessment := models.ViolationAssessment{Kind: models.ViolationLegal, Rationale: "coerced testimony"}

	resp, err := synth.SynthesizeArbiter(context.Background(), "I will force my client to testify.", legalChunks, nil, assessment, false)
	require.NoError(t, err)

	assert.Equal(t, models.RoleArbiter, resp.Role)
	assert.Empty(t, resp.CaseContextUsed)
	assert.Equal(t, []string{"legal/legal_laws_guidelines#0"}, resp.LegalContextUsed)
	assert.True(t, resp.ViolationDetected)

	call := gen.lastCall()
	assert.Contains(t, call.System, "NEUTRAL judge")
	assert.Contains(t, call.Prompt, "coerced testimony")
	assert.NotContains(t, call.Prompt, "CASE FACTS")
}

func TestSynthesizeArbiterRedirectMode(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"Counsel, return to the matter before this court."}}
	synth := NewSynthesizerService(gen)

	resp, err := synth.SynthesizeArbiter(context.Background(), "Lovely weather today.", nil, nil,
		models.ViolationAssessment{Kind: models.ViolationOffTopic, Rationale: "weather"}, true)
	require.NoError(t, err)

	assert.False(t, resp.ViolationDetected)
	assert.Contains(t, gen.lastCall().Prompt, "drifted away")
}

func TestSynthesizerFallsBackOnGenerationError(t *testing.T) {
	synth := NewSynthesizerService(&fakeGenerator{err: errors.New("deadline exceeded")})

	resp, err := synth.SynthesizeAdvocate(context.Background(), "statement", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, models.RoleSystem, resp.Role)
	assert.Equal(t, fallbackReplyText, resp.ReplyText)
	assert.Empty(t, resp.CaseContextUsed)
	assert.Empty(t, resp.LegalContextUsed)
}

func TestClampToSentencesRespectsShortReplies(t *testing.T) {
	text := "Objection! The record shows otherwise."
	assert.Equal(t, text, clampToSentences(text, 35))
}

func TestClampToSentencesTrimsOnSentenceBoundary(t *testing.T) {
	text := "One two three four five. Six seven eight nine ten. Eleven twelve thirteen fourteen fifteen."
	clamped := clampToSentences(text, 10)
	assert.Equal(t, "One two three four five. Six seven eight nine ten.", clamped)
}

func TestClampToSentencesAlwaysKeepsFirstSentence(t *testing.T) {
	text := strings.Repeat("word ", 30) + "end."
	clamped := clampToSentences(text, 5)
	assert.NotEmpty(t, clamped)
	assert.Contains(t, clamped, "end.")
}

func TestSplitSentencesHandlesMixedTerminators(t *testing.T) {
	parts := splitSentences("Objection! Is that so? It is.")
	require.Len(t, parts, 3)
	assert.Equal(t, "Objection! ", parts[0])
	assert.Equal(t, "Is that so? ", parts[1])
	assert.Equal(t, "It is.", parts[2])
}

func TestSplitSentencesIgnoresInlinePeriods(t *testing.T) {
	parts := splitSentences("See section 10.43 of the code. Then stop.")
	require.Len(t, parts, 2)
	assert.Equal(t, "See section 10.43 of the code. ", parts[0])
}
