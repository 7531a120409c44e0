package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruchit2005/JustiX-AI-Model/models"
	"github.com/ruchit2005/JustiX-AI-Model/repository"
)

const testCaseID = "case-123"

// newTestPipeline wires the full turn pipeline over the in-memory store.
// The detector and synthesizer get independent scripted generators.
func newTestPipeline(t *testing.T, detectorGen, synthGen *fakeGenerator, withLegal bool) *OrchestratorService {
	t.Helper()

	store := repository.NewMemoryChunkStore()
	ctx := context.Background()

	caseKey := models.CollectionKey{Partition: models.PartitionCase, ID: testCaseID}
	require.NoError(t, store.Replace(ctx, caseKey, []models.KnowledgeChunk{
		{Text: "GPS data places the defendant at the scene at 10:43 PM.", SourceLabel: "case/case-123#0", Index: 0, Embedding: []float32{1, 0, 0}},
		{Text: "The warehouse alarm was triggered at 10:45 PM.", SourceLabel: "case/case-123#1", Index: 1, Embedding: []float32{1, 0, 0}},
	}, "A burglary case."))

	if withLegal {
		legalKey := models.CollectionKey{Partition: models.PartitionLegal, ID: models.DefaultLegalCollection}
		require.NoError(t, store.Replace(ctx, legalKey, []models.KnowledgeChunk{
			{Text: "Counsel may not compel a client to testify.", SourceLabel: "legal/legal_laws_guidelines#0", Index: 0, Embedding: []float32{1, 0, 0}},
		}, ""))
	}

	knowledge := NewKnowledgeService(store, &fakeEmbedder{}, &fakeGenerator{replies: []string{"summary"}})
	retrieval := NewRetrievalService(knowledge)
	detector := NewDetectorService(detectorGen)
	synthesizer := NewSynthesizerService(synthGen)

	return NewOrchestratorService(knowledge, retrieval, detector, synthesizer)
}

func TestProcessTurnAdvocatePath(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"OK"}}
	synthGen := &fakeGenerator{replies: []string{"Objection! The GPS places your client at the scene at 10:43 PM."}}
	orch := newTestPipeline(t, detectorGen, synthGen, true)

	outcome := orch.ProcessTurn(context.Background(), testCaseID, "My client was not at the scene.", nil, 1)

	assert.False(t, outcome.Degraded)
	assert.Equal(t, models.RoleAdvocate, outcome.Response.Role)
	assert.False(t, outcome.Response.ViolationDetected)
	assert.Equal(t, []string{"case/case-123#0", "case/case-123#1"}, outcome.Response.CaseContextUsed)
	assert.Equal(t, []string{"legal/legal_laws_guidelines#0"}, outcome.Response.LegalContextUsed)
}

func TestProcessTurnArbiterOnViolation(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"LEGAL_VIOLATION: counsel cannot compel the client to testify"}}
	synthGen := &fakeGenerator{replies: []string{"I must intervene, counsel. A client cannot be compelled to testify."}}
	orch := newTestPipeline(t, detectorGen, synthGen, true)

	outcome := orch.ProcessTurn(context.Background(), testCaseID, "I will force my client to testify.", nil, 2)

	assert.False(t, outcome.Degraded)
	assert.Equal(t, models.RoleArbiter, outcome.Response.Role)
	assert.True(t, outcome.Response.ViolationDetected)
	assert.Empty(t, outcome.Response.CaseContextUsed)
	assert.NotEmpty(t, outcome.Response.LegalContextUsed)
}

func TestProcessTurnOffTopicRedirect(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"OFF_TOPIC: the statement is about the weather"}}
	synthGen := &fakeGenerator{replies: []string{"Counsel, return to the matter before this court."}}
	orch := newTestPipeline(t, detectorGen, synthGen, true)

	outcome := orch.ProcessTurn(context.Background(), testCaseID, "Lovely weather we are having.", nil, 3)

	assert.False(t, outcome.Degraded)
	assert.Equal(t, models.RoleArbiter, outcome.Response.Role)
	assert.False(t, outcome.Response.ViolationDetected)
}

func TestProcessTurnOffTopicCountsWhenConfigured(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"OFF_TOPIC: irrelevant"}}
	synthGen := &fakeGenerator{replies: []string{"Counsel, focus."}}
	orch := newTestPipeline(t, detectorGen, synthGen, true)
	OrchestratorWithOffTopicAsError(true)(orch)

	outcome := orch.ProcessTurn(context.Background(), testCaseID, "Unrelated.", nil, 1)
	assert.True(t, outcome.Response.ViolationDetected)
}

func TestProcessTurnCaseNotInitialized(t *testing.T) {
	orch := newTestPipeline(t, &fakeGenerator{}, &fakeGenerator{}, true)

	outcome := orch.ProcessTurn(context.Background(), "unknown-case", "Any statement.", nil, 1)

	assert.True(t, outcome.Degraded)
	assert.Equal(t, "case_not_initialized", outcome.Reason)
	assert.Equal(t, models.RoleSystem, outcome.Response.Role)
	assert.Equal(t, notInitializedReply, outcome.Response.ReplyText)
}

func TestProcessTurnArbiterWithoutLegalContextFallsBackToAdvocate(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"LEGAL_VIOLATION: coerced testimony"}}
	synthGen := &fakeGenerator{replies: []string{"Objection! That approach is improper."}}
	orch := newTestPipeline(t, detectorGen, synthGen, false)

	outcome := orch.ProcessTurn(context.Background(), testCaseID, "I will force my client to testify.", nil, 1)

	assert.False(t, outcome.Degraded)
	assert.Equal(t, models.RoleAdvocate, outcome.Response.Role)
	// The verdict still counts even though the judge could not speak.
	assert.True(t, outcome.Response.ViolationDetected)
}

func TestProcessTurnDegradesOnSynthesisFailure(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"OK"}}
	synthGen := &fakeGenerator{err: errors.New("model unavailable")}
	orch := newTestPipeline(t, detectorGen, synthGen, true)

	outcome := orch.ProcessTurn(context.Background(), testCaseID, "Statement.", nil, 1)

	assert.True(t, outcome.Degraded)
	assert.Equal(t, "synthesis_failure", outcome.Reason)
	assert.Equal(t, models.RoleSystem, outcome.Response.Role)
	assert.Equal(t, fallbackReplyText, outcome.Response.ReplyText)
}

func TestProcessTurnMarksDetectorParseFailure(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"no verdict here"}}
	synthGen := &fakeGenerator{replies: []string{"Objection! Continue."}}
	orch := newTestPipeline(t, detectorGen, synthGen, true)

	outcome := orch.ProcessTurn(context.Background(), testCaseID, "Statement.", nil, 1)

	assert.True(t, outcome.Degraded)
	assert.Equal(t, models.DetectorParseFailureRationale, outcome.Reason)
	assert.Equal(t, models.RoleAdvocate, outcome.Response.Role)
}

func TestProcessTurnWindowsHistory(t *testing.T) {
	detectorGen := &fakeGenerator{replies: []string{"OK"}}
	synthGen := &fakeGenerator{replies: []string{"Objection!"}}
	orch := newTestPipeline(t, detectorGen, synthGen, true)

	history := []models.ConversationTurn{
		{Role: models.TurnRoleUser, Content: "turn one"},
		{Role: models.TurnRoleAssistant, Content: "turn two"},
		{Role: models.TurnRoleUser, Content: "turn three"},
		{Role: models.TurnRoleAssistant, Content: "turn four"},
		{Role: models.TurnRoleUser, Content: "turn five"},
	}
	orch.ProcessTurn(context.Background(), testCaseID, "Statement.", history, 6)

	prompt := detectorGen.lastCall().Prompt
	assert.NotContains(t, prompt, "turn one")
	assert.Contains(t, prompt, "turn two")
	assert.Contains(t, prompt, "turn five")
}

func TestEmotionHeuristics(t *testing.T) {
	assert.Equal(t, "authoritative", Emotion(models.RoleArbiter, "Order in the court."))
	assert.Equal(t, "aggressive", Emotion(models.RoleAdvocate, "Objection, your honor."))
	assert.Equal(t, "aggressive", Emotion(models.RoleAdvocate, "That is absurd!"))
	assert.Equal(t, "questioning", Emotion(models.RoleAdvocate, "Where was your client?"))
	assert.Equal(t, "neutral", Emotion(models.RoleAdvocate, "The record speaks for itself."))
	assert.Equal(t, "neutral", Emotion(models.RoleSystem, "Please continue."))
}
