package models

// TurnRole is the speaker of a conversation turn as supplied by the caller.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// ConversationTurn is one caller-owned message. The engine never stores
// these; the caller resends the full dialogue on every request.
type ConversationTurn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// ViolationKind classifies a user statement against the knowledge stores.
type ViolationKind string

const (
	ViolationNone     ViolationKind = "no_violation"
	ViolationFactual  ViolationKind = "factual_error"
	ViolationLegal    ViolationKind = "legal_or_ethical_violation"
	ViolationOffTopic ViolationKind = "off_topic"
)

// Severity orders violation kinds for precedence resolution. Legal and
// ethical violations outrank factual errors, which outrank off-topic drift.
func (k ViolationKind) Severity() int {
	switch k {
	case ViolationLegal:
		return 3
	case ViolationFactual:
		return 2
	case ViolationOffTopic:
		return 1
	default:
		return 0
	}
}

// DetectorParseFailureRationale marks assessments where the detector's
// verdict could not be parsed and the engine failed open.
const DetectorParseFailureRationale = "detector_parse_failure"

// ViolationAssessment is the detector's verdict for a single statement.
// Transient: produced and consumed within one turn.
type ViolationAssessment struct {
	Kind      ViolationKind `json:"kind"`
	Rationale string        `json:"rationale"`
}

// AgentRole is the persona that produced a reply.
type AgentRole string

const (
	// RoleAdvocate is the adversarial opposing counsel, grounded in case facts.
	RoleAdvocate AgentRole = "advocate"
	// RoleArbiter is the neutral judge, grounded only in legal rules.
	RoleArbiter AgentRole = "arbiter"
	// RoleSystem marks the fixed fallback reply emitted when synthesis fails.
	RoleSystem AgentRole = "system"
)

// WireName maps the internal role to the caller-facing agent_role value.
func (r AgentRole) WireName() string {
	switch r {
	case RoleAdvocate:
		return "lawyer"
	case RoleArbiter:
		return "judge"
	default:
		return "system"
	}
}

// Speaker maps the internal role to the legacy surface's speaker label.
func (r AgentRole) Speaker() string {
	if r == RoleAdvocate {
		return "Opposing Lawyer"
	}
	return "Judge"
}

// AgentResponse is the structured reply returned to the caller. Context
// fields list the source labels of the chunks supplied to the generation
// call, not a guess at what the model actually used. An arbiter response
// never carries case context.
type AgentResponse struct {
	Role              AgentRole `json:"role"`
	ReplyText         string    `json:"reply_text"`
	CaseContextUsed   []string  `json:"case_context_used"`
	LegalContextUsed  []string  `json:"legal_context_used"`
	ViolationDetected bool      `json:"violation_detected"`
}

// TurnOutcome is the tagged result of the turn pipeline: either a normal
// response or a degraded one produced by a fallback path. Callers can detect
// degradation from the response shape alone (system role, empty context),
// but the tag keeps the fallback an explicit value inside the engine.
type TurnOutcome struct {
	Response AgentResponse
	Degraded bool
	Reason   string
}
