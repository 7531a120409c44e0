package service

import "github.com/ruchit2005/JustiX-AI-Model/models"

// Decision names the agent that should answer the turn. Redirect marks an
// off-topic intervention where the arbiter steers the session back to the
// case rather than sanctioning a violation.
type Decision struct {
	Role     models.AgentRole
	Redirect bool
}

// Select maps a violation assessment to the responding agent. The mapping
// is a pure function of the assessment: factual and legal violations draw
// the arbiter, off-topic statements draw the arbiter in redirect mode, and
// everything else goes to the opposing advocate.
func Select(assessment models.ViolationAssessment) Decision {
	switch assessment.Kind {
	case models.ViolationFactual, models.ViolationLegal:
		return Decision{Role: models.RoleArbiter}
	case models.ViolationOffTopic:
		return Decision{Role: models.RoleArbiter, Redirect: true}
	default:
		return Decision{Role: models.RoleAdvocate}
	}
}
