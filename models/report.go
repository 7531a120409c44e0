package models

// PerformanceReport scores a full transcript against the training rubric.
// Computed once per submitted transcript; never persisted by the engine.
type PerformanceReport struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Summary  string `json:"summary"`
}
