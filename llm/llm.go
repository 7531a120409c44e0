// Package llm defines the effect boundaries to the external embedding and
// text-generation services, and provides Gemini-backed implementations.
// The engine depends only on the interfaces; tests substitute deterministic
// fakes.
package llm

import "context"

// EmbedTask distinguishes document-side from query-side embeddings for
// providers that support task-specific modes.
type EmbedTask string

const (
	TaskDocument EmbedTask = "RETRIEVAL_DOCUMENT"
	TaskQuery    EmbedTask = "RETRIEVAL_QUERY"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error)
	Dimension() int
}

// TextGenerator produces a text completion for a prompt under an optional
// system instruction. Calls can take multiple seconds; implementations must
// honor ctx cancellation.
type TextGenerator interface {
	Generate(ctx context.Context, systemInstruction, prompt string, temperature float32) (string, error)
}
