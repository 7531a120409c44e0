package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const (
	defaultGenerationModel = "gemini-2.0-flash"
	defaultEmbeddingModel  = "text-embedding-004"
	defaultDimension       = 768
)

// ErrEmptyCompletion is returned when the API answers successfully but with
// no usable text (safety block, empty candidates).
var ErrEmptyCompletion = errors.New("generation returned no content")

// GeminiClient implements Embedder and TextGenerator against the Gemini API.
type GeminiClient struct {
	client          *genai.Client
	generationModel string
	embeddingModel  string
	dimension       int
	logger          *logrus.Logger
}

// GeminiOption configures a GeminiClient.
type GeminiOption func(*GeminiClient)

// WithGenerationModel overrides the generation model name.
func WithGenerationModel(model string) GeminiOption {
	return func(c *GeminiClient) { c.generationModel = model }
}

// WithEmbeddingModel overrides the embedding model name.
func WithEmbeddingModel(model string) GeminiOption {
	return func(c *GeminiClient) { c.embeddingModel = model }
}

// WithDimension sets the embedding dimension reported by the client.
func WithDimension(dim int) GeminiOption {
	return func(c *GeminiClient) { c.dimension = dim }
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) GeminiOption {
	return func(c *GeminiClient) { c.logger = logger }
}

// NewGeminiClient creates a Gemini-backed embedder and generator.
func NewGeminiClient(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	c := &GeminiClient{
		client:          client,
		generationModel: defaultGenerationModel,
		embeddingModel:  defaultEmbeddingModel,
		dimension:       defaultDimension,
		logger:          logrus.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Dimension returns the embedding dimension.
func (c *GeminiClient) Dimension() int {
	return c.dimension
}

// Embed generates a unit-normalized embedding for the given text.
func (c *GeminiClient) Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error) {
	em := c.client.EmbeddingModel(c.embeddingModel)
	if task == TaskQuery {
		em.TaskType = genai.TaskTypeRetrievalQuery
	} else {
		em.TaskType = genai.TaskTypeRetrievalDocument
	}

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	return normalize(res.Embedding.Values), nil
}

// Generate produces a completion for the prompt, concatenating all returned
// parts. Non-STOP finish reasons are logged but tolerated as long as some
// text came back.
func (c *GeminiClient) Generate(ctx context.Context, systemInstruction, prompt string, temperature float32) (string, error) {
	model := c.client.GenerativeModel(c.generationModel)
	model.SetTemperature(temperature)
	if systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyCompletion
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			c.logger.WithField("finish_reason", cand.FinishReason.String()).
				Warn("candidate finished abnormally")
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", ErrEmptyCompletion
	}
	return result, nil
}

// normalize scales a vector to unit length so cosine and dot-product
// similarity agree across the deployment.
func normalize(values []float32) []float32 {
	var norm float64
	for _, v := range values {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return values
	}
	inv := 1.0 / math.Sqrt(norm)
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(float64(v) * inv)
	}
	return out
}
