package core

import (
	"context"

	"github.com/DanielChahine0/Intern-Compass/internal/core/vectorstore"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// EmbeddingProvider turns text into fixed-dimension vectors. Implementations
// must route every call through the request queue; callers never talk to the
// provider directly.
type EmbeddingProvider interface {
	// EmbedTexts returns one vector per input, positionally aligned.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedText embeds a single text.
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// GenerationRequest carries everything the generation client needs to build a
// grounded prompt: the question, the caller-truncated conversation history,
// and the retrieved chunks as citation sources.
type GenerationRequest struct {
	Question string
	History  []models.ChatMessage
	Sources  []vectorstore.SearchResult
}

// GenerationResult is the model's answer plus the citations extracted from it.
type GenerationResult struct {
	Text      string
	Citations []models.Citation
}

// LLMProvider generates a grounded answer. Like EmbeddingProvider, all calls
// go through the request queue.
type LLMProvider interface {
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}
