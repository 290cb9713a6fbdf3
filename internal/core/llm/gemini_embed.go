package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/core/queue"
)

// GeminiEmbedder wraps the Gemini embedding model. Every call is funneled
// through the request queue so embedding traffic shares the one provider
// rate-limit budget with generation.
type GeminiEmbedder struct {
	client    *genai.Client
	modelName string
	dim       int
	queue     *queue.Queue
}

func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string, dim int, q *queue.Queue) (*GeminiEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	return &GeminiEmbedder{client: cl, modelName: modelName, dim: dim, queue: q}, nil
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// EmbedTexts batches all texts in one provider request via BatchEmbedContents.
// The returned vectors align positionally with the inputs.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	v, err := g.queue.Do(ctx, func(ctx context.Context) (any, error) {
		em := g.client.EmbeddingModel(g.modelName)
		batch := em.NewBatch()
		for _, t := range texts {
			batch.AddContent(genai.Text(t))
		}
		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, classifyProviderError(err)
		}
		out := make([][]float32, 0, len(resp.Embeddings))
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("gemini batch embed: %w", err)
	}

	vecs := v.([][]float32)
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("got %d vectors for %d texts: %w", len(vecs), len(texts), ErrMalformedEmbedding)
	}
	for i, vec := range vecs {
		if len(vec) == 0 {
			return nil, fmt.Errorf("empty vector at position %d: %w", i, ErrMalformedEmbedding)
		}
		if g.dim > 0 && len(vec) != g.dim {
			return nil, fmt.Errorf("vector at position %d has %d dimensions, want %d: %w",
				i, len(vec), g.dim, ErrMalformedEmbedding)
		}
	}
	return vecs, nil
}

func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)
