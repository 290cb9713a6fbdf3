package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/core/queue"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// GenerationTuning mirrors the provider's generation config knobs.
type GenerationTuning struct {
	Temperature     float32
	TopK            int32
	TopP            float32
	MaxOutputTokens int32
}

// GeminiLLM wraps the Gemini chat model, assembling grounded prompts from
// retrieved chunks and extracting citations from the answers. All provider
// traffic goes through the request queue.
type GeminiLLM struct {
	client     *genai.Client
	modelName  string
	tuning     GenerationTuning
	queue      *queue.Queue
	strategies []CitationStrategy
}

func NewGeminiLLM(ctx context.Context, apiKey, modelName string, tuning GenerationTuning, q *queue.Queue, strategies ...CitationStrategy) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &GeminiLLM{client: cl, modelName: modelName, tuning: tuning, queue: q, strategies: strategies}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	history := truncateHistory(req.History, maxHistoryTurns)
	prompt := buildPrompt(req)

	v, err := g.queue.Do(ctx, func(ctx context.Context) (any, error) {
		m := g.client.GenerativeModel(g.modelName)
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
		m.SetTemperature(g.tuning.Temperature)
		m.SetTopP(g.tuning.TopP)
		if g.tuning.TopK > 0 {
			m.SetTopK(g.tuning.TopK)
		}
		if g.tuning.MaxOutputTokens > 0 {
			m.SetMaxOutputTokens(g.tuning.MaxOutputTokens)
		}

		cs := m.StartChat()
		cs.History = historyContents(history)

		resp, err := cs.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return nil, classifyProviderError(err)
		}
		return collectText(resp), nil
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	text := v.(string)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	return &core.GenerationResult{
		Text:      text,
		Citations: extractCitations(text, req.Sources, g.strategies),
	}, nil
}

// historyContents maps stored chat turns onto the provider's chat roles.
func historyContents(history []models.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return out
}

func collectText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

var _ core.LLMProvider = (*GeminiLLM)(nil)
