package llm

import (
	"fmt"
	"strings"

	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

const systemInstruction = `You are Intern Compass, an onboarding assistant for new employees.
Answer questions using the numbered sources provided with each question.
When a source supports part of your answer, cite it inline with its bracketed number, e.g. [1].
If the sources do not cover the question, say that you could not find it in the company documents before answering from general knowledge.
Keep answers concise and practical.`

// maxHistoryTurns bounds how much conversation history is replayed to the
// model per request.
const maxHistoryTurns = 10

// buildPrompt renders the retrieved chunks as labeled context blocks followed
// by the question. Labels are 1-based so they line up with citation markers.
func buildPrompt(req core.GenerationRequest) string {
	var b strings.Builder
	if len(req.Sources) > 0 {
		b.WriteString("Sources:\n\n")
		for i, src := range req.Sources {
			fmt.Fprintf(&b, "[Source %d: %s", i+1, src.DocumentTitle)
			if src.Chunk.Page != nil {
				fmt.Fprintf(&b, ", page %d", *src.Chunk.Page)
			}
			b.WriteString("]\n")
			b.WriteString(src.Chunk.Text)
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("No matching company documents were found for this question.\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(req.Question)
	return b.String()
}

// truncateHistory keeps the most recent n messages.
func truncateHistory(history []models.ChatMessage, n int) []models.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
