package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

func TestBuildPromptLabelsSources(t *testing.T) {
	page := 12
	req := core.GenerationRequest{
		Question: "How do I enroll in benefits?",
		Sources:  sources(),
	}
	req.Sources[1].Chunk.Page = &page

	prompt := buildPrompt(req)
	assert.Contains(t, prompt, "[Source 1: Employee Handbook]")
	assert.Contains(t, prompt, "[Source 2: Finance Policy, page 12]")
	assert.Contains(t, prompt, "New hires accrue fifteen vacation days")
	assert.True(t, strings.HasSuffix(prompt, "Question: How do I enroll in benefits?"))
	assert.Less(t, strings.Index(prompt, "[Source 1"), strings.Index(prompt, "[Source 2"), "sources keep retrieval order")
}

func TestBuildPromptEmptyCorpusFallback(t *testing.T) {
	prompt := buildPrompt(core.GenerationRequest{Question: "anything?"})
	assert.Contains(t, prompt, "No matching company documents were found")
	assert.Contains(t, prompt, "Question: anything?")
}

func TestTruncateHistory(t *testing.T) {
	var history []models.ChatMessage
	for i := 0; i < 25; i++ {
		history = append(history, models.ChatMessage{Content: fmt.Sprintf("turn %d", i)})
	}

	got := truncateHistory(history, maxHistoryTurns)
	require.Len(t, got, maxHistoryTurns)
	assert.Equal(t, "turn 15", got[0].Content)
	assert.Equal(t, "turn 24", got[len(got)-1].Content)

	short := history[:3]
	assert.Equal(t, short, truncateHistory(short, maxHistoryTurns))
}

func TestHistoryContentsRoles(t *testing.T) {
	contents := historyContents([]models.ChatMessage{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	})
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
}
