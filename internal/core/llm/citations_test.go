package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielChahine0/Intern-Compass/internal/core/vectorstore"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

func sources() []vectorstore.SearchResult {
	page := 3
	return []vectorstore.SearchResult{
		{
			Chunk:         models.DocumentChunk{DocumentID: "d1", Text: "New hires accrue fifteen vacation days in their first year of employment."},
			DocumentTitle: "Employee Handbook",
		},
		{
			Chunk:         models.DocumentChunk{DocumentID: "d2", Text: "Expense reports must be submitted within thirty days of purchase.", Page: &page},
			DocumentTitle: "Finance Policy",
		},
	}
}

func TestMarkerStrategy(t *testing.T) {
	answer := "You get fifteen vacation days [1]. Expenses are due in thirty days [2]. See also [2]."
	cites := MarkerStrategy{}.Extract(answer, sources())
	require.Len(t, cites, 2, "repeated markers dedupe")
	assert.Equal(t, "Employee Handbook", cites[0].Title)
	assert.Equal(t, "d1", cites[0].DocumentID)
	assert.Equal(t, "Finance Policy", cites[1].Title)
	require.NotNil(t, cites[1].Page)
	assert.Equal(t, 3, *cites[1].Page)
}

func TestMarkerStrategyIgnoresOutOfRange(t *testing.T) {
	cites := MarkerStrategy{}.Extract("Nonsense [0] and [7] markers.", sources())
	assert.Empty(t, cites)
}

func TestSnippetStrategy(t *testing.T) {
	// The answer lifts a six-word run from source 1 only.
	answer := "According to policy, new hires accrue fifteen vacation days each year."
	cites := SnippetStrategy{WindowWords: 5}.Extract(answer, sources())
	require.Len(t, cites, 1)
	assert.Equal(t, "d1", cites[0].DocumentID)
}

func TestExtractCitationsPrefersMarkers(t *testing.T) {
	answer := "Expense reports must be submitted within thirty days of purchase [1]."
	cites := extractCitations(answer, sources(), DefaultStrategies())
	require.Len(t, cites, 1)
	// The marker names source 1 even though the phrasing matches source 2.
	assert.Equal(t, "d1", cites[0].DocumentID)
}

func TestExtractCitationsNoReliableAssociation(t *testing.T) {
	answer := "I could not find anything relevant, sorry."
	assert.Empty(t, extractCitations(answer, sources(), DefaultStrategies()))
	assert.Empty(t, extractCitations(answer, nil, DefaultStrategies()))
}

func TestCitationSnippetTruncated(t *testing.T) {
	long := make([]byte, 0, 400)
	for i := 0; i < 40; i++ {
		long = append(long, "lorem ipsum "...)
	}
	src := []vectorstore.SearchResult{{
		Chunk:         models.DocumentChunk{DocumentID: "d", Text: string(long)},
		DocumentTitle: "T",
	}}
	cites := MarkerStrategy{}.Extract("something [1]", src)
	require.Len(t, cites, 1)
	assert.LessOrEqual(t, len(cites[0].Snippet), snippetLen+len("…")+1)
}
