package llm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/DanielChahine0/Intern-Compass/internal/core/vectorstore"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// snippetLen caps how much chunk text a citation carries.
const snippetLen = 160

// CitationStrategy associates an answer back to the source chunks it drew
// from. Strategies are best-effort: returning no citations is always better
// than guessing.
type CitationStrategy interface {
	Extract(answer string, sources []vectorstore.SearchResult) []models.Citation
}

// DefaultStrategies tries explicit [N] markers first and falls back to
// snippet containment.
func DefaultStrategies() []CitationStrategy {
	return []CitationStrategy{MarkerStrategy{}, SnippetStrategy{WindowWords: 6}}
}

// extractCitations runs strategies in order and keeps the first non-empty
// result.
func extractCitations(answer string, sources []vectorstore.SearchResult, strategies []CitationStrategy) []models.Citation {
	if len(sources) == 0 {
		return nil
	}
	for _, s := range strategies {
		if cites := s.Extract(answer, sources); len(cites) > 0 {
			return cites
		}
	}
	return nil
}

var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// MarkerStrategy reads the model's own bracketed source references. Labels
// are 1-based per buildPrompt; out-of-range markers are ignored rather than
// guessed at.
type MarkerStrategy struct{}

func (MarkerStrategy) Extract(answer string, sources []vectorstore.SearchResult) []models.Citation {
	seen := make(map[int]bool)
	var cites []models.Citation
	for _, m := range markerPattern.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(sources) || seen[n] {
			continue
		}
		seen[n] = true
		cites = append(cites, citationFor(sources[n-1]))
	}
	return cites
}

// SnippetStrategy cites any source whose text shares a run of WindowWords
// consecutive words with the answer, the sign that the model lifted phrasing
// from that chunk.
type SnippetStrategy struct {
	WindowWords int
}

func (s SnippetStrategy) Extract(answer string, sources []vectorstore.SearchResult) []models.Citation {
	window := s.WindowWords
	if window <= 0 {
		window = 6
	}
	normAnswer := " " + strings.Join(strings.Fields(strings.ToLower(answer)), " ") + " "

	var cites []models.Citation
	for _, src := range sources {
		words := strings.Fields(strings.ToLower(src.Chunk.Text))
		if len(words) < window {
			continue
		}
		for i := 0; i+window <= len(words); i++ {
			phrase := " " + strings.Join(words[i:i+window], " ") + " "
			if strings.Contains(normAnswer, phrase) {
				cites = append(cites, citationFor(src))
				break
			}
		}
	}
	return cites
}

func citationFor(src vectorstore.SearchResult) models.Citation {
	snippet := src.Chunk.Text
	if runes := []rune(snippet); len(runes) > snippetLen {
		snippet = strings.TrimSpace(string(runes[:snippetLen])) + "…"
	}
	return models.Citation{
		DocumentID: src.Chunk.DocumentID,
		Title:      src.DocumentTitle,
		Snippet:    snippet,
		Page:       src.Chunk.Page,
	}
}
