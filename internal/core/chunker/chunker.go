// Package chunker splits raw document text into overlapping fixed-size token
// windows, the unit of embedding and retrieval.
package chunker

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrInvalidChunking is returned when the chunk size / overlap combination
// cannot produce forward progress.
var ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

// Config holds the chunking parameters, both counted in tokens.
type Config struct {
	ChunkSize int // tokens per chunk (default 512)
	Overlap   int // tokens shared with the previous chunk (default 50)
}

// Chunk is one token window over the source text. Text is an exact slice of
// the source between StartOffset and EndOffset, so concatenating chunks in
// index order and dropping the duplicated overlap regions reconstructs the
// tokenized span of the source.
type Chunk struct {
	Index       int
	StartToken  int
	EndToken    int // exclusive
	StartOffset int // byte offset of the first token
	EndOffset   int // byte offset just past the last token
	Text        string
	TokenCount  int
}

type token struct {
	start int
	end   int
}

// Split cuts text into overlapping token windows. Each chunk after the first
// starts ChunkSize-Overlap tokens after the previous chunk's start; the last
// chunk may be shorter. Empty input yields zero chunks. Split is a pure
// function of its inputs.
func Split(text string, cfg Config) ([]Chunk, error) {
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", cfg.ChunkSize, ErrInvalidChunking)
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("overlap %d with chunk size %d: %w", cfg.Overlap, cfg.ChunkSize, ErrInvalidChunking)
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	step := cfg.ChunkSize - cfg.Overlap
	var chunks []Chunk
	for start := 0; start < len(tokens); start += step {
		end := start + cfg.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, Chunk{
			Index:       len(chunks),
			StartToken:  start,
			EndToken:    end,
			StartOffset: tokens[start].start,
			EndOffset:   tokens[end-1].end,
			Text:        text[tokens[start].start:tokens[end-1].end],
			TokenCount:  end - start,
		})
		if end == len(tokens) {
			break
		}
	}
	return chunks, nil
}

// tokenize records the byte span of every whitespace-delimited token.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, token{start: start, end: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{start: start, end: len(text)})
	}
	return tokens
}
