package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/DanielChahine0/Intern-Compass/internal/core/vector"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// Memory is a brute-force in-memory Store. The corpus this system serves is
// bounded (hundreds to low thousands of chunks), so a linear cosine scan is
// adequate; it also pins down the exact ordering semantics the Postgres
// implementation mirrors in SQL.
type Memory struct {
	dim int

	mu   sync.RWMutex
	docs map[string]memoryDoc
}

type memoryDoc struct {
	meta   DocumentMeta
	chunks []models.DocumentChunk
}

// NewMemory returns an empty store expecting embeddings of the given
// dimension. dim <= 0 disables the dimension check.
func NewMemory(dim int) *Memory {
	return &Memory{dim: dim, docs: make(map[string]memoryDoc)}
}

func (m *Memory) UpsertChunks(ctx context.Context, meta DocumentMeta, chunks []models.DocumentChunk) error {
	// Validate the whole batch before touching state so a bad chunk can
	// never leave a partial set behind.
	for _, ch := range chunks {
		if m.dim > 0 && len(ch.Embedding) != m.dim {
			return fmt.Errorf("chunk %d has %d dimensions, store expects %d: %w",
				ch.Index, len(ch.Embedding), m.dim, ErrDimensionMismatch)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stored := make([]models.DocumentChunk, len(chunks))
	copy(stored, chunks)
	for i := range stored {
		stored[i].DocumentID = meta.ID
	}

	m.mu.Lock()
	m.docs[meta.ID] = memoryDoc{meta: meta, chunks: stored}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Search(ctx context.Context, queryVec []float32, topK int, viewer models.Viewer) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	var results []SearchResult
	for _, doc := range m.docs {
		if !viewer.CanSee(doc.meta.AccessScope, doc.meta.OwnerID) {
			continue
		}
		for _, ch := range doc.chunks {
			results = append(results, SearchResult{
				Chunk:         ch,
				DocumentTitle: doc.meta.Title,
				Score:         vector.Cosine(queryVec, ch.Embedding),
			})
		}
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chunk.Index != results[j].Chunk.Index {
			return results[i].Chunk.Index < results[j].Chunk.Index
		}
		return results[i].Chunk.DocumentID < results[j].Chunk.DocumentID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *Memory) DeleteDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.docs, documentID)
	m.mu.Unlock()
	return nil
}

var _ Store = (*Memory)(nil)
