// Package vectorstore persists document chunks with their embeddings and
// answers top-K cosine-similarity queries filtered by access scope.
package vectorstore

import (
	"context"
	"errors"

	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// ErrDimensionMismatch fails an upsert whose embeddings do not match the
// store's configured model dimension. This is the guard against mixing
// embedding model versions in one searchable corpus.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// DocumentMeta is the per-document metadata the store needs for access-scope
// filtering and citation building.
type DocumentMeta struct {
	ID          string
	Title       string
	OwnerID     string
	AccessScope string
}

// SearchResult pairs a chunk with its similarity score and source title.
type SearchResult struct {
	Chunk         models.DocumentChunk
	DocumentTitle string
	Score         float64
}

// Store is the vector store contract.
//
// UpsertChunks is atomic per document: either every chunk is stored (replacing
// any previous chunk set for the document) or none are, so a half-ingested
// document is never searchable.
//
// Search returns at most topK results ordered by cosine similarity descending,
// ties broken by ascending chunk index. The viewer's access scope is applied
// before truncation to topK, never after. A zero query vector scores 0 against
// everything by definition.
//
// DeleteDocument removes a document's chunks; deleting an unknown document is
// not an error.
type Store interface {
	UpsertChunks(ctx context.Context, meta DocumentMeta, chunks []models.DocumentChunk) error
	Search(ctx context.Context, queryVec []float32, topK int, viewer models.Viewer) ([]SearchResult, error)
	DeleteDocument(ctx context.Context, documentID string) error
}
