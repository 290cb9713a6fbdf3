package vectorstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/DanielChahine0/Intern-Compass/internal/core/vector"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// Postgres is the durable Store backed by pgvector. Document metadata lives in
// the documents table, so Search joins it for scope filtering and titles.
type Postgres struct {
	db  *sql.DB
	dim int
}

// NewPostgres wraps an existing connection pool. dim must match the vector
// column width declared in the schema.
func NewPostgres(db *sql.DB, dim int) *Postgres {
	return &Postgres{db: db, dim: dim}
}

// UpsertChunks replaces the document's chunk set inside one transaction. A
// per-document advisory lock keeps a concurrent DeleteDocument for the same
// document from interleaving with the replace.
func (p *Postgres) UpsertChunks(ctx context.Context, meta DocumentMeta, chunks []models.DocumentChunk) error {
	for _, ch := range chunks {
		if p.dim > 0 && len(ch.Embedding) != p.dim {
			return fmt.Errorf("chunk %d has %d dimensions, store expects %d: %w",
				ch.Index, len(ch.Embedding), p.dim, ErrDimensionMismatch)
		}
	}

	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, meta.ID); err != nil {
		return fmt.Errorf("lock document %s: %w", meta.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, meta.ID); err != nil {
		return fmt.Errorf("clear previous chunks: %w", err)
	}

	const q = `
		INSERT INTO document_chunks
			(id, document_id, chunk_index, start_token, end_token, text, embedding, page, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return fmt.Errorf("prepare chunk insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			ch.ID, meta.ID, ch.Index, ch.StartToken, ch.EndToken, ch.Text,
			pgvector.NewVector(ch.Embedding), ch.Page, ch.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert chunk %d: %w", ch.Index, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chunks: %w", err)
	}
	return nil
}

func (p *Postgres) Search(ctx context.Context, queryVec []float32, topK int, viewer models.Viewer) ([]SearchResult, error) {
	if topK <= 0 {
		return nil, nil
	}
	// pgvector's cosine operator is undefined for a zero vector; by contract
	// everything scores 0, so fall back to plain chunk order.
	if vector.IsZero(queryVec) {
		return p.searchZero(ctx, topK, viewer)
	}

	const q = `
		SELECT c.id, c.document_id, c.chunk_index, c.start_token, c.end_token,
		       c.text, c.page, d.title,
		       1 - (c.embedding <=> $1) AS score
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.access_scope = 'all'
		   OR (d.access_scope = 'admin' AND $2)
		   OR (d.access_scope = 'specific' AND ($2 OR d.owner_id = $3))
		ORDER BY score DESC, c.chunk_index ASC, c.document_id ASC
		LIMIT $4
	`
	rows, err := p.db.QueryContext(ctx, q,
		pgvector.NewVector(queryVec), viewer.IsAdmin, viewer.UserID, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()
	return scanResults(rows, true)
}

// searchZero returns up to topK visible chunks with score 0 in deterministic
// chunk order.
func (p *Postgres) searchZero(ctx context.Context, topK int, viewer models.Viewer) ([]SearchResult, error) {
	const q = `
		SELECT c.id, c.document_id, c.chunk_index, c.start_token, c.end_token,
		       c.text, c.page, d.title
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE d.access_scope = 'all'
		   OR (d.access_scope = 'admin' AND $1)
		   OR (d.access_scope = 'specific' AND ($1 OR d.owner_id = $2))
		ORDER BY c.chunk_index ASC, c.document_id ASC
		LIMIT $3
	`
	rows, err := p.db.QueryContext(ctx, q, viewer.IsAdmin, viewer.UserID, topK)
	if err != nil {
		return nil, fmt.Errorf("zero-vector search: %w", err)
	}
	defer rows.Close()
	return scanResults(rows, false)
}

func scanResults(rows *sql.Rows, withScore bool) ([]SearchResult, error) {
	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		ch := &r.Chunk
		dest := []any{&ch.ID, &ch.DocumentID, &ch.Index, &ch.StartToken, &ch.EndToken,
			&ch.Text, &ch.Page, &r.DocumentTitle}
		if withScore {
			dest = append(dest, &r.Score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteDocument removes every chunk of the document under the same advisory
// lock UpsertChunks takes. Unknown documents are a no-op.
func (p *Postgres) DeleteDocument(ctx context.Context, documentID string) error {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, documentID); err != nil {
		return fmt.Errorf("lock document %s: %w", documentID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

var _ Store = (*Postgres)(nil)
