// Package rag ties the pipeline together: chunk, embed, store on ingest;
// embed, search, generate on query.
package rag

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/core/chunker"
	"github.com/DanielChahine0/Intern-Compass/internal/core/vectorstore"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// ErrEmptyDocument rejects ingestion of documents with no extractable text.
var ErrEmptyDocument = errors.New("document has no content")

type Orchestrator struct {
	chunkCfg chunker.Config
	embedder core.EmbeddingProvider
	store    vectorstore.Store
	llm      core.LLMProvider
	db       core.DbClient
	topK     int
	logger   *slog.Logger
}

func NewOrchestrator(
	chunkCfg chunker.Config,
	embedder core.EmbeddingProvider,
	store vectorstore.Store,
	llm core.LLMProvider,
	db core.DbClient,
	topK int,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		chunkCfg: chunkCfg,
		embedder: embedder,
		store:    store,
		llm:      llm,
		db:       db,
		topK:     topK,
		logger:   logger,
	}
}

// Ingest chunks the document, embeds every chunk in one batch, and commits
// the whole set atomically. The document ends in status processed or failed;
// a failure leaves no partial chunk set behind.
func (o *Orchestrator) Ingest(ctx context.Context, doc *models.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	if strings.TrimSpace(doc.Content) == "" {
		_ = o.db.UpdateDocumentStatus(ctx, doc.ID, models.StatusFailed)
		return ErrEmptyDocument
	}

	if err := o.db.UpdateDocumentStatus(ctx, doc.ID, models.StatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	if err := o.ingest(ctx, doc); err != nil {
		_ = o.db.UpdateDocumentStatus(ctx, doc.ID, models.StatusFailed)
		return err
	}

	if err := o.db.UpdateDocumentStatus(ctx, doc.ID, models.StatusProcessed); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	o.logger.Info("document ingested", "document_id", doc.ID, "title", doc.Title)
	return nil
}

func (o *Orchestrator) ingest(ctx context.Context, doc *models.Document) error {
	chunks, err := chunker.Split(doc.Content, o.chunkCfg)
	if err != nil {
		return fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		return ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vecs, err := o.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	if len(vecs) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: got %d want %d", len(vecs), len(chunks))
	}

	rows := make([]models.DocumentChunk, len(chunks))
	for i, c := range chunks {
		rows[i] = models.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      c.Index,
			StartToken: c.StartToken,
			EndToken:   c.EndToken,
			Text:       c.Text,
			Embedding:  vecs[i],
		}
	}

	meta := vectorstore.DocumentMeta{
		ID:          doc.ID,
		Title:       doc.Title,
		OwnerID:     doc.OwnerID,
		AccessScope: doc.AccessScope,
	}
	if err := o.store.UpsertChunks(ctx, meta, rows); err != nil {
		return fmt.Errorf("store chunks: %w", err)
	}
	return nil
}

// QueryResult is the answer to one question, grounded in retrieved chunks.
type QueryResult struct {
	Answer    string
	Citations []models.Citation
	Sources   []vectorstore.SearchResult
}

// Query embeds the question, retrieves the viewer's top-K visible chunks,
// and asks the generator for a grounded answer. An empty corpus is not an
// error: the generator still runs with no sources and the model says what
// it can (typically that it doesn't have the information).
func (o *Orchestrator) Query(ctx context.Context, question string, viewer models.Viewer, history []models.ChatMessage) (*QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, errors.New("empty question")
	}

	qVec, err := o.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	sources, err := o.store.Search(ctx, qVec, o.topK, viewer)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(sources) == 0 {
		o.logger.Debug("no chunks retrieved, answering without context", "user_id", viewer.UserID)
	}

	res, err := o.llm.Generate(ctx, core.GenerationRequest{
		Question: question,
		History:  history,
		Sources:  sources,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	return &QueryResult{Answer: res.Text, Citations: res.Citations, Sources: sources}, nil
}

// DeleteDocument removes the record, its chunks, and its archived object.
func (o *Orchestrator) DeleteDocument(ctx context.Context, id string) error {
	if err := o.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := o.db.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
