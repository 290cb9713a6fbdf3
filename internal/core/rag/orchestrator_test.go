package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/core/chunker"
	"github.com/DanielChahine0/Intern-Compass/internal/core/vectorstore"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

type stubEmbedder struct {
	fn  func(text string) []float32
	err error
}

func (s *stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = s.fn(t)
	}
	return out, nil
}

func (s *stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.fn(text), nil
}

type stubLLM struct {
	lastReq core.GenerationRequest
	result  *core.GenerationResult
	err     error
}

func (s *stubLLM) Generate(ctx context.Context, req core.GenerationRequest) (*core.GenerationResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &core.GenerationResult{Text: "answer"}, nil
}

// statusDB records status transitions and serves document lookups.
type statusDB struct {
	core.DbClient
	docs     map[string]*models.Document
	statuses map[string][]string
	deleted  []string
}

func newStatusDB() *statusDB {
	return &statusDB{docs: map[string]*models.Document{}, statuses: map[string][]string{}}
}

func (d *statusDB) GetDocumentByID(ctx context.Context, id string) (*models.Document, error) {
	return d.docs[id], nil
}

func (d *statusDB) UpdateDocumentStatus(ctx context.Context, id string, status string) error {
	d.statuses[id] = append(d.statuses[id], status)
	if doc, ok := d.docs[id]; ok {
		doc.Status = status
	}
	return nil
}

func (d *statusDB) DeleteDocument(ctx context.Context, id string) error {
	d.deleted = append(d.deleted, id)
	delete(d.docs, id)
	return nil
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%04d", i)
	}
	return strings.Join(parts, " ")
}

func newTestOrchestrator(emb *stubEmbedder, llm *stubLLM, db *statusDB, store vectorstore.Store) *Orchestrator {
	return NewOrchestrator(chunker.Config{ChunkSize: 512, Overlap: 50}, emb, store, llm, db, 5, nil)
}

func TestIngestSplitsEmbedsAndStores(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemory(3)
	emb := &stubEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}
	db := newStatusDB()
	doc := &models.Document{ID: "doc-1", Title: "Handbook", OwnerID: "admin", AccessScope: models.ScopeAll, Status: models.StatusPending, Content: words(1200)}
	db.docs[doc.ID] = doc

	orch := newTestOrchestrator(emb, &stubLLM{}, db, store)
	require.NoError(t, orch.Ingest(ctx, doc))

	assert.Equal(t, []string{models.StatusProcessing, models.StatusProcessed}, db.statuses[doc.ID])

	// Zero query vector scores everything 0, so results come back in chunk order.
	res, err := store.Search(ctx, []float32{0, 0, 0}, 10, models.Viewer{IsAdmin: true})
	require.NoError(t, err)
	require.Len(t, res, 3)
	starts := []int{res[0].Chunk.StartToken, res[1].Chunk.StartToken, res[2].Chunk.StartToken}
	assert.Equal(t, []int{0, 462, 924}, starts)
	for _, r := range res {
		assert.Equal(t, doc.ID, r.Chunk.DocumentID)
		assert.Equal(t, "Handbook", r.DocumentTitle)
	}
}

func TestIngestEmptyContentFails(t *testing.T) {
	db := newStatusDB()
	doc := &models.Document{ID: "doc-empty", Content: "   \n\t "}
	db.docs[doc.ID] = doc
	orch := newTestOrchestrator(&stubEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}, &stubLLM{}, db, vectorstore.NewMemory(3))

	err := orch.Ingest(context.Background(), doc)
	require.ErrorIs(t, err, ErrEmptyDocument)
	assert.Equal(t, []string{models.StatusFailed}, db.statuses[doc.ID])
}

func TestIngestEmbedFailureLeavesNoChunks(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemory(3)
	boom := errors.New("provider down")
	db := newStatusDB()
	doc := &models.Document{ID: "doc-2", Title: "T", AccessScope: models.ScopeAll, Content: words(100)}
	db.docs[doc.ID] = doc

	orch := newTestOrchestrator(&stubEmbedder{err: boom}, &stubLLM{}, db, store)
	err := orch.Ingest(ctx, doc)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{models.StatusProcessing, models.StatusFailed}, db.statuses[doc.ID])

	res, err := store.Search(ctx, []float32{0, 0, 0}, 10, models.Viewer{IsAdmin: true})
	require.NoError(t, err)
	assert.Empty(t, res, "failed ingest must not leave partial chunks")
}

func TestQueryRetrievesTopChunk(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemory(3)
	// Texts about vacations embed along x, everything else along y.
	embed := func(text string) []float32 {
		if strings.Contains(text, "vacation") {
			return []float32{1, 0, 0}
		}
		return []float32{0, 1, 0}
	}
	emb := &stubEmbedder{fn: embed}
	llm := &stubLLM{result: &core.GenerationResult{Text: "20 days [1]", Citations: []models.Citation{{DocumentID: "doc-3", Title: "Policies"}}}}
	db := newStatusDB()
	doc := &models.Document{ID: "doc-3", Title: "Policies", AccessScope: models.ScopeAll, Content: "vacation days are twenty\n\nexpense reports monthly"}
	db.docs[doc.ID] = doc

	orch := NewOrchestrator(chunker.Config{ChunkSize: 4, Overlap: 1}, emb, store, llm, db, 1, nil)
	require.NoError(t, orch.Ingest(ctx, doc))

	res, err := orch.Query(ctx, "how many vacation days do I get", models.Viewer{UserID: "intern"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "20 days [1]", res.Answer)
	require.Len(t, llm.lastReq.Sources, 1)
	assert.Contains(t, llm.lastReq.Sources[0].Chunk.Text, "vacation")
	require.Len(t, res.Citations, 1)
	assert.Equal(t, "doc-3", res.Citations[0].DocumentID)
}

func TestQueryEmptyCorpusStillGenerates(t *testing.T) {
	llm := &stubLLM{result: &core.GenerationResult{Text: "I don't have that information."}}
	orch := newTestOrchestrator(&stubEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}, llm, newStatusDB(), vectorstore.NewMemory(3))

	res, err := orch.Query(context.Background(), "what is the wifi password", models.Viewer{UserID: "intern"}, nil)
	require.NoError(t, err)
	assert.Empty(t, llm.lastReq.Sources)
	assert.Empty(t, res.Citations)
	assert.NotEmpty(t, res.Answer)
}

func TestQueryRejectsEmptyQuestion(t *testing.T) {
	orch := newTestOrchestrator(&stubEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}, &stubLLM{}, newStatusDB(), vectorstore.NewMemory(3))
	_, err := orch.Query(context.Background(), "  ", models.Viewer{}, nil)
	require.Error(t, err)
}

func TestDeleteDocumentRemovesChunksAndRecord(t *testing.T) {
	ctx := context.Background()
	store := vectorstore.NewMemory(3)
	db := newStatusDB()
	doc := &models.Document{ID: "doc-4", Title: "T", AccessScope: models.ScopeAll, Content: words(20)}
	db.docs[doc.ID] = doc
	orch := newTestOrchestrator(&stubEmbedder{fn: func(string) []float32 { return []float32{1, 0, 0} }}, &stubLLM{}, db, store)
	require.NoError(t, orch.Ingest(ctx, doc))

	require.NoError(t, orch.DeleteDocument(ctx, doc.ID))
	res, err := store.Search(ctx, []float32{0, 0, 0}, 10, models.Viewer{IsAdmin: true})
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, []string{"doc-4"}, db.deleted)
}
