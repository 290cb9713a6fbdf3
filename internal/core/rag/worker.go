package rag

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrIngestQueueFull reports a saturated background ingestion queue.
var ErrIngestQueueFull = errors.New("ingest queue full")

// Ingestor runs document ingestion in the background so uploads return
// immediately with status pending.
type Ingestor struct {
	orch   *Orchestrator
	jobs   chan string
	logger *slog.Logger
}

func NewIngestor(orch *Orchestrator, queueSize int, logger *slog.Logger) *Ingestor {
	if queueSize <= 0 {
		queueSize = 64
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ingestor{
		orch:   orch,
		jobs:   make(chan string, queueSize),
		logger: logger,
	}
}

// Start launches numWorkers goroutines under an errgroup and returns the
// group so the caller can wait for drain on shutdown.
func (i *Ingestor) Start(ctx context.Context, numWorkers int) *errgroup.Group {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for w := 1; w <= numWorkers; w++ {
		w := w
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					i.logger.Info("ingest worker shutting down", "worker", w)
					return nil
				case docID := <-i.jobs:
					i.processOne(gctx, w, docID)
				}
			}
		})
	}
	return g
}

// Enqueue schedules a document for ingestion. A full queue fails fast
// rather than blocking the upload handler.
func (i *Ingestor) Enqueue(docID string) error {
	select {
	case i.jobs <- docID:
		return nil
	default:
		return ErrIngestQueueFull
	}
}

func (i *Ingestor) processOne(ctx context.Context, worker int, docID string) {
	// Ingestion of an accepted document should survive request-scoped
	// deadlines but still stop on shutdown.
	procCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	doc, err := i.orch.db.GetDocumentByID(procCtx, docID)
	if err != nil || doc == nil {
		i.logger.Error("ingest: document lookup failed", "worker", worker, "document_id", docID, "error", err)
		return
	}

	start := time.Now()
	if err := i.orch.Ingest(procCtx, doc); err != nil {
		i.logger.Error("ingest failed", "worker", worker, "document_id", docID, "error", err)
		return
	}
	i.logger.Info("ingest complete", "worker", worker, "document_id", docID, "took", time.Since(start))
}
