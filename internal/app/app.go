package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/DanielChahine0/Intern-Compass/internal/api/handlers"
	"github.com/DanielChahine0/Intern-Compass/internal/config"
	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/core/chunker"
	db "github.com/DanielChahine0/Intern-Compass/internal/core/database"
	"github.com/DanielChahine0/Intern-Compass/internal/core/llm"
	objectclient "github.com/DanielChahine0/Intern-Compass/internal/core/object-client"
	"github.com/DanielChahine0/Intern-Compass/internal/core/queue"
	"github.com/DanielChahine0/Intern-Compass/internal/core/rag"
	"github.com/DanielChahine0/Intern-Compass/internal/core/vectorstore"
)

// App owns every long-lived component. Construction is explicit so shutdown
// order and dependencies stay visible in one place.
type App struct {
	Config       *config.Config
	DBClient     *db.DatabaseClient
	ObjectClient core.ObjectClient
	Queue        *queue.Queue
	Embedder     *llm.GeminiEmbedder
	LLM          *llm.GeminiLLM
	Orchestrator *rag.Orchestrator
	Ingestor     *rag.Ingestor
	Server       *Server

	logger *slog.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	logger.Info("database initialized and ready")

	var objClient core.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		objClient, err = objectclient.NewS3Client(appCtx, cfg, logger)
		if err != nil {
			_ = dbClient.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
	} else {
		logger.Warn("AWS credentials not set, document archival disabled")
	}

	q, err := queue.New(queue.Config{
		RequestInterval: cfg.RequestInterval,
		MaxQueueSize:    cfg.MaxQueueSize,
		MaxRetries:      cfg.MaxRetries,
		BaseDelay:       cfg.BaseDelay,
	}, logger)
	if err != nil {
		_ = dbClient.Close()
		return nil, fmt.Errorf("request queue: %w", err)
	}

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel, cfg.EmbedDim, q)
	if err != nil {
		q.Close()
		_ = dbClient.Close()
		return nil, fmt.Errorf("embedder: %w", err)
	}

	tuning := llm.GenerationTuning{
		Temperature:     cfg.Temperature,
		TopK:            int32(cfg.GenTopK),
		TopP:            cfg.GenTopP,
		MaxOutputTokens: int32(cfg.MaxOutputTokens),
	}
	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel, tuning, q)
	if err != nil {
		_ = embedder.Close()
		q.Close()
		_ = dbClient.Close()
		return nil, fmt.Errorf("generation client: %w", err)
	}

	store := vectorstore.NewPostgres(dbClient.DB(), cfg.EmbedDim)

	orch := rag.NewOrchestrator(
		chunker.Config{ChunkSize: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		embedder, store, llmProvider, dbClient, cfg.TopK, logger,
	)
	ingestor := rag.NewIngestor(orch, 64, logger)

	authHandler := handlers.NewAuthHandler(dbClient, cfg.JWTSecret, logger)
	docHandler := handlers.NewDocumentHandler(dbClient, objClient, ingestor, orch, cfg, logger)
	chatHandler := handlers.NewChatHandler(dbClient, orch, logger)
	statusHandler := handlers.NewStatusHandler(q, cfg)

	server := NewServer(cfg, authHandler, docHandler, chatHandler, statusHandler, logger)

	return &App{
		Config:       cfg,
		DBClient:     dbClient,
		ObjectClient: objClient,
		Queue:        q,
		Embedder:     embedder,
		LLM:          llmProvider,
		Orchestrator: orch,
		Ingestor:     ingestor,
		Server:       server,
		logger:       logger,
	}, nil
}

// Close tears components down in reverse dependency order.
func (a *App) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
