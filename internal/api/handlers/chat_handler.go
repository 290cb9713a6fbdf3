package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	middleware "github.com/DanielChahine0/Intern-Compass/internal/api/middlewares"
	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/core/queue"
	"github.com/DanielChahine0/Intern-Compass/internal/core/rag"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// historyLimit bounds how many stored turns feed the next answer.
const historyLimit = 20

type ChatHandler struct {
	dbclient     core.DbClient
	orchestrator *rag.Orchestrator
	logger       *slog.Logger
}

func NewChatHandler(dbclient core.DbClient, orch *rag.Orchestrator, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ChatHandler{dbclient: dbclient, orchestrator: orch, logger: logger}
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer    string            `json:"answer"`
	Citations []models.Citation `json:"citations"`
}

// Query answers one question grounded in the documents the caller may see,
// then persists both sides of the exchange.
func (h *ChatHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, ok := middleware.ViewerFromContext(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	history, err := h.dbclient.ListChatMessagesByUser(ctx, viewer.UserID, historyLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load chat history")
		return
	}

	res, err := h.orchestrator.Query(ctx, req.Question, viewer, history)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}

	now := time.Now()
	userMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    viewer.UserID,
		Role:      models.RoleUser,
		Content:   req.Question,
		CreatedAt: now,
	}
	assistantMsg := &models.ChatMessage{
		ID:        uuid.NewString(),
		UserID:    viewer.UserID,
		Role:      models.RoleAssistant,
		Content:   res.Answer,
		Citations: res.Citations,
		CreatedAt: now.Add(time.Millisecond),
	}
	if err := h.dbclient.AddChatMessage(ctx, userMsg); err != nil {
		h.logger.Error("persist user message failed", "user_id", viewer.UserID, "error", err)
	}
	if err := h.dbclient.AddChatMessage(ctx, assistantMsg); err != nil {
		h.logger.Error("persist assistant message failed", "user_id", viewer.UserID, "error", err)
	}

	citations := res.Citations
	if citations == nil {
		citations = []models.Citation{}
	}
	writeJSON(w, http.StatusOK, chatResponse{Answer: res.Answer, Citations: citations})
}

// History returns the caller's recent messages, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.ViewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	messages, err := h.dbclient.ListChatMessagesByUser(r.Context(), viewer.UserID, historyLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load chat history")
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, messages)
}

// writeQueryError maps pipeline failures onto HTTP statuses.
func (h *ChatHandler) writeQueryError(w http.ResponseWriter, err error) {
	var full *queue.QueueFullError
	if errors.As(err, &full) {
		w.Header().Set("Retry-After", full.EstimatedWait.Round(time.Second).String())
		writeError(w, http.StatusTooManyRequests, "assistant is busy, try again shortly")
		return
	}
	var rate *queue.RateLimitError
	if errors.As(err, &rate) {
		writeError(w, http.StatusTooManyRequests, "provider rate limit reached")
		return
	}
	var provider *queue.ProviderError
	if errors.As(err, &provider) {
		writeError(w, http.StatusBadGateway, "provider unavailable")
		return
	}
	h.logger.Error("chat query failed", "error", err)
	writeError(w, http.StatusInternalServerError, "query failed")
}
