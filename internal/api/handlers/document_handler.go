package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	middleware "github.com/DanielChahine0/Intern-Compass/internal/api/middlewares"
	"github.com/DanielChahine0/Intern-Compass/internal/config"
	"github.com/DanielChahine0/Intern-Compass/internal/core"
	"github.com/DanielChahine0/Intern-Compass/internal/core/rag"
	"github.com/DanielChahine0/Intern-Compass/internal/models"
)

// DocumentHandler serves the admin document endpoints: upload, list, delete.
type DocumentHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient
	ingestor     *rag.Ingestor
	orchestrator *rag.Orchestrator
	cfg          *config.Config
	logger       *slog.Logger
}

func NewDocumentHandler(dbclient core.DbClient, objectclient core.ObjectClient, ing *rag.Ingestor, orch *rag.Orchestrator, cfg *config.Config, logger *slog.Logger) *DocumentHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &DocumentHandler{
		dbclient:     dbclient,
		objectclient: objectclient,
		ingestor:     ing,
		orchestrator: orch,
		cfg:          cfg,
		logger:       logger,
	}
}

type uploadRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	AccessScope string   `json:"access_scope"`
	Tags        []string `json:"tags"`
}

func validScope(s string) bool {
	switch s {
	case models.ScopeAll, models.ScopeAdmin, models.ScopeSpecific:
		return true
	}
	return false
}

// UploadDocument accepts extracted document text, archives it, records the
// document as pending, and schedules background ingestion.
func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.ViewerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "title and content are required")
		return
	}
	if req.AccessScope == "" {
		req.AccessScope = models.ScopeAll
	}
	if !validScope(req.AccessScope) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown access_scope %q", req.AccessScope))
		return
	}

	docID := uuid.NewString()
	s3Key := fmt.Sprintf("documents/%s.txt", docID)

	var storageURL string
	if h.objectclient != nil {
		uploadCtx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()
		url, err := h.objectclient.UploadFile(uploadCtx, h.cfg.BucketName, s3Key, []byte(req.Content), "text/plain; charset=utf-8")
		if err != nil {
			h.logger.Error("archive upload failed", "document_id", docID, "error", err)
			writeError(w, http.StatusInternalServerError, "could not archive document")
			return
		}
		storageURL = url
	}

	now := time.Now()
	doc := &models.Document{
		ID:          docID,
		Title:       req.Title,
		Content:     req.Content,
		OwnerID:     viewer.UserID,
		AccessScope: req.AccessScope,
		Status:      models.StatusPending,
		Tags:        req.Tags,
		StorageURL:  storageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.dbclient.CreateDocument(r.Context(), doc); err != nil {
		h.logger.Error("document insert failed", "document_id", docID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	if err := h.ingestor.Enqueue(doc.ID); err != nil {
		if errors.Is(err, rag.ErrIngestQueueFull) {
			writeError(w, http.StatusServiceUnavailable, "ingestion queue full, try again later")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not schedule ingestion")
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	documents, err := h.dbclient.ListDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if documents == nil {
		documents = []models.Document{}
	}
	writeJSON(w, http.StatusOK, documents)
}

// DeleteDocument removes the record, its chunks, and the archived object.
// Deleting an unknown document succeeds.
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing document id")
		return
	}

	doc, err := h.dbclient.GetDocumentByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if doc != nil && doc.StorageURL != "" && h.objectclient != nil {
		bucket, key := parseS3URL(doc.StorageURL)
		if err := h.objectclient.DeleteFile(r.Context(), bucket, key); err != nil {
			h.logger.Warn("archive delete failed", "document_id", id, "error", err)
		}
	}

	if err := h.orchestrator.DeleteDocument(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseS3URL extracts the bucket and key from a virtual-hosted style S3 URL,
// e.g. https://my-bucket.s3.us-east-2.amazonaws.com/documents/abc.txt.
func parseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}
