package handlers

import (
	"net/http"
	"time"

	"github.com/DanielChahine0/Intern-Compass/internal/config"
	"github.com/DanielChahine0/Intern-Compass/internal/core/queue"
)

// StatusHandler exposes liveness and provider queue visibility.
type StatusHandler struct {
	queue     *queue.Queue
	cfg       *config.Config
	startedAt time.Time
}

func NewStatusHandler(q *queue.Queue, cfg *config.Config) *StatusHandler {
	return &StatusHandler{queue: q, cfg: cfg, startedAt: time.Now()}
}

func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
	})
}

// GeminiStatus reports the request queue snapshot plus the models in use,
// so clients can show a busy indicator before sending a question.
func (h *StatusHandler) GeminiStatus(w http.ResponseWriter, r *http.Request) {
	st := h.queue.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_length":        st.QueueLength,
		"processing":          st.Processing,
		"max_queue_size":      st.MaxQueueSize,
		"request_interval_ms": st.RequestInterval.Milliseconds(),
		"last_request_time":   st.LastRequestTime,
		"embed_model":         h.cfg.EmbedModel,
		"gen_model":           h.cfg.GenModel,
	})
}
