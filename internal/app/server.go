package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/DanielChahine0/Intern-Compass/internal/api/handlers"
	appMiddleware "github.com/DanielChahine0/Intern-Compass/internal/api/middlewares"
	"github.com/DanielChahine0/Intern-Compass/internal/config"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(
	cfg *config.Config,
	auth *handlers.AuthHandler,
	docs *handlers.DocumentHandler,
	chat *handlers.ChatHandler,
	status *handlers.StatusHandler,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", status.Health)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", status.Health)

		// public endpoints
		api.Post("/users/signup", auth.Signup)
		api.Post("/users/login", auth.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.Auth(cfg.JWTSecret))

			protected.Post("/chat/query", chat.Query)
			protected.Get("/chat/history", chat.History)
			protected.Get("/gemini/status", status.GeminiStatus)

			protected.Group(func(admin chi.Router) {
				admin.Use(appMiddleware.AdminOnly)
				admin.Post("/admin/documents", docs.UploadDocument)
				admin.Get("/admin/documents", docs.ListDocuments)
				admin.Delete("/admin/documents/{id}", docs.DeleteDocument)
			})
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
