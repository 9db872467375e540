// Package server provides the HTTP API for the handbook.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mcd-community/handbook/internal/checklist"
	"github.com/mcd-community/handbook/internal/config"
	"github.com/mcd-community/handbook/internal/handbook"
	"github.com/mcd-community/handbook/internal/search"
	"github.com/mcd-community/handbook/internal/session"
	"github.com/mcd-community/handbook/internal/storage"
)

// Server is the HTTP server for the handbook API.
type Server struct {
	engine    *search.Engine
	content   *handbook.Store
	sessions  *session.Manager
	checklist *checklist.Service
	progress  storage.ProgressStore
	config    *config.Config
	logger    *zap.Logger
	version   string
	startedAt time.Time
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	engine *search.Engine,
	content *handbook.Store,
	sessions *session.Manager,
	checklistSvc *checklist.Service,
	progress storage.ProgressStore,
	cfg *config.Config,
	logger *zap.Logger,
	version string,
) *Server {
	return &Server{
		engine:    engine,
		content:   content,
		sessions:  sessions,
		checklist: checklistSvc,
		progress:  progress,
		config:    cfg,
		logger:    logger,
		version:   version,
		startedAt: time.Now(),
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Get("/sections", s.handleListSections)
		r.Get("/sections/{id}", s.handleGetSection)
		r.Post("/search", s.handleSearch)
		r.Post("/highlight", s.handleHighlight)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDeleteSession)
			r.Put("/{id}/query", s.handleSetQuery)
			r.Delete("/{id}/query", s.handleClearSearch)
			r.Post("/{id}/next", s.handleNextResult)
			r.Post("/{id}/previous", s.handlePreviousResult)
			r.Post("/{id}/navigate/{index}", s.handleNavigate)
		})

		r.Route("/checklist/{profile}", func(r chi.Router) {
			r.Get("/", s.handleGetChecklist)
			r.Delete("/", s.handleResetChecklist)
			r.Put("/{item}", s.handleSetChecklistItem)
			r.Post("/import", s.handleImportChecklist)
			r.Get("/export", s.handleExportChecklist)
		})

		r.Get("/ranks", s.handleRanks)
		r.Get("/ranks/{id}", s.handleGetRank)
		r.Get("/formats", s.handleListFormats)
		r.Post("/formats/{name}", s.handleGenerateFormat)
		r.Post("/points", s.handlePoints)
		r.Get("/export.xlsx", s.handleExportWorkbook)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
