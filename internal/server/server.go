// Package server is the local HTTP API in front of the catalog, the live
// session engine and the session history.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/history"
	"github.com/claude/liftlog/internal/ingest/alpha"
	"github.com/claude/liftlog/internal/metrics"
	"github.com/claude/liftlog/internal/session"
	"github.com/claude/liftlog/internal/storage"
	"github.com/claude/liftlog/internal/summary"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the handlers need.
type Deps struct {
	DB       *storage.DB
	Engine   *session.Engine
	Catalog  *catalog.Catalog
	History  *history.Reader
	Analyzer *summary.Analyzer
	Alpha    *alpha.Provider
	Metrics  *metrics.Manager
	Gatherer prometheus.Gatherer

	// AllowedOrigins are the browser origins that may call the API.
	AllowedOrigins []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       *storage.DB
	catalog  *catalog.Catalog
	history  *history.Reader
	analyzer *summary.Analyzer
	alpha    *alpha.Provider
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	origins  []string
	log      *slog.Logger
	router   chi.Router

	// mu serializes every call into engine; the engine itself is not
	// safe for concurrent use.
	mu     sync.Mutex
	engine *session.Engine
}

// New creates a new Server with all routes configured.
func New(deps Deps, log *slog.Logger) *Server {
	s := &Server{
		db:       deps.DB,
		engine:   deps.Engine,
		catalog:  deps.Catalog,
		history:  deps.History,
		analyzer: deps.Analyzer,
		alpha:    deps.Alpha,
		metrics:  deps.Metrics,
		gatherer: deps.Gatherer,
		origins:  deps.AllowedOrigins,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log, s.metrics))
	s.router.Use(CORS(s.origins))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/exercises", func(r chi.Router) {
			r.Get("/", s.handleListExercises)
			r.Post("/", s.handleCreateExercise)
			r.Get("/{id}", s.handleGetExercise)
			r.Put("/{id}", s.handleUpdateExercise)
			r.Delete("/{id}", s.handleDeleteExercise)
			r.Get("/{id}/history", s.handleExerciseHistory)
		})

		r.Route("/routines", func(r chi.Router) {
			r.Get("/", s.handleListRoutines)
			r.Post("/", s.handleCreateRoutine)
			r.Get("/{id}", s.handleGetRoutine)
			r.Put("/{id}", s.handleUpdateRoutine)
			r.Delete("/{id}", s.handleDeleteRoutine)
		})

		// live session
		r.Route("/session", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/start", s.handleStartSession)
			r.Post("/finish", s.handleFinishSession)
			r.Post("/cancel", s.handleCancelSession)
			r.Post("/sets", s.handleAddSet)
			r.Patch("/sets/{index}", s.handleUpdateSet)
			r.Delete("/sets/{index}", s.handleRemoveSet)
			r.Post("/sets/{index}/toggle", s.handleToggleSet)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleRecentSessions)
			r.Get("/{id}", s.handleGetCompletedSession)
			r.Get("/{id}/summary", s.handleSessionSummary)
			r.Patch("/{id}/notes", s.handleUpdateNotes)
		})

		r.Get("/stats", s.handleStats)
		r.Get("/imports", s.handleImportLogs)
		r.Post("/import/alpha", s.handleAlphaImport)
	})

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}
