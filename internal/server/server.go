package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/ironlog/internal/tracker"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *tracker.Service
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *tracker.Service, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints (no key — tsnet handles access in tailnet mode)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleEnterSession)
		r.Get("/templates", s.handleListTemplates)
		r.Get("/prs", s.handlePersonalRecords)
		r.Get("/volume", s.handleVolume)
		r.Get("/timer", s.handleTimer)
		r.Get("/backup/export", s.handleExport)

		// Mutations require the API key.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))

			r.Post("/sessions", s.handleCreateSession)
			r.Put("/sessions/{id}", s.handleUpdateSession)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
			r.Post("/sessions/{id}/start", s.handleStartLogger)
			r.Post("/sessions/{id}/finish", s.handleFinishSession)
			r.Post("/sessions/{id}/exercises", s.handleAddExercise)
			r.Put("/sessions/{id}/exercises/{exerciseID}", s.handleUpdateExercise)
			r.Post("/sessions/{id}/exercises/{exerciseID}/warmup", s.handleGenerateWarmup)
			r.Post("/sessions/{id}/exercises/{exerciseID}/sets", s.handleAddSet)
			r.Put("/sessions/{id}/exercises/{exerciseID}/sets/{setID}", s.handleUpdateSet)
			r.Delete("/sessions/{id}/exercises/{exerciseID}/sets/{setID}", s.handleRemoveSet)
			r.Post("/sessions/{id}/exercises/{exerciseID}/sets/{setID}/complete", s.handleCompleteSet)

			r.Post("/templates", s.handleCreateTemplate)
			r.Put("/templates/{id}", s.handleUpdateTemplate)
			r.Delete("/templates/{id}", s.handleDeleteTemplate)

			r.Post("/timer/extend", s.handleExtendTimer)
			r.Post("/timer/stop", s.handleStopTimer)

			r.Post("/backup/import", s.handleImport)
		})
	})
}
