// Package api exposes the session over a small HTTP surface.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/promptlean/promptlean/internal/session"
)

// Server wires the chi router around a Session.
type Server struct {
	session *session.Session
	router  chi.Router
	version string
}

// NewServer creates the HTTP server for the given session.
func NewServer(sess *session.Session, version string) *Server {
	s := &Server{
		session: sess,
		router:  chi.NewRouter(),
		version: version,
	}
	s.routes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", s.handleListUsers)
		r.Post("/users", s.handleAddUser)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/execute", s.handleExecute)
		r.Get("/report", s.handleReport)
		r.Get("/report.csv", s.handleReportCSV)
		r.Delete("/data", s.handleClearData)
	})
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
