package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/elecmate/quotedesk/internal/kv"
	"github.com/elecmate/quotedesk/internal/notes"
	"github.com/elecmate/quotedesk/internal/quotes"
	"github.com/elecmate/quotedesk/internal/settings"
)

type server struct {
	auth     *authService
	db       *sql.DB
	quotes   *quotes.Repository
	settings *settings.Repository
	notes    *notes.Service
}

func newServer(database *sql.DB, apiToken string) (*server, error) {
	store, err := kv.NewSQLite(database)
	if err != nil {
		return nil, err
	}

	return &server{
		auth:     newAuthService(apiToken),
		db:       database,
		quotes:   quotes.NewRepository(database),
		settings: settings.NewRepository(database),
		notes:    notes.NewService(store),
	}, nil
}

func newRouter(s *server, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/quotes/calculate", s.handleCalculate)
		r.Post("/quotes", s.handleQuoteCreate)
		r.Get("/quotes", s.handleQuotesList)
		r.Get("/quotes/{id}", s.handleQuoteDetail)
		r.Get("/quotes/{id}/text", s.handleQuoteText)
		r.Get("/quotes/{id}/export.xlsx", s.handleQuoteExport)

		r.Get("/projects/{project}/notes", s.handleJobNotesGet)
		r.Put("/projects/{project}/notes", s.handleJobNotesPut)

		r.Get("/reviews", s.handleReviewsList)
		r.Post("/reviews", s.handleReviewCreate)
		r.Get("/reviews/summary", s.handleReviewSummary)

		r.Get("/settings", s.handleSettingsGet)
		r.Put("/settings", s.handleSettingsPut)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
