package main

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/elecmate/quotedesk/internal/notes"
)

type jobNotesResponse struct {
	Project string         `json:"project"`
	Notes   notes.JobNotes `json:"notes"`
}

type reviewsResponse struct {
	Reviews []notes.Review `json:"reviews"`
}

func projectParam(r *http.Request) string {
	raw := chi.URLParam(r, "project")
	if project, err := url.PathUnescape(raw); err == nil {
		return project
	}
	return raw
}

func (s *server) handleJobNotesGet(w http.ResponseWriter, r *http.Request) {
	project := projectParam(r)
	jobNotes, ok, err := s.notes.JobNotes(r.Context(), project)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "no notes saved for project", nil)
		return
	}

	writeJSON(w, r, http.StatusOK, jobNotesResponse{Project: project, Notes: jobNotes})
}

func (s *server) handleJobNotesPut(w http.ResponseWriter, r *http.Request) {
	var body notes.JobNotes
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	project := projectParam(r)
	saved, err := s.notes.SaveJobNotes(r.Context(), project, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, jobNotesResponse{Project: project, Notes: saved})
}

func (s *server) handleReviewsList(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.notes.Reviews(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, reviewsResponse{Reviews: reviews})
}

func (s *server) handleReviewCreate(w http.ResponseWriter, r *http.Request) {
	var body notes.Review
	if err := decodeJSON(w, r, &body); err != nil {
		s.fail(w, r, err)
		return
	}

	review, err := s.notes.SubmitReview(r.Context(), body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, review)
}

func (s *server) handleReviewSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.notes.ReviewSummary(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
