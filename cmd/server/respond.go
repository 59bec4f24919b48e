package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/elecmate/quotedesk/internal/notes"
	"github.com/elecmate/quotedesk/internal/pricing"
	"github.com/elecmate/quotedesk/internal/quotes"
	"github.com/elecmate/quotedesk/internal/settings"
	"github.com/elecmate/quotedesk/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string               `json:"error"`
	Fields []pricing.FieldError `json:"fields,omitempty"`
}

// requestError is a client mistake that maps to 400.
type requestError struct {
	message string
	fields  []pricing.FieldError
}

func (e *requestError) Error() string {
	return e.message
}

func badRequest(message string, fields ...pricing.FieldError) error {
	return &requestError{message: message, fields: fields}
}

// writeJSON encodes v before writing the status, so an unencodable value
// becomes a logged 500 instead of a truncated success.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal server error"}`)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, fields []pricing.FieldError) {
	writeJSON(w, r, status, errorResponse{Error: message, Fields: fields})
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON value")
	}
	return nil
}

// fail maps err to a response. Unexpected errors are logged and hidden.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var reqErr *requestError
	var inputErr *pricing.ValidationError

	switch {
	case errors.As(err, &reqErr):
		writeError(w, r, http.StatusBadRequest, reqErr.message, reqErr.fields)
	case errors.As(err, &inputErr):
		writeError(w, r, http.StatusBadRequest, "invalid cost inputs", inputErr.Fields)
	case errors.Is(err, quotes.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "quote not found", nil)
	case errors.Is(err, notes.ErrProjectRequired):
		writeError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, notes.ErrInvalidReview):
		writeError(w, r, http.StatusBadRequest, "invalid review", validationFields(err))
	case errors.Is(err, settings.ErrInvalid):
		writeError(w, r, http.StatusBadRequest, "invalid settings", validationFields(err))
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error", nil)
	}
}

// validationFields flattens validator errors into field errors ordered by path.
func validationFields(err error) []pricing.FieldError {
	byPath := validation.Fields(err)
	if len(byPath) == 0 {
		return nil
	}

	paths := lo.Keys(byPath)
	slices.Sort(paths)
	return lo.Map(paths, func(path string, _ int) pricing.FieldError {
		return pricing.FieldError{Field: path, Message: validationMessage(byPath[path])}
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "is invalid"
	}
}
