package main

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// authService checks the shared API token. An empty token disables auth.
type authService struct {
	tokenHash [sha256.Size]byte
	required  bool
}

func newAuthService(token string) *authService {
	token = strings.TrimSpace(token)
	if token == "" {
		return &authService{}
	}
	return &authService{tokenHash: sha256.Sum256([]byte(token)), required: true}
}

func (a *authService) enabled() bool {
	return a.required
}

func (a *authService) authorize(r *http.Request) bool {
	if !a.required {
		return true
	}

	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return false
	}
	provided := sha256.Sum256([]byte(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))))
	return subtle.ConstantTimeCompare(provided[:], a.tokenHash[:]) == 1
}

func (s *server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.auth.authorize(r) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="quotedesk"`)
			writeError(w, r, http.StatusUnauthorized, "missing or invalid API token", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
