package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	_, h := newTestServer(t, "s3cret")

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "health is public", path: "/healthz", want: http.StatusOK},
		{name: "missing token", path: "/api/settings", want: http.StatusUnauthorized},
		{name: "wrong token", path: "/api/settings", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "wrong scheme", path: "/api/settings", header: "Basic s3cret", want: http.StatusUnauthorized},
		{name: "valid token", path: "/api/settings", header: "Bearer s3cret", want: http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())
		})
	}
}

func TestAuthServiceDisabledWithoutToken(t *testing.T) {
	auth := newAuthService("  ")
	assert.False(t, auth.enabled())
	assert.True(t, auth.authorize(httptest.NewRequest(http.MethodGet, "/api/quotes", nil)))
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	srv, _ := newTestServer(t, "")

	var buf bytes.Buffer
	h := newRouter(srv, zerolog.New(&buf))

	req := httptest.NewRequest(http.MethodGet, "/api/quotes/404", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, `"status":404`)
	assert.Contains(t, line, `"path":"/api/quotes/404"`)
	assert.Contains(t, line, `"request_id"`)
}
