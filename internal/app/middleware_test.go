package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStackRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}) {
		r.Use(mw)
	}
	r.Get("/api/shayaris", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	handler := newStackRouter(t)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/shayaris", nil))
	require.Equal(t, http.StatusOK, res.Code)

	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))
	assert.Equal(t, "1; mode=block", res.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "strict-origin-when-cross-origin", res.Header().Get("Referrer-Policy"))
}
