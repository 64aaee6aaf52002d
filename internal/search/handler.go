package search

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
	"github.com/raama-app/raama/internal/shayaris"
)

// Handler wires search endpoints.
type Handler struct {
	service *Service
	auth    sessionauth.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(service *Service, auth sessionauth.Middleware) *Handler {
	return &Handler{service: service, auth: auth}
}

// MountRoutes registers search routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/search", func(r chi.Router) {
		r.Use(h.auth.Authenticator)
		r.Get("/", h.search)
		r.Get("/history", h.history)
		r.Delete("/history", h.clearHistory)
		r.Get("/suggestions", h.suggestions)
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	q := r.URL.Query()

	results, err := h.service.Search(r.Context(), identity.ID, q.Get("q"), q.Get("author"), q.Get("tag"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if results == nil {
		results = []shayaris.Shayari{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"query":   q.Get("q"),
		"results": results,
		"count":   len(results),
	})
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	entries, err := h.service.History(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []HistoryEntry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) clearHistory(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.ClearHistory(r.Context(), identity.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Search history cleared"})
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.Suggest(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, suggestions)
}
