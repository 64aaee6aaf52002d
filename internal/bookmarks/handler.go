package bookmarks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// Handler wires bookmark endpoints.
type Handler struct {
	service *Service
	auth    sessionauth.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(service *Service, auth sessionauth.Middleware) *Handler {
	return &Handler{service: service, auth: auth}
}

// MountRoutes registers bookmark routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/bookmarks", func(r chi.Router) {
		r.Use(h.auth.Authenticator)
		r.Get("/", h.list)
		r.Post("/{shayariID}", h.create)
		r.Delete("/{shayariID}", h.remove)
		r.Get("/{shayariID}/check", h.check)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	bookmark, err := h.service.Create(r.Context(), identity.ID, chi.URLParam(r, "shayariID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bookmark)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	list, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Bookmark{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Remove(r.Context(), identity.ID, chi.URLParam(r, "shayariID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Bookmark removed"})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	bookmarked, err := h.service.IsBookmarked(r.Context(), identity.ID, chi.URLParam(r, "shayariID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"bookmarked": bookmarked})
}
