package social

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// Handler wires follower graph endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	auth    sessionauth.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth sessionauth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, auth: auth}
}

// MountRoutes registers follower graph routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticator)
		r.Post("/users/{id}/follow", h.follow)
		r.Delete("/users/{id}/follow", h.unfollow)
		r.Get("/users/{id}/followers", h.followers)
		r.Get("/users/{id}/following", h.following)
	})
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Follow(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Followed successfully"})
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Unfollow(r.Context(), identity.ID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Unfollowed successfully"})
}

func (h *Handler) followers(w http.ResponseWriter, r *http.Request) {
	h.respondProfiles(w, r, h.service.Followers)
}

func (h *Handler) following(w http.ResponseWriter, r *http.Request) {
	h.respondProfiles(w, r, h.service.Following)
}

func (h *Handler) respondProfiles(w http.ResponseWriter, r *http.Request, load func(ctx context.Context, userID string) ([]FollowProfile, error)) {
	list, err := load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("list follow profiles", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []FollowProfile{}
	}
	httpx.JSON(w, http.StatusOK, list)
}
