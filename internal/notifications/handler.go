package notifications

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// Broadcaster fans a message out to every user. Implemented by the job
// enqueuer so the HTTP request returns before delivery completes.
type Broadcaster interface {
	EnqueueBroadcast(ctx context.Context, message, title string) error
}

// Handler wires notification endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	auth        sessionauth.Middleware
	broadcaster Broadcaster
	stream      *Stream
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth sessionauth.Middleware, broadcaster Broadcaster, stream *Stream) *Handler {
	return &Handler{logger: logger, service: service, auth: auth, broadcaster: broadcaster, stream: stream}
}

// MountRoutes registers notification routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		// EventSource cannot set headers, so the stream authenticates via
		// a token query parameter instead of the Authenticator group.
		if h.stream != nil {
			r.Get("/stream", h.stream.ServeHTTP)
		}

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticator)
			r.Get("/", h.list)
			r.Get("/unread-count", h.unreadCount)
			r.Put("/{id}/read", h.markRead)
			r.Put("/mark-all-read", h.markAllRead)
			r.Delete("/{id}", h.delete)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticator, h.auth.RequireAdmin)
		r.Post("/admin/notifications/broadcast", h.broadcast)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	items, err := h.service.List(r.Context(), identity.ID)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Notification{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": items})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	count, err := h.service.UnreadCount(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"unread": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"), identity.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Notification marked as read"})
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.MarkAllRead(r.Context(), identity.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "All notifications marked as read"})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), identity.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Notification deleted"})
}

type broadcastRequest struct {
	Message string `json:"message" validate:"required"`
	Title   string `json:"title"`
}

func (h *Handler) broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Message == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "message is required")
		return
	}
	if err := h.broadcaster.EnqueueBroadcast(r.Context(), req.Message, req.Title); err != nil {
		h.logger.Error("enqueue broadcast", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"message": "Broadcast queued"})
}
