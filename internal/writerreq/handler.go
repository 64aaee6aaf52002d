package writerreq

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// Handler wires writer request endpoints.
type Handler struct {
	service  *Service
	auth     sessionauth.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(service *Service, auth sessionauth.Middleware) *Handler {
	return &Handler{service: service, auth: auth, validate: validator.New()}
}

// MountRoutes registers writer request routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/writer-requests", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticator)
			r.Post("/", h.create)
			r.Get("/my", h.mine)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticator, h.auth.RequireAdmin)
			r.Get("/", h.list)
			r.Put("/{id}/approve", h.approve)
			r.Put("/{id}/reject", h.reject)
		})
	})
}

type createRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	identity := sessionauth.IdentityFromContext(r.Context())
	request, err := h.service.Create(r.Context(), identity, req.Reason)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, request)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	request, err := h.service.MyRequest(r.Context(), identity.ID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			httpx.JSON(w, http.StatusOK, map[string]any{"request": nil})
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"request": request})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Request{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Approve(r.Context(), chi.URLParam(r, "id"), identity); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Writer request approved"})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Reject(r.Context(), chi.URLParam(r, "id"), identity); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Writer request rejected"})
}
