package collections

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// Handler wires collection endpoints.
type Handler struct {
	service  *Service
	auth     sessionauth.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(service *Service, auth sessionauth.Middleware) *Handler {
	return &Handler{service: service, auth: auth, validate: validator.New()}
}

// MountRoutes registers collection routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/collections", func(r chi.Router) {
		r.Get("/", h.listPublic)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticator)
			r.Post("/", h.create)
			r.Get("/my", h.mine)
			r.Post("/{id}/shayaris/{shayariID}", h.addShayari)
			r.Delete("/{id}/shayaris/{shayariID}", h.removeShayari)
		})
	})
}

type createRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	IsPublic    bool   `json:"isPublic"`
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
	collection, err := h.service.Create(r.Context(), identity, CreateInput{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, collection)
}

func (h *Handler) listPublic(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListPublic(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Collection{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	list, err := h.service.Mine(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Collection{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) addShayari(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	err := h.service.AddShayari(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "shayariID"), identity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Shayari added to collection"})
}

func (h *Handler) removeShayari(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	err := h.service.RemoveShayari(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "shayariID"), identity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Shayari removed from collection"})
}
