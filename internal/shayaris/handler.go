package shayaris

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// Handler wires catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	auth     sessionauth.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth sessionauth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, auth: auth, validate: validator.New()}
}

// MountRoutes registers catalog routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/shayaris", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/featured", h.featured)
		r.Get("/trending", h.trending)
		r.Get("/random", h.random)
		r.Get("/{id}", h.get)
		r.Post("/{id}/view", h.view)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticator)
			r.Get("/author/{id}", h.byAuthor)
			r.Post("/{id}/like", h.like)
			r.Delete("/{id}/like", h.unlike)
			r.Post("/{id}/share", h.share)
			r.Delete("/{id}", h.remove)
			r.Post("/{id}/analyze", h.analyze)
			r.Get("/{id}/analysis", h.analysis)
			r.Post("/{id}/translate", h.translate)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticator, h.auth.RequireWriter)
			r.Post("/", h.create)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticator)
		r.Get("/my-shayaris", h.mine)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticator, h.auth.RequireAdmin)
		r.Put("/admin/shayaris/{id}/feature", h.feature)
		r.Delete("/admin/shayaris/{id}/feature", h.unfeature)
	})
}

type createRequest struct {
	Title   string   `json:"title" validate:"required,max=200"`
	Content string   `json:"content" validate:"required,max=5000"`
	Tags    []string `json:"tags" validate:"max=10"`
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
	shayari, err := h.service.Create(r.Context(), identity, CreateInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shayari)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func() ([]Shayari, error) { return h.service.List(r.Context()) })
}

func (h *Handler) featured(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func() ([]Shayari, error) { return h.service.Featured(r.Context()) })
}

func (h *Handler) trending(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, func() ([]Shayari, error) { return h.service.Trending(r.Context()) })
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, load func() ([]Shayari, error)) {
	list, err := load()
	if err != nil {
		h.logger.Error("list shayaris", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Shayari{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) mine(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	h.respondList(w, r, func() ([]Shayari, error) { return h.service.ByAuthor(r.Context(), identity.ID) })
}

func (h *Handler) byAuthor(w http.ResponseWriter, r *http.Request) {
	authorID := chi.URLParam(r, "id")
	h.respondList(w, r, func() ([]Shayari, error) { return h.service.ByAuthor(r.Context(), authorID) })
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	shayari, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shayari)
}

func (h *Handler) random(w http.ResponseWriter, r *http.Request) {
	shayari, err := h.service.Random(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shayari)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), identity); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Shayari deleted"})
}

func (h *Handler) like(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Like(r.Context(), chi.URLParam(r, "id"), identity); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Shayari liked"})
}

func (h *Handler) unlike(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.Unlike(r.Context(), chi.URLParam(r, "id"), identity.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Like removed"})
}

func (h *Handler) share(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	shares, err := h.service.Share(r.Context(), chi.URLParam(r, "id"), identity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "Share recorded", "shares": shares})
}

func (h *Handler) view(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"views": views})
}

func (h *Handler) feature(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SetFeatured(r.Context(), chi.URLParam(r, "id"), true); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Shayari featured"})
}

func (h *Handler) unfeature(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SetFeatured(r.Context(), chi.URLParam(r, "id"), false); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Shayari unfeatured"})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	analysis, err := h.service.Analyze(r.Context(), chi.URLParam(r, "id"), identity)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, analysis)
}

func (h *Handler) analysis(w http.ResponseWriter, r *http.Request) {
	raw, err := h.service.StoredAnalysis(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

type translateRequest struct {
	TargetLanguage string `json:"targetLanguage" validate:"required,max=40"`
}

func (h *Handler) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	translated, err := h.service.Translate(r.Context(), chi.URLParam(r, "id"), req.TargetLanguage)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"translation":    translated,
		"targetLanguage": req.TargetLanguage,
	})
}
