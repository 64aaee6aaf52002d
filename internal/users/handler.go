package users

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/sessionauth"
)

// ContentStats exposes the shayari counters the stats endpoints need.
type ContentStats interface {
	AuthorStats(ctx context.Context, authorID string) (shayaris int, likes int, err error)
	CountShayaris(ctx context.Context) (int, error)
}

// GraphStats exposes the follow counters the stats endpoints need.
type GraphStats interface {
	FollowCounts(ctx context.Context, userID string) (followers, following int, err error)
}

// PendingRequests exposes the writer-request counter for admin stats.
type PendingRequests interface {
	CountPending(ctx context.Context) (int, error)
}

// Handler wires account and admin endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	auth     sessionauth.Middleware
	validate *validator.Validate
	content  ContentStats
	graph    GraphStats
	requests PendingRequests
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auth sessionauth.Middleware, content ContentStats, graph GraphStats, requests PendingRequests) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		auth:     auth,
		validate: validator.New(),
		content:  content,
		graph:    graph,
		requests: requests,
	}
}

// MountRoutes registers account routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/check-username", h.checkUsername)
		r.Post("/register", h.register)
		r.Post("/verify-otp", h.verifyOTP)
		r.Post("/resend-otp", h.resendOTP)
		r.Post("/login", h.login)
		r.Post("/admin-login", h.adminLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Authenticator)
			r.Get("/me", h.me)
			r.Put("/change-password", h.changePassword)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticator)
		r.Get("/users/writers", h.listWriters)
		r.Get("/users/{id}", h.getUser)
		r.Get("/stats", h.userStats)
		r.Put("/profile/picture", h.updateProfilePicture)
		r.Delete("/profile/picture", h.removeProfilePicture)
		r.Get("/profile/picture/{id}", h.getProfilePicture)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Authenticator, h.auth.RequireAdmin)
		r.Get("/users/readers", h.listReaders)
		r.Get("/admin/stats", h.adminStats)
		r.Get("/admin/users/admins", h.listAdmins)
		r.Post("/admin/create-admin", h.createAdmin)
		r.Put("/admin/users/{id}/role", h.changeRole)
		r.Put("/admin/users/{id}/block", h.blockUser)
		r.Put("/admin/users/{id}/unblock", h.unblockUser)
		r.Delete("/admin/users/{id}", h.deleteUser)
	})
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"required"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, err := h.service.Register(r.Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message":     "Registration successful! Please check your email for OTP to verify your account.",
		"email":       user.Email,
		"requiresOTP": true,
	})
}

type usernameCheckRequest struct {
	Username string `json:"username" validate:"required"`
}

func (h *Handler) checkUsername(w http.ResponseWriter, r *http.Request) {
	var req usernameCheckRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	available, reason, err := h.service.UsernameAvailable(r.Context(), req.Username)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	resp := map[string]any{"available": available}
	if reason != "" {
		resp["reason"] = reason
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type otpVerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpVerifyRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, signed, err := h.service.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"token":   signed,
		"user":    user.Public(),
		"message": "Email verified successfully! Welcome to Raama!",
	})
}

type resendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *Handler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.service.ResendOTP(r.Context(), req.Email); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "New OTP sent! Please check your email."})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, signed, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": signed, "user": user.Public()})
}

type adminLoginRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	AdminSecret string `json:"adminSecret" validate:"required"`
}

func (h *Handler) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, signed, err := h.service.AdminLogin(r.Context(), req.Email, req.Password, req.AdminSecret)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": signed, "user": user.Public()})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	user, err := h.service.Get(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.Public())
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), identity.ID, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}

func (h *Handler) listWriters(w http.ResponseWriter, r *http.Request) {
	h.listRole(w, r, sessionauth.RoleWriter)
}

func (h *Handler) listReaders(w http.ResponseWriter, r *http.Request) {
	h.listRole(w, r, sessionauth.RoleReader)
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	h.listRole(w, r, sessionauth.RoleAdmin)
}

func (h *Handler) listRole(w http.ResponseWriter, r *http.Request, role string) {
	list, err := h.service.ListByRole(r.Context(), role)
	if err != nil {
		h.logger.Error("list users", slog.String("role", role), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	profiles := make([]Profile, 0, len(list))
	for _, u := range list {
		profiles = append(profiles, u.Public())
	}
	httpx.JSON(w, http.StatusOK, profiles)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.Public())
}

func (h *Handler) userStats(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	shayaris, likes, err := h.content.AuthorStats(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	followers, following, err := h.graph.FollowCounts(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{
		"shayaris":      shayaris,
		"likesReceived": likes,
		"followers":     followers,
		"following":     following,
	})
}

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	roleCounts, err := h.service.RoleCounts(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	totalShayaris, err := h.content.CountShayaris(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pending, err := h.requests.CountPending(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	total := 0
	for _, c := range roleCounts {
		total += c
	}
	httpx.JSON(w, http.StatusOK, map[string]int{
		"totalUsers":            total,
		"writers":               roleCounts[sessionauth.RoleWriter],
		"readers":               roleCounts[sessionauth.RoleReader],
		"admins":                roleCounts[sessionauth.RoleAdmin],
		"totalShayaris":         totalShayaris,
		"pendingWriterRequests": pending,
	})
}

type createAdminRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Username    string `json:"username" validate:"required"`
	AdminSecret string `json:"adminSecret" validate:"required,min=12"`
}

func (h *Handler) createAdmin(w http.ResponseWriter, r *http.Request) {
	var req createAdminRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	user, err := h.service.CreateAdmin(r.Context(), CreateAdminInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Username:    req.Username,
		AdminSecret: req.AdminSecret,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user.Public())
}

type changeRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.service.ChangeRole(r.Context(), chi.URLParam(r, "id"), req.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User role changed to " + req.Role + " successfully"})
}

func (h *Handler) blockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, true, "User blocked")
}

func (h *Handler) unblockUser(w http.ResponseWriter, r *http.Request) {
	h.setBlocked(w, r, false, "User unblocked")
}

func (h *Handler) setBlocked(w http.ResponseWriter, r *http.Request, blocked bool, message string) {
	if err := h.service.SetBlocked(r.Context(), chi.URLParam(r, "id"), blocked); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": message})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	targetID := chi.URLParam(r, "id")
	if targetID == identity.ID {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "cannot delete your own account")
		return
	}
	if err := h.service.Delete(r.Context(), targetID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

type profilePictureRequest struct {
	ProfilePicture string `json:"profilePicture" validate:"required"`
}

func (h *Handler) updateProfilePicture(w http.ResponseWriter, r *http.Request) {
	var req profilePictureRequest
	if !h.decodeValid(w, r, &req) {
		return
	}
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.UpdateProfilePicture(r.Context(), identity.ID, &req.ProfilePicture); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Profile picture updated"})
}

func (h *Handler) removeProfilePicture(w http.ResponseWriter, r *http.Request) {
	identity := sessionauth.IdentityFromContext(r.Context())
	if err := h.service.UpdateProfilePicture(r.Context(), identity.ID, nil); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Profile picture removed"})
}

func (h *Handler) getProfilePicture(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profilePicture": user.ProfilePicture})
}

func (h *Handler) decodeValid(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}
