package sessionauth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/raama-app/raama/internal/platform/httpx"
	"github.com/raama-app/raama/internal/token"
)

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the identity placed by Authenticator.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, _ := ctx.Value(identityContextKey{}).(*Identity)
	return identity
}

// Middleware wires the authority into chi route groups.
type Middleware struct {
	Authority *Authority
	Logger    *slog.Logger
}

// Authenticator resolves the bearer token and stores the identity in the
// request context. Any resolution failure rejects with 401; missing or
// malformed headers are never silently admitted.
func (m Middleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "Missing bearer token")
			return
		}
		identity, err := m.Authority.ResolveIdentity(r.Context(), raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", resolveFailureDetail(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin gates elevated operations behind the admin role. It must be
// mounted inside an Authenticator group.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if err := RequireRole(identity, RoleAdmin); err != nil {
			if m.Logger != nil && identity != nil {
				m.Logger.Warn("admin access denied",
					slog.String("user", identity.ID),
					slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireWriter gates publishing operations. Admins pass too.
func (m Middleware) RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := IdentityFromContext(r.Context())
		if identity == nil || (identity.Role != RoleWriter && identity.Role != RoleAdmin) {
			httpx.Problem(w, http.StatusForbidden, "Forbidden", "Writer access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func resolveFailureDetail(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenExpired):
		return "Token expired"
	case errors.Is(err, ErrSessionStale):
		return "Your account role has been updated. Please log out and log back in to access new features."
	case errors.Is(err, ErrUserNotFound):
		return "User not found"
	default:
		return "Invalid token"
	}
}
