package ratelimit

import (
	"log/slog"
	"net/http"

	"github.com/raama-app/raama/internal/platform/httpx"
)

type rejection struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware gates every request through the limiter. Rejections return
// 429 with a machine-readable body; internal counts are never exposed.
func (l *Limiter) Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ClientID(r)
			if !l.Allow(clientID, r.Method, r.URL.Path) {
				if logger != nil {
					logger.Warn("rate limit exceeded",
						slog.String("client", clientID),
						slog.String("path", r.URL.Path))
				}
				httpx.JSON(w, http.StatusTooManyRequests, rejection{
					Error:      "Rate limit exceeded",
					Message:    "Too many requests. Please try again later.",
					RetryAfter: 60,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
