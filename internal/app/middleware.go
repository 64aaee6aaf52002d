package app

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/raama-app/raama/internal/ratelimit"
	"github.com/raama-app/raama/internal/secgate"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger  *slog.Logger
	Config  *Config
	Gate    *secgate.Gate
	Limiter *ratelimit.Limiter
}

// MiddlewareStack installs the shared middleware chain. Order matters: the
// coarse per-IP flood guard runs before the request gate and the rule-based
// limiter, so abusive clients are shed as early as possible.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		timeoutExcept(timeout, "/api/notifications/stream"),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(1000, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
	// The limiter sits above the gate: a request rejected by the gate has
	// still consumed its rate budget.
	if cfg.Limiter != nil {
		middlewares = append(middlewares, cfg.Limiter.Middleware(cfg.Logger))
	}
	if cfg.Gate != nil {
		middlewares = append(middlewares, cfg.Gate.Middleware)
	}
	return middlewares
}

// timeoutExcept applies the request timeout everywhere but the given path
// prefix. The SSE stream holds its connection open indefinitely.
func timeoutExcept(timeout time.Duration, skipPrefix string) func(http.Handler) http.Handler {
	wrap := middleware.Timeout(timeout)
	return func(next http.Handler) http.Handler {
		timed := wrap(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, skipPrefix) {
				next.ServeHTTP(w, r)
				return
			}
			timed.ServeHTTP(w, r)
		})
	}
}
