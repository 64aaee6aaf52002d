package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/raama-app/raama/internal/bookmarks"
	"github.com/raama-app/raama/internal/collections"
	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/observability"
	"github.com/raama-app/raama/internal/ratelimit"
	"github.com/raama-app/raama/internal/search"
	"github.com/raama-app/raama/internal/secgate"
	"github.com/raama-app/raama/internal/shayaris"
	"github.com/raama-app/raama/internal/social"
	"github.com/raama-app/raama/internal/users"
	"github.com/raama-app/raama/internal/writerreq"
	"github.com/raama-app/raama/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Gate    *secgate.Gate
	Limiter *ratelimit.Limiter
	Metrics *observability.Metrics

	UsersHandler         *users.Handler
	ShayarisHandler      *shayaris.Handler
	SocialHandler        *social.Handler
	CollectionsHandler   *collections.Handler
	BookmarksHandler     *bookmarks.Handler
	NotificationsHandler *notifications.Handler
	SearchHandler        *search.Handler
	WriterReqHandler     *writerreq.Handler
	JobHandler           *jobs.Handler
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Gate:    params.Gate,
		Limiter: params.Limiter,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		params.UsersHandler.MountRoutes(r)
		params.ShayarisHandler.MountRoutes(r)
		params.SocialHandler.MountRoutes(r)
		params.CollectionsHandler.MountRoutes(r)
		params.BookmarksHandler.MountRoutes(r)
		params.NotificationsHandler.MountRoutes(r)
		params.SearchHandler.MountRoutes(r)
		params.WriterReqHandler.MountRoutes(r)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
