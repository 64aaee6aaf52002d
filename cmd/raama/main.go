package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/raama-app/raama/internal/ai"
	"github.com/raama-app/raama/internal/app"
	"github.com/raama-app/raama/internal/bookmarks"
	"github.com/raama-app/raama/internal/collections"
	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/observability"
	"github.com/raama-app/raama/internal/platform/cache"
	"github.com/raama-app/raama/internal/platform/db"
	"github.com/raama-app/raama/internal/ratelimit"
	"github.com/raama-app/raama/internal/search"
	"github.com/raama-app/raama/internal/secgate"
	"github.com/raama-app/raama/internal/sessionauth"
	"github.com/raama-app/raama/internal/shayaris"
	"github.com/raama-app/raama/internal/social"
	"github.com/raama-app/raama/internal/token"
	"github.com/raama-app/raama/internal/users"
	"github.com/raama-app/raama/internal/writerreq"
	"github.com/raama-app/raama/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := token.NewService(cfg.TokenSecret, token.WithLifetime(cfg.TokenTTL))
	if err != nil {
		logger.Error("init token service", slog.Any("error", err))
		os.Exit(1)
	}

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	enricher, err := ai.NewClient(ctx, ai.Config{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		RequestsPerMinute: cfg.GeminiRPM,
	})
	if err != nil {
		logger.Error("init gemini client", slog.Any("error", err))
		os.Exit(1)
	}
	if enricher.Enabled() {
		logger.Info("ai enrichment enabled", slog.String("model", cfg.GeminiModel))
	} else {
		logger.Info("ai enrichment disabled, shayaris publish without analysis")
	}

	userRepo := users.NewRepository(pool)
	identities := users.NewIdentitySource(userRepo)
	authority := sessionauth.NewAuthority(tokens, identities)
	authMW := sessionauth.Middleware{Authority: authority, Logger: logger}

	notifRepo := notifications.NewRepository(pool)
	notifService := notifications.NewService(notifRepo, redisClient, logger)
	stream := notifications.NewStream(authority, redisClient, logger)

	userService := users.NewService(userRepo, tokens, queue, notifService)

	shayariRepo := shayaris.NewRepository(pool)
	shayariService := shayaris.NewService(logger, shayariRepo, redisClient, enricher, notifService, queue)

	socialRepo := social.NewRepository(pool)
	socialService := social.NewService(socialRepo, identities, notifService)

	collectionRepo := collections.NewRepository(pool)
	collectionService := collections.NewService(collectionRepo, shayariService)

	bookmarkRepo := bookmarks.NewRepository(pool)
	bookmarkService := bookmarks.NewService(bookmarkRepo, shayariService)

	searchRepo := search.NewRepository(pool)
	searchService := search.NewService(logger, searchRepo)

	writerReqRepo := writerreq.NewRepository(pool)
	writerReqService := writerreq.NewService(writerReqRepo, userService, notifService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	limiter := ratelimit.NewLimiter(ratelimit.DefaultTable())
	limiter.StartJanitor(ctx, time.Minute)
	gate := secgate.NewGate(logger)

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Gate:    gate,
		Limiter: limiter,
		Metrics: observability.NewMetrics(),

		UsersHandler:         users.NewHandler(logger, userService, authMW, shayariRepo, socialRepo, writerReqRepo),
		ShayarisHandler:      shayaris.NewHandler(logger, shayariService, authMW),
		SocialHandler:        social.NewHandler(logger, socialService, authMW),
		CollectionsHandler:   collections.NewHandler(collectionService, authMW),
		BookmarksHandler:     bookmarks.NewHandler(bookmarkService, authMW),
		NotificationsHandler: notifications.NewHandler(logger, notifService, authMW, queue, stream),
		SearchHandler:        search.NewHandler(searchService, authMW),
		WriterReqHandler:     writerreq.NewHandler(writerReqService, authMW),
		JobHandler:           jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
