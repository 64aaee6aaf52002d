package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/raama-app/raama/internal/app"
	"github.com/raama-app/raama/internal/mail"
	"github.com/raama-app/raama/internal/notifications"
	"github.com/raama-app/raama/internal/platform/cache"
	"github.com/raama-app/raama/internal/platform/db"
	"github.com/raama-app/raama/internal/social"
	"github.com/raama-app/raama/internal/users"
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

	notifRepo := notifications.NewRepository(pool)
	notifService := notifications.NewService(notifRepo, redisClient, logger)

	sender := mail.NewSender(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		From:     cfg.SMTPFrom,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})

	mailJob := &jobs.SendEmailJob{Sender: sender, Logger: logger}
	fanoutJob := &jobs.NotifyFanoutJob{
		Followers: social.NewRepository(pool),
		Inbox:     notifService,
		Logger:    logger,
	}
	broadcastJob := &jobs.BroadcastJob{
		Users:  users.NewRepository(pool),
		Inbox:  notifService,
		Logger: logger,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskTypeNotifyFanout, Handler: fanoutJob.Handle},
			{Type: jobs.TaskTypeBroadcast, Handler: broadcastJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
