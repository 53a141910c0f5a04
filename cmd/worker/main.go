package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/tilequote/tilequote/internal/analytics"
	"github.com/tilequote/tilequote/internal/app"
	"github.com/tilequote/tilequote/internal/clients"
	"github.com/tilequote/tilequote/internal/expenses"
	"github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/internal/observability"
	"github.com/tilequote/tilequote/internal/platform/cache"
	"github.com/tilequote/tilequote/internal/platform/db"
	"github.com/tilequote/tilequote/internal/quotes"
	"github.com/tilequote/tilequote/internal/settings"
	"github.com/tilequote/tilequote/jobs"
	"github.com/tilequote/tilequote/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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
		logger.Error("connect database", slog.Any("error", err))
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

	metrics := observability.NewMetrics()
	settingsService := settings.NewService(settings.NewRepository(pool), cache.NewVersioned(redisClient, "settings", cfg.CacheTTL), logger)
	quoteRepo := quotes.NewRepository(pool)
	analyticsService := analytics.NewService(
		quoteRepo,
		expenses.NewService(expenses.NewRepository(pool), nil, logger),
		settingsService,
		cache.NewVersioned(redisClient, "dashboard", cfg.CacheTTL),
		logger,
	)
	quoteService := quotes.NewService(quotes.Deps{
		Repo:     quoteRepo,
		Settings: settingsService,
		Clients:  clients.NewService(clients.NewRepository(pool), logger),
		Metrics:  metrics,
		Logger:   logger,
	})

	warmupJob := jobs.NewDashboardWarmupJob(analyticsService, logger, metrics)
	renderJob := jobs.NewQuoteRenderJob(quoteService, export.NewPDFRenderer(report.NewClient(cfg.GotenbergURL)), cfg.ExportDir, logger, metrics)

	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskQuoteRender, Handler: renderJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: jobs.DashboardWarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
