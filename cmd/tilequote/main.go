package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/tilequote/tilequote/cmd/tilequote/cli"
	"github.com/tilequote/tilequote/internal/analytics"
	analyticsexport "github.com/tilequote/tilequote/internal/analytics/export"
	analytichttp "github.com/tilequote/tilequote/internal/analytics/http"
	"github.com/tilequote/tilequote/internal/app"
	"github.com/tilequote/tilequote/internal/clients"
	"github.com/tilequote/tilequote/internal/diary"
	"github.com/tilequote/tilequote/internal/expenses"
	"github.com/tilequote/tilequote/internal/export"
	"github.com/tilequote/tilequote/internal/interpret"
	"github.com/tilequote/tilequote/internal/observability"
	"github.com/tilequote/tilequote/internal/platform/cache"
	"github.com/tilequote/tilequote/internal/platform/db"
	"github.com/tilequote/tilequote/internal/platform/migrate"
	"github.com/tilequote/tilequote/internal/quotes"
	"github.com/tilequote/tilequote/internal/settings"
	"github.com/tilequote/tilequote/jobs"
	"github.com/tilequote/tilequote/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := cli.Run(ctx, cfg.RedisAddr, os.Args[2:], os.Stdout); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if app.ShouldMigrate(cfg) {
		if err := migrate.Up(ctx, dbpool); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	pdfClient := report.NewClient(cfg.GotenbergURL)

	settingsService := settings.NewService(settings.NewRepository(dbpool), versioned(redisClient, "settings", cfg.CacheTTL), logger)
	clientService := clients.NewService(clients.NewRepository(dbpool), logger)

	quoteRepo := quotes.NewRepository(dbpool)
	expenseRepo := expenses.NewRepository(dbpool)
	dashboardCache := versioned(redisClient, "dashboard", cfg.CacheTTL)
	expenseReader := expenses.NewService(expenseRepo, nil, logger)
	analyticsService := analytics.NewService(quoteRepo, expenseReader, settingsService, dashboardCache, logger)
	expenseService := expenses.NewService(expenseRepo, analyticsService, logger)

	deps := quotes.Deps{
		Repo:        quoteRepo,
		Settings:    settingsService,
		Clients:     clientService,
		Invalidator: analyticsService,
		Metrics:     metrics,
		Logger:      logger,
	}
	if cfg.InterpreterURL != "" {
		deps.Interpreter = interpret.NewHTTPClient(cfg.InterpreterURL, cfg.InterpreterAPIKey, cfg.InterpreterTimeout)
	}
	quoteService := quotes.NewService(deps)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		TokenAuth:        app.NewTokenAuth(cfg.APITokenHash),
		Metrics:          metrics,
		SettingsHandler:  settings.NewHandler(settingsService, logger),
		ClientsHandler:   clients.NewHandler(clientService, logger),
		QuotesHandler:    quotes.NewHandler(quoteService, export.NewPDFRenderer(pdfClient), jobClient, logger),
		ExpensesHandler:  expenses.NewHandler(expenseService, logger),
		DiaryHandler:     diary.NewHandler(diary.NewService(diary.NewRepository(dbpool), logger), logger),
		AnalyticsHandler: analytichttp.NewHandler(logger, analyticsService, settingsService, analyticsexport.NewPDFExporter(pdfClient)),
		JobHandler:       jobs.NewHandler(inspector, logger),
		ReportHandler:    report.NewHandler(pdfClient, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// versioned returns a disabled cache when redis is unreachable.
func versioned(client *redis.Client, namespace string, ttl time.Duration) *cache.Versioned {
	if client == nil {
		return nil
	}
	return cache.NewVersioned(client, namespace, ttl)
}
