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

	"github.com/odyssey-erp/odyssey-admin/internal/activities"
	"github.com/odyssey-erp/odyssey-admin/internal/app"
	"github.com/odyssey-erp/odyssey-admin/internal/dashboard"
	"github.com/odyssey-erp/odyssey-admin/internal/observability"
	"github.com/odyssey-erp/odyssey-admin/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-admin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
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
	metrics := observability.NewMetrics()

	// Queued activity writes need a store shared with the worker.
	var (
		jobClient *jobs.Client
		inspector *asynq.Inspector
		recorder  activities.Recorder
	)
	if cfg.QueueEnabled() {
		inspector = asynq.NewInspector(cache.QueueOpt(cfg.RedisAddr))
		defer func() { _ = inspector.Close() }()
		if cfg.StoreDriver == app.StorePostgres {
			jobClient = jobs.NewClient(cache.QueueOpt(cfg.RedisAddr), metrics.Jobs())
			defer func() { _ = jobClient.Close() }()
			recorder = jobClient
		}
	}

	services, err := app.NewServices(ctx, cfg, logger, app.ServiceOptions{Recorder: recorder})
	if err != nil {
		logger.Error("init services", slog.Any("error", err))
		os.Exit(1)
	}
	defer services.Close()

	if err := services.Cache.ListenForInvalidation(ctx, dashboard.BumpChannel); err != nil {
		logger.Warn("dashboard cache invalidation listener", slog.Any("error", err))
	}
	if jobClient != nil {
		if err := jobClient.EnqueueDashboardWarmup(ctx, "startup"); err != nil {
			logger.Warn("enqueue dashboard warmup", slog.Any("error", err))
		}
	}

	params := app.HandlersFor(logger, services)
	params.Config = cfg
	params.Metrics = metrics
	if inspector != nil {
		params.JobHandler = jobs.NewHandler(inspector, logger)
	} else {
		params.JobHandler = jobs.NewHandler(nil, logger)
	}
	router := app.NewRouter(params)

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
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
