package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridfan/f1-fantasy/internal/app"
	"github.com/gridfan/f1-fantasy/internal/config"
	"github.com/gridfan/f1-fantasy/internal/observability"
	"github.com/gridfan/f1-fantasy/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.ServiceName)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "init uptrace", "error", err)
		os.Exit(1)
	}
	stopProfiler, err := observability.InitPyroscope(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "init pyroscope", "error", err)
		os.Exit(1)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "build app", "error", err)
		os.Exit(1)
	}

	if err := application.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "start scheduler", "error", err)
		os.Exit(1)
	}

	go func() {
		logger.InfoContext(ctx, "http server starting",
			"addr", cfg.HTTPAddr, "storage", cfg.StorageDriver, "env", cfg.AppEnv)
		if err := application.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "http server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "graceful shutdown failed", "error", err)
	}
	if err := application.Close(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "close app", "error", err)
	}
	if err := stopProfiler(); err != nil {
		logger.ErrorContext(shutdownCtx, "stop profiler", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.ErrorContext(shutdownCtx, "shutdown tracing", "error", err)
	}

	logger.InfoContext(shutdownCtx, "http server stopped")
}
