package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/twoofus/server/internal/app"
	"github.com/twoofus/server/internal/config"
	"github.com/twoofus/server/internal/logger"
	"github.com/twoofus/server/internal/routes"
	"github.com/twoofus/server/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN, "server")
	defer logger.Flush()

	app, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		panic(err)
	}
	defer func() {
		closeErr := app.Close()
		if closeErr != nil {
			slog.Error("failed to close app", "error", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Realtime fan-in from Postgres
	go func() {
		err := app.Listen(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("realtime listener stopped", "error", err)
		}
	}()

	// In-process cron, for deployments without an external scheduler
	if cfg.SchedulerEnabled {
		sch, err := scheduler.New(app.Jobs, scheduler.Options{
			Location:         cfg.Location(),
			AssignCron:       cfg.AssignCron,
			ReminderInterval: cfg.ReminderInterval,
			AnniversaryCron:  cfg.AnniversaryCron,
		})
		if err != nil {
			slog.Error("failed to create scheduler", "error", err)
			panic(err)
		}
		sch.Start()
		slog.Info("scheduler started", "jobs", sch.JobNames())
		defer func() {
			if err := sch.Shutdown(); err != nil {
				slog.Error("failed to stop scheduler", "error", err)
			}
		}()
	}

	// No write timeout: the stream endpoint holds responses open.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRoutes(app),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv, "url", "http://localhost:"+cfg.Port)
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
