package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpadapter "sms-dispatch/internal/adapter/http"
	"sms-dispatch/internal/adapter/postgres"
	"sms-dispatch/internal/adapter/queue"
	"sms-dispatch/internal/adapter/transport"
	"sms-dispatch/internal/adapter/usecase"
	"sms-dispatch/internal/config"
	"sms-dispatch/internal/core/port"
	"sms-dispatch/internal/db"
	"sms-dispatch/internal/report"
)

// main is the entry point of the dispatch service. It loads
// configuration, optionally runs database migrations, initializes the
// database pool, repositories, send gateway, dispatch worker and the
// daily report job, then starts the HTTP server. On receiving a
// termination signal it gracefully shuts everything down.
func main() {
	// .env is optional; real deployments configure the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}
	logger.Info("starting", slog.String("env", cfg.Env))

	if cfg.Psql.RunMigrations {
		if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
			logger.Error("migration error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied successfully")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg.Psql)
	if err != nil {
		logger.Error("database connection error", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	mailingRepo := postgres.NewMailingRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	attemptRepo := postgres.NewAttemptRepository(pool)

	gateway := transport.NewGateway(cfg.Send.BaseURL, cfg.Send.Token, cfg.Send.Timeout, cfg.Send.RatePerSec)
	mailer := usecase.NewMailerUseCase(mailingRepo, clientRepo, attemptRepo, gateway, logger, cfg.Dispatch.RetryBackoff)

	var dispatchQueue port.DispatchQueue
	if cfg.Amqp.Enabled {
		dispatchQueue, err = queue.NewAMQPQueue(cfg.Amqp.URL, logger)
		if err != nil {
			logger.Error("broker connection error", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		dispatchQueue = queue.NewMemoryQueue(0)
	}
	defer dispatchQueue.Close()

	worker := queue.NewWorker(dispatchQueue, mailer, logger)
	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("dispatch worker stopped", slog.Any("error", err))
		}
	}()

	if cfg.Report.Enabled {
		sender := report.NewSMTPSender(cfg.Report.SMTPAddr, cfg.Report.From)
		job := report.NewJob(attemptRepo, sender, cfg.Report.Recipients, cfg.Report.Schedule, logger)
		if err = job.Start(); err != nil {
			logger.Error("report job error", slog.Any("error", err))
			os.Exit(1)
		}
		defer job.Stop()
	}

	handler := httpadapter.NewHandler(mailingRepo, clientRepo, mailer, dispatchQueue, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
