package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/leave-ledger/internal/config"
	"github.com/cmlabs-hris/leave-ledger/internal/jobs"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/email"
	"github.com/hibiken/asynq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "leave-ledger-worker:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})).
		With(slog.String("app", "leave-ledger-worker"), slog.String("env", cfg.App.Env))
	slog.SetDefault(logger)

	if cfg.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is required for the worker")
	}

	mailer, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	decisionEmails := jobs.NewLeaveDecisionEmailJob(mailer, logger)
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Logger:      logger,
		Concurrency: cfg.Notification.Workers,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLeaveDecisionEmail, Handler: decisionEmails.Handle},
		},
	})
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("worker: %w", err)
	}
	logger.Info("worker stopped")
	return nil
}
