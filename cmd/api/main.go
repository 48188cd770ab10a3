package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/leave-ledger/internal/config"
	appHTTP "github.com/cmlabs-hris/leave-ledger/internal/handler/http"
	"github.com/cmlabs-hris/leave-ledger/internal/jobs"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/cache"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/jwt"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/metrics"
	"github.com/cmlabs-hris/leave-ledger/internal/pkg/sse"
	"github.com/cmlabs-hris/leave-ledger/internal/service/access"
	auditService "github.com/cmlabs-hris/leave-ledger/internal/service/audit"
	calendarService "github.com/cmlabs-hris/leave-ledger/internal/service/calendar"
	leaveService "github.com/cmlabs-hris/leave-ledger/internal/service/leave"
	notificationService "github.com/cmlabs-hris/leave-ledger/internal/service/notification"
	"github.com/go-chi/httplog/v3"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "leave-ledger:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "leave-ledger"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	m := metrics.New()

	var redisClient *redis.Client
	var mailer notificationService.EmailEnqueuer
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()

		jobClient := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer jobClient.Close()
		mailer = jobClient
	} else {
		logger.Warn("REDIS_ADDR not set; holiday cache and decision emails are disabled")
	}

	calendar := calendarService.NewService(repos.holidays, redisClient, cfg.Redis.HolidayCacheTTL, m, logger)

	hub := sse.NewHub()
	notifications := notificationService.NewNotificationService(repos.notifications, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
	}, logger)
	defer notifications.Stop()

	audits := auditService.NewService(repos.auditLogs, logger)

	leaves := leaveService.NewLeaveService(
		repos.uow,
		repos.ledger,
		repos.requests,
		repos.leaveTypes,
		calendar,
		leaveService.WithNotifier(notificationService.NewLeaveNotifier(notifications, repos.employees, mailer, logger)),
		leaveService.WithAuditSink(audits),
		leaveService.WithMetrics(m),
		leaveService.WithLogger(logger),
	)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:              logger,
		AllowedOrigins:      cfg.App.CORSOrigins,
		RateLimit:           cfg.App.RateLimit,
		Production:          cfg.IsProduction(),
		JWTService:          jwtService,
		Metrics:             m,
		LeaveHandler:        appHTTP.NewLeaveHandler(leaves, access.NewPolicy(repos.employees)),
		HolidayHandler:      appHTTP.NewHolidayHandler(calendar),
		NotificationHandler: appHTTP.NewNotificationHandler(notifications, jwtService),
		AuditHandler:        appHTTP.NewAuditHandler(audits),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	// Streams hold their connections open; disconnect them before Shutdown waits.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
