package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/identity"
	"github.com/spec-kit/helpdesk-service/internal/kb"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/store"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("failed to init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	var redis *persistence.Redis
	if cfg.Redis.Enabled {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
	}

	var (
		sinks            []worker.EventSink
		notificationRepo repository.NotificationRepository
		historyRepo      repository.TicketHistoryRepository
	)
	if redis.Enabled() {
		sinks = append(sinks, worker.NewRedisSink(redis, cfg.Redis.Channel))
	}
	if pg.Enabled() {
		pool := pg.PoolHandle()
		notificationRepo = repository.NewNotificationRepository(pool)
		historyRepo = repository.NewTicketHistoryRepository(pool)
		sinks = append(sinks, worker.NewArchiveSink(notificationRepo, historyRepo))
	}

	notificationWorker := worker.NewNotificationWorker(logger.Named("notifications"), cfg.Notification.WorkerBuffer, sinks...)
	var queue service.EventQueue
	if len(sinks) > 0 {
		// Stop drains the queue after the server has shut down.
		notificationWorker.Start(context.WithoutCancel(ctx))
		queue = notificationWorker
	}
	defer notificationWorker.Stop()

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, queue, logger, cfg.Notification).RegisterHandlers()

	ticketStore := store.New(store.Seed(time.Now()),
		store.WithPolicy(cfg.Workflow.Policy),
		store.WithDispatcher(dispatcher),
		store.WithLogger(logger.Named("store")),
		store.WithCloseDueAfter(cfg.Workflow.CloseDue()),
		store.WithNotificationRetention(cfg.Notification.Retention),
	)

	directory, err := identity.NewDemoDirectory(cfg.Auth.DemoPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to build user directory: %w", err)
	}
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	ticketService := service.NewTicketService(ticketStore, directory, time.Now)
	knowledgeService := service.NewKnowledgeService(ticketStore, kb.NewRenderer(), logger)
	authService := service.NewAuthService(directory, tokens)
	archiveService := service.NewArchiveService(notificationRepo, historyRepo, ticketStore)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Users:          handlers.NewUsersHandler(authService, directory),
		Tickets:        handlers.NewTicketsHandler(ticketService, directory),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService, service.NewAssignmentService(ticketStore, directory), directory),
		Staff:          handlers.NewStaffHandler(ticketService, archiveService, directory, metrics),
		KB:             handlers.NewKBHandler(knowledgeService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, directory),
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("workflow_policy", string(cfg.Workflow.Policy)))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	return app.ShutdownWithTimeout(shutdownTimeout)
}
