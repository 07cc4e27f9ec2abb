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

	httptransport "github.com/spec-kit/erms/internal/api/http"
	"github.com/spec-kit/erms/internal/api/http/handlers"
	"github.com/spec-kit/erms/internal/auth"
	"github.com/spec-kit/erms/internal/cache"
	"github.com/spec-kit/erms/internal/config"
	"github.com/spec-kit/erms/internal/events"
	"github.com/spec-kit/erms/internal/observability"
	"github.com/spec-kit/erms/internal/persistence"
	"github.com/spec-kit/erms/internal/repository"
	"github.com/spec-kit/erms/internal/repository/memory"
	"github.com/spec-kit/erms/internal/service"
	"github.com/spec-kit/erms/internal/worker"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logger, cfg.App)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

type repositories struct {
	users       repository.UserRepository
	engineers   repository.EngineerRepository
	projects    repository.ProjectRepository
	assignments repository.AssignmentRepository
}

func newRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{
			users:       store.Users(),
			engineers:   store.Engineers(),
			projects:    store.Projects(),
			assignments: store.Assignments(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		users:       repository.NewUserRepository(pool),
		engineers:   repository.NewEngineerRepository(pool),
		projects:    repository.NewProjectRepository(pool),
		assignments: repository.NewAssignmentRepository(pool),
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var capacityCache cache.CapacityCache = cache.Nop{}
	switch {
	case redis.Enabled():
		capacityCache = cache.NewRedisCapacityCache(redis.Client, cfg.Capacity.CacheTTL())
	case !pg.Enabled():
		// the in-memory store implies a single process
		capacityCache = cache.NewMemoryCapacityCache(cfg.Capacity.CacheTTL())
	}

	repos := newRepositories(pg)
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:     repos.users,
		EngineerRepo: repos.engineers,
		Logger:       logger,
	})
	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.users)

	capacityService := service.NewCapacityService(service.CapacityDependencies{
		EngineerRepo:   repos.engineers,
		AssignmentRepo: repos.assignments,
		Cache:          capacityCache,
		Metrics:        metrics,
		Logger:         logger,
	})
	engineerService := service.NewEngineerService(service.EngineerDependencies{
		EngineerRepo:   repos.engineers,
		AssignmentRepo: repos.assignments,
		Capacity:       capacityService,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	projectService := service.NewProjectService(service.ProjectDependencies{
		ProjectRepo: repos.projects,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		EngineerRepo:   repos.engineers,
		ProjectRepo:    repos.projects,
		AssignmentRepo: repos.assignments,
		Capacity:       capacityService,
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Engineers:      handlers.NewEngineersHandler(engineerService, capacityService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Assignments:    handlers.NewAssignmentsHandler(assignmentService),
		AuthMiddleware: authMiddleware,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}
	return app.ShutdownWithTimeout(10 * time.Second)
}
