package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpapi "github.com/spec-kit/opsdesk-service/internal/api/http"
	"github.com/spec-kit/opsdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/opsdesk-service/internal/auth"
	"github.com/spec-kit/opsdesk-service/internal/config"
	"github.com/spec-kit/opsdesk-service/internal/events"
	"github.com/spec-kit/opsdesk-service/internal/observability"
	"github.com/spec-kit/opsdesk-service/internal/persistence"
	"github.com/spec-kit/opsdesk-service/internal/repository"
	"github.com/spec-kit/opsdesk-service/internal/service"
	"github.com/spec-kit/opsdesk-service/internal/storage"
	"github.com/spec-kit/opsdesk-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("postgres connection failed", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), logger); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	store, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}

	pool := postgres.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	fileRepo := repository.NewTicketFileRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	slaRepo := repository.NewSLARepository(pool)
	userRepo := repository.NewUserRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(logger.Named("notifications")).Register(dispatcher)

	slaService := service.NewSLAService(slaRepo, redis.Client, cfg.SLA.CacheTTL(), logger)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:     ticketRepo,
		CommentRepo:    commentRepo,
		AssignmentRepo: assignmentRepo,
		FileRepo:       fileRepo,
		ClientRepo:     clientRepo,
		SLAs:           slaService,
		Store:          store,
		Dispatcher:     dispatcher,
		Logger:         logger.Named("tickets"),
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authService := service.NewAuthService(userRepo, tokens, logger.Named("auth"))
	onboardingService := service.NewOnboardingService(clientRepo, userRepo, dispatcher, cfg.Auth.BcryptCost, logger.Named("onboarding"), nil)
	provisioningService := service.NewProvisioningService(userRepo, cfg.Auth.BcryptCost, logger.Named("provisioning"))

	sweeper := worker.NewOverdueSweeper(ticketRepo, dispatcher, cfg.SLA.SweepInterval(), logger.Named("sweeper"), nil)
	go sweeper.Run(ctx)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httpapi.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httpapi.RegisterRoutes(app, httpapi.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, postgres, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Clients:        handlers.NewClientsHandler(onboardingService),
		Users:          handlers.NewUsersHandler(provisioningService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
	})

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
