package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/elotech/helpdesk/internal/ai"
	httptransport "github.com/elotech/helpdesk/internal/api/http"
	"github.com/elotech/helpdesk/internal/api/http/handlers"
	"github.com/elotech/helpdesk/internal/auth"
	"github.com/elotech/helpdesk/internal/config"
	"github.com/elotech/helpdesk/internal/events"
	"github.com/elotech/helpdesk/internal/observability"
	"github.com/elotech/helpdesk/internal/persistence"
	"github.com/elotech/helpdesk/internal/presence"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/internal/service"
	"github.com/elotech/helpdesk/internal/watch"
	"github.com/elotech/helpdesk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	interactionRepo := repository.NewInteractionRepository(pool)
	technicianRepo := repository.NewTechnicianRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	typingStore := presence.NewRedisStore(redis.Client, cfg.Redis.TypingTTL())
	dispatcher := events.NewRedisBridge(ctx, events.NewInMemoryDispatcher(), redis.Client, uuid.NewString(), logger)
	hub := watch.NewHub()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		Logger:            logger,
	})
	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Auth); err != nil {
		logger.Fatal("failed to seed bootstrap admin", zap.Error(err))
	}

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      ticketRepo,
		InteractionRepo: interactionRepo,
		UserRepo:        userRepo,
		TechnicianRepo:  technicianRepo,
		Presence:        typingStore,
		Dispatcher:      dispatcher,
	})
	technicianService := service.NewTechnicianService(technicianRepo)
	articleService := service.NewArticleService(articleRepo)

	var aiClient *ai.Client
	if cfg.AI.Enabled() {
		aiClient = ai.NewClient(cfg.AI)
	} else {
		logger.Info("AI_API_KEY not set; technician suggestions use deterministic ranking")
	}
	suggestionService := service.NewSuggestionService(aiClient, technicianRepo, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)
	worker.NewSnapshotFanout(ticketService, hub, metrics, logger).Register(dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AdminTickets:   handlers.NewAdminTicketsHandler(ticketService),
		Technicians:    handlers.NewTechniciansHandler(technicianService),
		Articles:       handlers.NewArticlesHandler(articleService),
		Suggestions:    handlers.NewSuggestionsHandler(suggestionService),
		Stream:         handlers.NewStreamHandler(authService.TokenManager(), userRepo, ticketService, hub, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
