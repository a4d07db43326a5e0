package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Sherryli112/HatGiveMe/internal/api/http"
	"github.com/Sherryli112/HatGiveMe/internal/api/http/handlers"
	"github.com/Sherryli112/HatGiveMe/internal/auth"
	"github.com/Sherryli112/HatGiveMe/internal/bootstrap"
	"github.com/Sherryli112/HatGiveMe/internal/config"
	"github.com/Sherryli112/HatGiveMe/internal/events"
	"github.com/Sherryli112/HatGiveMe/internal/observability"
	"github.com/Sherryli112/HatGiveMe/internal/persistence"
	"github.com/Sherryli112/HatGiveMe/internal/repository"
	"github.com/Sherryli112/HatGiveMe/internal/service"
	"github.com/Sherryli112/HatGiveMe/internal/worker"
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
	productRepo := repository.NewProductRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	uow := repository.NewUnitOfWork(pool)

	if err := bootstrap.EnsurePrimaryAdmin(ctx, userRepo, *cfg, logger); err != nil {
		logger.Fatal("failed to seed primary admin", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:          userRepo,
		UnitOfWork:        uow,
		Dispatcher:        dispatcher,
		PrimaryAdminEmail: cfg.Store.PrimaryAdminEmail,
		BcryptCost:        cfg.Auth.BcryptCost,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orderRepo,
		UnitOfWork:  uow,
		Dispatcher:  dispatcher,
		MaxAttempts: cfg.Store.PlacementMaxAttempts,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		ProductRepo: productRepo,
		Cache:       redis.ClientHandle(),
		CacheTTL:    cfg.Store.CatalogCacheTTL(),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		Products:       handlers.NewProductsHandler(catalogService),
		Orders:         handlers.NewOrdersHandler(orderService),
		AuthMiddleware: authMiddleware,
		APIKey:         cfg.Auth.APIKey,
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
