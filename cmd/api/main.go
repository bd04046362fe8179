package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/restaurantos/restaurant-service/internal/api/http"
	"github.com/restaurantos/restaurant-service/internal/api/http/handlers"
	"github.com/restaurantos/restaurant-service/internal/auth"
	"github.com/restaurantos/restaurant-service/internal/config"
	"github.com/restaurantos/restaurant-service/internal/events"
	"github.com/restaurantos/restaurant-service/internal/observability"
	"github.com/restaurantos/restaurant-service/internal/persistence"
	"github.com/restaurantos/restaurant-service/internal/ratelimit"
	"github.com/restaurantos/restaurant-service/internal/service"
	"github.com/restaurantos/restaurant-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("failed to init token manager", zap.Error(err))
	}

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

	dependencies := map[string]handlers.Pinger{"redis": redis}

	stores := pg.Stores()
	if pg.Mode() == persistence.StorePostgres {
		dependencies["postgres"] = pg
	}

	dispatcher := events.NewInMemoryDispatcher(events.WithLogger(logger))
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	limiter := ratelimit.NewRedisLimiter(redis.Client, redis.Key("login:"), cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:       stores.Users,
		RestaurantRepo: stores.Restaurants,
		TenantRepo:     stores.Tenants,
		Tokens:         tokens,
		Limiter:        limiter,
		Dispatcher:     dispatcher,
		Recorder:       metrics,
		Logger:         logger,
	})

	if cfg.App.SeedDemo {
		seeder := service.NewSeeder(stores, cfg.Auth.BcryptCost, logger)
		if _, err := seeder.SeedDemo(ctx); err != nil {
			logger.Fatal("failed to seed demo accounts", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: httptransport.ErrorHandler(logger, metrics),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:           handlers.NewAuthHandler(authService),
		Staff:          handlers.NewStaffHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, metrics, logger),
		Gatherer:       registry,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
