package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/user-lifecycle/internal/api/http"
	"github.com/spec-kit/user-lifecycle/internal/api/http/handlers"
	"github.com/spec-kit/user-lifecycle/internal/cache"
	"github.com/spec-kit/user-lifecycle/internal/config"
	"github.com/spec-kit/user-lifecycle/internal/domain"
	"github.com/spec-kit/user-lifecycle/internal/events"
	"github.com/spec-kit/user-lifecycle/internal/observability"
	"github.com/spec-kit/user-lifecycle/internal/persistence"
	"github.com/spec-kit/user-lifecycle/internal/repository"
	"github.com/spec-kit/user-lifecycle/internal/service"
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

	publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	defer publisher.Close()

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	userCache := cache.NewViewCache[domain.User](redis.Client, cfg.Redis.CacheTTL(), logger)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:  userRepo,
		Publisher: publisher,
		UserCache: userCache,
	}, logger)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:  handlers.NewUsersHandler(userService),
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
