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
	"github.com/spec-kit/user-lifecycle/internal/config"
	"github.com/spec-kit/user-lifecycle/internal/notifier"
	"github.com/spec-kit/user-lifecycle/internal/observability"
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

	sender, err := notifier.NewSMTPSender(cfg.Mail)
	if err != nil {
		logger.Fatal("failed to init smtp sender", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	mailer := notifier.NewMailer(sender, logger)

	consumer := notifier.NewConsumer(cfg.Kafka, mailer, logger, metrics)
	defer consumer.Close()

	go consumer.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterNotifierRoutes(app, httptransport.NotifierRouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, nil, nil),
		Notifications: handlers.NewNotificationsHandler(mailer),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
