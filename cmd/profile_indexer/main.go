package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/application"
	"github.com/oksasatya/account-service/internal/container"
	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/mailer"
)

// profile_indexer consumes profile events from RabbitMQ and keeps the
// Elasticsearch profiles index in sync with the credential store.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env, cfg.LogLevel)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQProfileQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		logger.Fatal("Elasticsearch not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	userRepo, closeStore, err := container.OpenUserRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open credential store: %v", err)
	}
	defer closeStore()

	es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.Fatalf("failed to init elasticsearch client: %v", err)
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQProfileQueue)
	if err != nil {
		logger.Fatalf("failed to connect rabbitmq: %v", err)
	}
	defer consumer.Close()

	// The indexer never sends mail or issues tokens.
	jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL, cfg.VerificationTTL)
	svc := application.NewService(userRepo, jwtManager, mailer.NewLogSender(logger), logger,
		container.Settings(cfg), application.WithSearch(es))

	if err := svc.EnsureSearchIndex(ctx); err != nil {
		logger.Fatalf("failed to ensure profiles index: %v", err)
	}

	logger.WithField("queue", cfg.RabbitMQProfileQueue).Info("profile indexer listening")
	err = consumer.Consume(ctx, func(ctx context.Context, body []byte) error {
		if err := svc.HandleProfileEvent(ctx, body); err != nil {
			helpers.LogError(logger, "profile event failed", err, nil)
			return err
		}
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("consume: %v", err)
	}
	logger.Info("profile indexer stopped")
}
