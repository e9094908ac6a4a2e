package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/sxo6luxe/sxo6-backend/internal/notifications"
	"github.com/sxo6luxe/sxo6-backend/internal/orders"
	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	"github.com/sxo6luxe/sxo6-backend/pkg/db"
	"github.com/sxo6luxe/sxo6-backend/pkg/instance"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/mailer"
	"github.com/sxo6luxe/sxo6-backend/pkg/pubsub"
	"github.com/sxo6luxe/sxo6-backend/pkg/pubsub/idempotency"
	"github.com/sxo6luxe/sxo6-backend/pkg/redis"
)

// Processed event IDs stay marked long enough to cover Pub/Sub redelivery.
const processedEventTTL = 24 * time.Hour

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "email-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "email-worker"

	logg = logger.New(logger.Options{
		ServiceName: "email-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	mailClient, err := mailer.NewClient(cfg.Resend)
	requireResource(ctx, logg, "mailer", err)

	manager, err := idempotency.NewManager(redisClient, processedEventTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	consumer, err := notifications.NewConsumer(
		orders.NewRepository(dbClient.DB()),
		notifications.NewRepository(dbClient.DB()),
		mailClient,
		pubsubClient.OrderEmailSubscription(),
		manager,
		logg,
	)
	requireResource(ctx, logg, "order email consumer", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
		"instance":    instance.GetID(),
	})
	logg.Info(runCtx, "email worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "email worker stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
