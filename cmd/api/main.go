package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sxo6luxe/sxo6-backend/api/routes"
	"github.com/sxo6luxe/sxo6-backend/internal/addresses"
	"github.com/sxo6luxe/sxo6-backend/internal/auth"
	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	"github.com/sxo6luxe/sxo6-backend/internal/catalog"
	"github.com/sxo6luxe/sxo6-backend/internal/checkout"
	"github.com/sxo6luxe/sxo6-backend/internal/coupons"
	"github.com/sxo6luxe/sxo6-backend/internal/notifications"
	"github.com/sxo6luxe/sxo6-backend/internal/orders"
	"github.com/sxo6luxe/sxo6-backend/internal/profiles"
	"github.com/sxo6luxe/sxo6-backend/pkg/auth/session"
	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	"github.com/sxo6luxe/sxo6-backend/pkg/db"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/mailer"
	"github.com/sxo6luxe/sxo6-backend/pkg/metrics"
	"github.com/sxo6luxe/sxo6-backend/pkg/migrate"
	"github.com/sxo6luxe/sxo6-backend/pkg/paystack"
	"github.com/sxo6luxe/sxo6-backend/pkg/pubsub"
	"github.com/sxo6luxe/sxo6-backend/pkg/rates"
	"github.com/sxo6luxe/sxo6-backend/pkg/redis"
	"github.com/sxo6luxe/sxo6-backend/pkg/storage/gcs"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "gcs", err)
	defer gcsClient.Close()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	paystackClient, err := paystack.NewClient(cfg.Paystack)
	requireResource(ctx, logg, "paystack", err)

	ratesClient, err := rates.NewClient(cfg.Rates, redisClient, logg)
	requireResource(ctx, logg, "rates", err)

	mailClient, err := mailer.NewClient(cfg.Resend)
	requireResource(ctx, logg, "mailer", err)

	gormDB := dbClient.DB()
	profileRepo := profiles.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	couponRepo := coupons.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	addressRepo := addresses.NewRepository(gormDB)
	checkoutRepo := checkout.NewRepository(gormDB)
	emailLogRepo := notifications.NewRepository(gormDB)

	emailPublisher, err := notifications.NewPublisher(pubsubClient.OrderEmailPublisher())
	requireResource(ctx, logg, "order email publisher", err)

	resetMailer, err := notifications.NewResetMailer(emailLogRepo, mailClient, cfg.Frontend.BaseURL, logg)
	requireResource(ctx, logg, "reset mailer", err)

	authService, err := auth.NewService(auth.ServiceParams{
		ProfileRepo:    profileRepo,
		ResetTokenRepo: auth.NewResetTokenRepository(gormDB),
		SessionManager: sessionManager,
		ResetMailer:    resetMailer,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	requireResource(ctx, logg, "auth service", err)

	profileService, err := profiles.NewService(profiles.ServiceParams{Repo: profileRepo, OrderStats: orderRepo})
	requireResource(ctx, logg, "profile service", err)

	catalogService, err := catalog.NewService(catalogRepo, dbClient, gcsClient)
	requireResource(ctx, logg, "catalog service", err)

	couponService, err := coupons.NewService(couponRepo)
	requireResource(ctx, logg, "coupon service", err)

	cartService, err := cart.NewService(cartRepo, catalogRepo, couponService, logg)
	requireResource(ctx, logg, "cart service", err)

	addressService, err := addresses.NewService(addressRepo, dbClient)
	requireResource(ctx, logg, "address service", err)

	orderService, err := orders.NewService(orderRepo, emailPublisher, logg)
	requireResource(ctx, logg, "order service", err)

	registry := prometheus.NewRegistry()
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Repo:       checkoutRepo,
		OrderRepo:  orderRepo,
		CouponRepo: couponRepo,
		Cart:       cartService,
		Gateway:    paystackClient,
		Rates:      ratesClient,
		Publisher:  emailPublisher,
		DB:         dbClient,
		Metrics:    metrics.NewCheckoutMetrics(registry),
		Logger:     logg,
	})
	requireResource(ctx, logg, "checkout service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Storage:        gcsClient,
			SessionChecker: sessionManager,
			Metrics:        registry,

			AuthService:     authService,
			ProfileService:  profileService,
			AddressService:  addressService,
			CatalogService:  catalogService,
			CartService:     cartService,
			CouponService:   couponService,
			CheckoutService: checkoutService,
			OrderService:    orderService,
			EmailLogRepo:    emailLogRepo,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(runCtx, "api server stopped unexpectedly", err)
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
