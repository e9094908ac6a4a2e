package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sxo6luxe/sxo6-backend/api/controllers"
	"github.com/sxo6luxe/sxo6-backend/api/middleware"
	"github.com/sxo6luxe/sxo6-backend/internal/addresses"
	"github.com/sxo6luxe/sxo6-backend/internal/auth"
	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	"github.com/sxo6luxe/sxo6-backend/internal/catalog"
	checkoutsvc "github.com/sxo6luxe/sxo6-backend/internal/checkout"
	"github.com/sxo6luxe/sxo6-backend/internal/coupons"
	"github.com/sxo6luxe/sxo6-backend/internal/notifications"
	"github.com/sxo6luxe/sxo6-backend/internal/orders"
	"github.com/sxo6luxe/sxo6-backend/internal/profiles"
	"github.com/sxo6luxe/sxo6-backend/pkg/auth/session"
	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	"github.com/sxo6luxe/sxo6-backend/pkg/db"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/redis"
	"github.com/sxo6luxe/sxo6-backend/pkg/storage/gcs"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	Storage        gcs.Pinger
	SessionChecker session.AccessSessionChecker
	Metrics        *prometheus.Registry

	AuthService     auth.Service
	ProfileService  *profiles.Service
	AddressService  addresses.Service
	CatalogService  catalog.Service
	CartService     cart.Service
	CouponService   coupons.Service
	CheckoutService checkoutsvc.Service
	OrderService    orders.Service
	EmailLogRepo    *notifications.Repository
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.DB, params.Redis, params.Storage))
	})

	if params.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(params.Metrics, promhttp.HandlerOpts{}))
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(
				middleware.AuthRateLimit(registerPolicy, params.Redis, logg),
				middleware.GuestSession(logg),
				middleware.Idempotency(params.Redis, logg),
			).Post("/register", controllers.AuthRegister(params.AuthService, params.CartService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, params.Redis, logg)).
				Post("/login", controllers.AuthLogin(params.AuthService, params.CartService, logg))
			r.Post("/logout", controllers.AuthLogout(params.AuthService, cfg.JWT, logg))
			r.Post("/refresh", controllers.AuthRefresh(params.AuthService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, params.Redis, logg)).
				Post("/reset-password", controllers.AuthResetPassword(params.AuthService, logg))
			r.With(middleware.OptionalAuth(cfg.JWT, params.SessionChecker, logg)).
				Post("/update-password", controllers.AuthUpdatePassword(params.AuthService, logg))
		})

		// Public catalog surface.
		r.Get("/products", controllers.ProductList(params.CatalogService, logg))
		r.Get("/products/{slug}", controllers.ProductDetail(params.CatalogService, logg))
		r.Get("/products/{slug}/related", controllers.ProductRelated(params.CatalogService, logg))
		r.Get("/availability", controllers.ProductAvailability(params.CatalogService, logg))
		r.Get("/categories", controllers.CategoryList(params.CatalogService, logg))
		r.Get("/categories/{slug}", controllers.CategoryDetail(params.CatalogService, logg))
		r.Post("/coupons/validate", controllers.CouponValidate(params.CouponService, logg))
		r.Get("/orders/lookup", controllers.OrderLookup(params.OrderService, logg))

		// Shopper surface: works for guests (session header) and users alike.
		r.Group(func(r chi.Router) {
			r.Use(
				middleware.GuestSession(logg),
				middleware.OptionalAuth(cfg.JWT, params.SessionChecker, logg),
				middleware.Idempotency(params.Redis, logg),
			)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(params.CartService, logg))
				r.Get("/totals", controllers.CartTotals(params.CartService, logg))
				r.Post("/items", controllers.CartAddItem(params.CartService, logg))
				r.Patch("/items/{itemID}", controllers.CartUpdateItem(params.CartService, logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(params.CartService, logg))
				r.Delete("/", controllers.CartClear(params.CartService, logg))
				r.Post("/merge", controllers.CartMerge(params.CartService, logg))
			})

			r.Post("/checkout", controllers.CheckoutCreate(params.CheckoutService, logg))
			r.Post("/checkout/{orderID}/confirm", controllers.CheckoutConfirm(params.CheckoutService, logg))
		})

		// Account surface: requires a live session.
		r.Group(func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, params.SessionChecker, logg),
				middleware.Idempotency(params.Redis, logg),
			)

			r.Get("/profile", controllers.ProfileGet(params.ProfileService, logg))
			r.Put("/profile", controllers.ProfileUpdate(params.ProfileService, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(params.AddressService, logg))
				r.Post("/", controllers.AddressCreate(params.AddressService, logg))
				r.Put("/{addressID}", controllers.AddressUpdate(params.AddressService, logg))
				r.Delete("/{addressID}", controllers.AddressDelete(params.AddressService, logg))
			})

			r.Get("/orders", controllers.OrderList(params.OrderService, logg))
			r.Get("/orders/{orderID}", controllers.OrderDetail(params.OrderService, logg))
			r.Post("/orders/{orderID}/cancel", controllers.OrderCancel(params.OrderService, logg))
		})

		// Back office.
		r.Route("/admin", func(r chi.Router) {
			r.Use(
				middleware.Auth(cfg.JWT, params.SessionChecker, logg),
				middleware.RequireAdmin(logg),
				middleware.Idempotency(params.Redis, logg),
			)

			r.Get("/ping", controllers.AdminPing())
			r.Get("/dashboard", controllers.AdminDashboard(params.OrderService, params.CatalogService, params.ProfileService, logg))
			r.Get("/customers", controllers.AdminCustomerList(params.ProfileService, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(params.CatalogService, logg))
				r.Post("/", controllers.AdminProductCreate(params.CatalogService, logg))
				r.Patch("/{productID}", controllers.AdminProductUpdate(params.CatalogService, logg))
				r.Delete("/{productID}", controllers.AdminProductDelete(params.CatalogService, logg))
				r.Post("/{productID}/images", controllers.AdminProductImageAdd(params.CatalogService, logg))
				r.Post("/{productID}/variants", controllers.AdminVariantCreate(params.CatalogService, logg))
			})
			r.Delete("/images/{imageID}", controllers.AdminProductImageDelete(params.CatalogService, logg))
			r.Patch("/variants/{variantID}", controllers.AdminVariantUpdate(params.CatalogService, logg))
			r.Delete("/variants/{variantID}", controllers.AdminVariantDelete(params.CatalogService, logg))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.AdminCategoryList(params.CatalogService, logg))
				r.Post("/", controllers.AdminCategoryCreate(params.CatalogService, logg))
				r.Patch("/{categoryID}", controllers.AdminCategoryUpdate(params.CatalogService, logg))
				r.Delete("/{categoryID}", controllers.AdminCategoryDelete(params.CatalogService, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/", controllers.AdminCouponList(params.CouponService, logg))
				r.Post("/", controllers.AdminCouponCreate(params.CouponService, logg))
				r.Patch("/{couponID}", controllers.AdminCouponUpdate(params.CouponService, logg))
				r.Delete("/{couponID}", controllers.AdminCouponDelete(params.CouponService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(params.OrderService, logg))
				r.Get("/{orderID}", controllers.AdminOrderDetail(params.OrderService, logg))
				r.Patch("/{orderID}/status", controllers.AdminOrderUpdateStatus(params.OrderService, logg))
				r.Patch("/{orderID}/tracking", controllers.AdminOrderUpdateTracking(params.OrderService, logg))
				r.Get("/{orderID}/email-logs", controllers.AdminOrderEmailLogs(params.EmailLogRepo, logg))
			})
		})
	})

	return r
}
