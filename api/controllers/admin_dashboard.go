package controllers

import (
	"net/http"
	"strings"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/catalog"
	"github.com/sxo6luxe/sxo6-backend/internal/orders"
	"github.com/sxo6luxe/sxo6-backend/internal/profiles"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/pagination"
)

const dashboardRecentOrders = 10

// AdminDashboard aggregates the order, catalog, and customer numbers the
// admin home screen shows, plus the most recent orders.
func AdminDashboard(orderService orders.Service, catalogService catalog.Service, profileService *profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderStats, err := orderService.AdminStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productStats, err := catalogService.ProductStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerCount, err := profileService.CountCustomers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recent, err := orderService.AdminList(r.Context(), pagination.Params{Limit: dashboardRecentOrders}, orders.AdminFilters{})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"stats": map[string]any{
				"total_orders":       orderStats.TotalOrders,
				"pending_orders":     orderStats.PendingOrders,
				"total_revenue_usd":  orderStats.TotalRevenueUSD,
				"total_products":     productStats.TotalProducts,
				"low_stock_products": productStats.LowStockProducts,
				"total_customers":    customerCount,
			},
			"recent_orders": recent.Orders,
		})
	}
}

// AdminCustomerList pages through customer accounts with their order
// activity.
func AdminCustomerList(service *profiles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}
		search := validators.SanitizeString(r.URL.Query().Get("search"), 120)

		result, err := service.AdminListCustomers(r.Context(), params, search)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
