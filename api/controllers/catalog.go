package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/catalog"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

const maxListLimit = 100

// ProductList serves the storefront grid with optional filters.
func ProductList(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := service.ListProducts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

func ProductDetail(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		product, err := service.GetProductBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func ProductRelated(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		limit, err := validators.ParseQueryInt(r, "limit", 4, 1, 24)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := service.ListRelatedProducts(r.Context(), slug, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

// ProductAvailability answers whether a quantity can be fulfilled before the
// shopper commits it to the cart.
func ProductAvailability(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathUUID(r.URL.Query().Get("product_id"), "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var variantID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("variant_id")); raw != "" {
			id, err := parsePathUUID(raw, "variant_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			variantID = &id
		}

		quantity, err := validators.ParseQueryInt(r, "quantity", 1, 1, 999)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		availability, err := service.CheckAvailability(r.Context(), productID, variantID, quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, availability)
	}
}

func CategoryList(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := service.ListCategories(r.Context(), false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

func CategoryDetail(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		category, err := service.GetCategoryBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

func parseProductFilters(r *http.Request) (catalog.ProductFilters, error) {
	filters := catalog.ProductFilters{
		Search: validators.SanitizeString(r.URL.Query().Get("search"), 120),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			filters.CategoryID = &id
		} else {
			slug := raw
			filters.CategorySlug = &slug
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("featured")); raw != "" {
		featured, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "featured must be true or false")
		}
		filters.Featured = &featured
	}

	minPrice, err := parseQueryDecimal(r, "min_price")
	if err != nil {
		return filters, err
	}
	filters.MinPriceUSD = minPrice

	maxPrice, err := parseQueryDecimal(r, "max_price")
	if err != nil {
		return filters, err
	}
	filters.MaxPriceUSD = maxPrice

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxListLimit)
	if err != nil {
		return filters, err
	}
	filters.Limit = limit

	return filters, nil
}

func parseQueryDecimal(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a decimal").WithDetails(map[string]any{"field": key})
	}
	if value.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be non-negative").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}
