package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/catalog"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

const maxImageUploadBytes = 10 << 20 // 10 MiB

type createProductRequest struct {
	CategoryID        *string `json:"category_id" validate:"omitempty,uuid"`
	Slug              string  `json:"slug" validate:"omitempty,max=255"`
	SKU               string  `json:"sku" validate:"required,max=100"`
	Name              string  `json:"name" validate:"required,max=255"`
	Description       *string `json:"description" validate:"omitempty,max=5000"`
	PriceUSD          string  `json:"price_usd" validate:"required"`
	CompareAtPriceUSD *string `json:"compare_at_price_usd" validate:"omitempty"`
	InventoryQuantity int     `json:"inventory_quantity" validate:"min=0"`
	TrackInventory    bool    `json:"track_inventory"`
	LowStockThreshold int     `json:"low_stock_threshold" validate:"min=0"`
	IsActive          bool    `json:"is_active"`
	IsFeatured        bool    `json:"is_featured"`
}

type updateProductRequest struct {
	CategoryID        *string `json:"category_id" validate:"omitempty,uuid"`
	Slug              *string `json:"slug" validate:"omitempty,max=255"`
	SKU               *string `json:"sku" validate:"omitempty,max=100"`
	Name              *string `json:"name" validate:"omitempty,max=255"`
	Description       *string `json:"description" validate:"omitempty,max=5000"`
	PriceUSD          *string `json:"price_usd" validate:"omitempty"`
	CompareAtPriceUSD *string `json:"compare_at_price_usd" validate:"omitempty"`
	InventoryQuantity *int    `json:"inventory_quantity" validate:"omitempty,min=0"`
	TrackInventory    *bool   `json:"track_inventory"`
	LowStockThreshold *int    `json:"low_stock_threshold" validate:"omitempty,min=0"`
	IsActive          *bool   `json:"is_active"`
	IsFeatured        *bool   `json:"is_featured"`
}

type categoryRequest struct {
	Slug         string  `json:"slug" validate:"omitempty,max=255"`
	Name         string  `json:"name" validate:"required,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url,max=500"`
	DisplayOrder int     `json:"display_order" validate:"min=0"`
	IsActive     bool    `json:"is_active"`
}

type variantRequest struct {
	Size               *string `json:"size" validate:"omitempty,max=20"`
	Color              *string `json:"color" validate:"omitempty,max=50"`
	PriceAdjustmentUSD string  `json:"price_adjustment_usd" validate:"omitempty"`
	InventoryQuantity  int     `json:"inventory_quantity" validate:"min=0"`
	IsActive           bool    `json:"is_active"`
}

type updateVariantRequest struct {
	Size               *string `json:"size" validate:"omitempty,max=20"`
	Color              *string `json:"color" validate:"omitempty,max=50"`
	PriceAdjustmentUSD *string `json:"price_adjustment_usd" validate:"omitempty"`
	InventoryQuantity  *int    `json:"inventory_quantity" validate:"omitempty,min=0"`
	IsActive           *bool   `json:"is_active"`
}

func AdminProductCreate(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateProductInput{
			Slug:              body.Slug,
			SKU:               body.SKU,
			Name:              body.Name,
			Description:       body.Description,
			InventoryQuantity: body.InventoryQuantity,
			TrackInventory:    body.TrackInventory,
			LowStockThreshold: body.LowStockThreshold,
			IsActive:          body.IsActive,
			IsFeatured:        body.IsFeatured,
		}

		if body.CategoryID != nil {
			id, err := parsePathUUID(*body.CategoryID, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CategoryID = &id
		}

		price, err := parseBodyDecimal(body.PriceUSD, "price_usd")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.PriceUSD = price

		if body.CompareAtPriceUSD != nil {
			compareAt, err := parseBodyDecimal(*body.CompareAtPriceUSD, "compare_at_price_usd")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CompareAtPriceUSD = &compareAt
		}

		product, err := service.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func AdminProductUpdate(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateProductInput{
			Slug:              body.Slug,
			SKU:               body.SKU,
			Name:              body.Name,
			Description:       body.Description,
			InventoryQuantity: body.InventoryQuantity,
			TrackInventory:    body.TrackInventory,
			LowStockThreshold: body.LowStockThreshold,
			IsActive:          body.IsActive,
			IsFeatured:        body.IsFeatured,
		}

		if body.CategoryID != nil {
			id, err := parsePathUUID(*body.CategoryID, "category_id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CategoryID = &id
		}
		if body.PriceUSD != nil {
			price, err := parseBodyDecimal(*body.PriceUSD, "price_usd")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceUSD = &price
		}
		if body.CompareAtPriceUSD != nil {
			compareAt, err := parseBodyDecimal(*body.CompareAtPriceUSD, "compare_at_price_usd")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.CompareAtPriceUSD = &compareAt
		}

		product, err := service.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func AdminProductDelete(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminProductImageAdd accepts a multipart upload and stores the image in
// the bucket before recording it against the product.
func AdminProductImageAdd(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "image file is required"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read upload"))
			return
		}

		input := catalog.AddImageInput{
			ProductID:   productID,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
			IsPrimary:   r.FormValue("is_primary") == "true",
		}
		if alt := validators.SanitizeString(r.FormValue("alt_text"), 255); alt != "" {
			input.AltText = &alt
		}
		if raw := strings.TrimSpace(r.FormValue("display_order")); raw != "" {
			order, err := strconv.Atoi(raw)
			if err != nil || order < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "display_order must be a non-negative integer"))
				return
			}
			input.DisplayOrder = order
		}

		image, err := service.AddProductImage(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, image)
	}
}

func AdminProductImageDelete(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		imageID, err := parsePathUUID(chi.URLParam(r, "imageID"), "imageID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.DeleteProductImage(r.Context(), imageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func AdminCategoryCreate(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := service.CreateCategory(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func AdminCategoryUpdate(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := parsePathUUID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body categoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := service.UpdateCategory(r.Context(), categoryID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, category)
	}
}

func AdminCategoryDelete(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := parsePathUUID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.DeleteCategory(r.Context(), categoryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func AdminVariantCreate(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := parsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body variantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.VariantInput{
			ProductID:         productID,
			Size:              body.Size,
			Color:             body.Color,
			InventoryQuantity: body.InventoryQuantity,
			IsActive:          body.IsActive,
		}
		if body.PriceAdjustmentUSD != "" {
			adjustment, err := parseBodyDecimal(body.PriceAdjustmentUSD, "price_adjustment_usd")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceAdjustmentUSD = adjustment
		}

		variant, err := service.CreateVariant(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, variant)
	}
}

func AdminVariantUpdate(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := parsePathUUID(chi.URLParam(r, "variantID"), "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateVariantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.UpdateVariantInput{
			Size:              body.Size,
			Color:             body.Color,
			InventoryQuantity: body.InventoryQuantity,
			IsActive:          body.IsActive,
		}
		if body.PriceAdjustmentUSD != nil {
			adjustment, err := parseBodyDecimal(*body.PriceAdjustmentUSD, "price_adjustment_usd")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.PriceAdjustmentUSD = &adjustment
		}

		variant, err := service.UpdateVariant(r.Context(), variantID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, variant)
	}
}

func AdminVariantDelete(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := parsePathUUID(chi.URLParam(r, "variantID"), "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.DeleteVariant(r.Context(), variantID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminProductList mirrors the public listing but includes inactive rows.
func AdminProductList(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.IncludeInactive = true

		products, err := service.ListProducts(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}

// AdminCategoryList includes inactive categories for back-office editing.
func AdminCategoryList(service catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := service.ListCategories(r.Context(), true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

func (body categoryRequest) toInput() catalog.CategoryInput {
	return catalog.CategoryInput{
		Slug:         body.Slug,
		Name:         body.Name,
		Description:  body.Description,
		ImageURL:     body.ImageURL,
		DisplayOrder: body.DisplayOrder,
		IsActive:     body.IsActive,
	}
}
