package catalog

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

// Service exposes storefront reads and admin catalog management.
type Service interface {
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*models.Product, error)
	ListRelatedProducts(ctx context.Context, slug string, limit int) ([]models.Product, error)
	CheckAvailability(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*Availability, error)

	ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error

	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error

	AddProductImage(ctx context.Context, input AddImageInput) (*models.ProductImage, error)
	DeleteProductImage(ctx context.Context, imageID uuid.UUID) error

	CreateVariant(ctx context.Context, input VariantInput) (*models.ProductVariant, error)
	UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*models.ProductVariant, error)
	DeleteVariant(ctx context.Context, variantID uuid.UUID) error

	ProductStats(ctx context.Context) (*ProductStats, error)
}

// Availability reports whether a quantity can be fulfilled for a
// product or one of its variants.
type Availability struct {
	Available bool `json:"available"`
	InStock   int  `json:"in_stock"`
}

type imageUploader interface {
	Upload(ctx context.Context, object, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, object string) error
	PublicURL(object string) string
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	dbClient txRunner
	uploader imageUploader
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient txRunner, uploader imageUploader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if uploader == nil {
		return nil, fmt.Errorf("image uploader required")
	}
	return &service{repo: repo, dbClient: dbClient, uploader: uploader}, nil
}

func (s *service) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	rows, err := s.repo.ListProducts(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.repo.FindProductBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ListRelatedProducts(ctx context.Context, slug string, limit int) ([]models.Product, error) {
	product, err := s.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListRelatedProducts(ctx, product, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list related products")
	}
	return rows, nil
}

// CheckAvailability reports stock for the product, or for the variant when
// one is requested. Products that do not track inventory are always in
// stock.
func (s *service) CheckAvailability(ctx context.Context, productID uuid.UUID, variantID *uuid.UUID, quantity int) (*Availability, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	if !product.TrackInventory {
		return &Availability{Available: true, InStock: quantity}, nil
	}

	stock := product.InventoryQuantity
	if variantID != nil {
		variant := findVariant(product.Variants, *variantID)
		if variant == nil || !variant.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		stock = variant.InventoryQuantity
	}
	return &Availability{Available: stock >= quantity, InStock: stock}, nil
}

func (s *service) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	rows, err := s.repo.ListCategories(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return rows, nil
}

func (s *service) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.repo.FindCategoryBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	return category, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		CategoryID:        input.CategoryID,
		Slug:              normalizeSlug(input.Slug),
		SKU:               strings.TrimSpace(input.SKU),
		Name:              strings.TrimSpace(input.Name),
		Description:       input.Description,
		PriceUSD:          input.PriceUSD,
		CompareAtPriceUSD: input.CompareAtPriceUSD,
		InventoryQuantity: input.InventoryQuantity,
		TrackInventory:    input.TrackInventory,
		LowStockThreshold: input.LowStockThreshold,
		IsActive:          input.IsActive,
		IsFeatured:        input.IsFeatured,
	}
	if product.Slug == "" {
		product.Slug = normalizeSlug(product.Name)
	}

	if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProduct(ctx, product); err != nil {
		if msg, ok := productConflictMessage(err); ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, msg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	return s.reloadProduct(ctx, product.ID)
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.requireProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.ensureCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	applyProductUpdate(product, input)
	if err := input.validate(); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		if msg, ok := productConflictMessage(err); ok {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, msg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return s.reloadProduct(ctx, product.ID)
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.requireProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	category := &models.Category{
		Slug:         normalizeSlug(input.Slug),
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		ImageURL:     input.ImageURL,
		DisplayOrder: input.DisplayOrder,
		IsActive:     input.IsActive,
	}
	if category.Slug == "" {
		category.Slug = normalizeSlug(category.Name)
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "categories_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert category")
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if category == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(input.Name)
	if slug := normalizeSlug(input.Slug); slug != "" {
		category.Slug = slug
	}
	category.Description = input.Description
	category.ImageURL = input.ImageURL
	category.DisplayOrder = input.DisplayOrder
	category.IsActive = input.IsActive

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		if db.IsUniqueViolation(err, "categories_slug_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a category with this slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update category")
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if category == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
	}
	if err := s.repo.DeleteCategory(ctx, categoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category")
	}
	return nil
}

// AddProductImage stores the bytes in the bucket and records the public
// URL. Marking the new image primary unsets any existing primary inside
// the same transaction.
func (s *service) AddProductImage(ctx context.Context, input AddImageInput) (*models.ProductImage, error) {
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if input.ContentType == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type is required")
	}
	if _, err := s.requireProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}

	object := imageObjectKey(input.ProductID, input.FileName)
	url, err := s.uploader.Upload(ctx, object, input.ContentType, input.Data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}

	image := &models.ProductImage{
		ProductID:    input.ProductID,
		ImageURL:     url,
		AltText:      input.AltText,
		IsPrimary:    input.IsPrimary,
		DisplayOrder: input.DisplayOrder,
	}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if input.IsPrimary {
			if err := txRepo.ClearPrimaryImage(ctx, input.ProductID); err != nil {
				return err
			}
		}
		return txRepo.CreateImage(ctx, image)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record image")
	}
	return image, nil
}

func (s *service) DeleteProductImage(ctx context.Context, imageID uuid.UUID) error {
	image, err := s.repo.FindImageByID(ctx, imageID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load image")
	}
	if image == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
	}
	if err := s.repo.DeleteImage(ctx, imageID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image")
	}
	// Bucket cleanup is best effort; the row is already gone.
	if object := s.objectFromURL(image.ImageURL); object != "" {
		_ = s.uploader.Delete(ctx, object)
	}
	return nil
}

func (s *service) CreateVariant(ctx context.Context, input VariantInput) (*models.ProductVariant, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if _, err := s.requireProduct(ctx, input.ProductID); err != nil {
		return nil, err
	}
	variant := &models.ProductVariant{
		ProductID:          input.ProductID,
		Size:               input.Size,
		Color:              input.Color,
		PriceAdjustmentUSD: input.PriceAdjustmentUSD,
		InventoryQuantity:  input.InventoryQuantity,
		IsActive:           input.IsActive,
	}
	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert variant")
	}
	return variant, nil
}

func (s *service) UpdateVariant(ctx context.Context, variantID uuid.UUID, input UpdateVariantInput) (*models.ProductVariant, error) {
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}

	if input.Size != nil {
		variant.Size = input.Size
	}
	if input.Color != nil {
		variant.Color = input.Color
	}
	if input.PriceAdjustmentUSD != nil {
		variant.PriceAdjustmentUSD = *input.PriceAdjustmentUSD
	}
	if input.InventoryQuantity != nil {
		if *input.InventoryQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory_quantity must be non-negative")
		}
		variant.InventoryQuantity = *input.InventoryQuantity
	}
	if input.IsActive != nil {
		variant.IsActive = *input.IsActive
	}

	if err := s.repo.UpdateVariant(ctx, variant); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}
	return variant, nil
}

func (s *service) DeleteVariant(ctx context.Context, variantID uuid.UUID) error {
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	if variant == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	if err := s.repo.DeleteVariant(ctx, variantID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete variant")
	}
	return nil
}

func (s *service) ProductStats(ctx context.Context) (*ProductStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product stats")
	}
	return stats, nil
}

func (s *service) requireProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) reloadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product detail")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ensureCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	category, err := s.repo.FindCategoryByID(ctx, *id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category")
	}
	if category == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
	}
	return nil
}

func (s *service) objectFromURL(url string) string {
	prefix := s.uploader.PublicURL("")
	if prefix == "" || !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func applyProductUpdate(product *models.Product, input UpdateProductInput) {
	if input.CategoryID != nil {
		product.CategoryID = input.CategoryID
	}
	if input.Slug != nil {
		product.Slug = normalizeSlug(*input.Slug)
	}
	if input.SKU != nil {
		product.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.PriceUSD != nil {
		product.PriceUSD = *input.PriceUSD
	}
	if input.CompareAtPriceUSD != nil {
		product.CompareAtPriceUSD = input.CompareAtPriceUSD
	}
	if input.InventoryQuantity != nil {
		product.InventoryQuantity = *input.InventoryQuantity
	}
	if input.TrackInventory != nil {
		product.TrackInventory = *input.TrackInventory
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if input.IsFeatured != nil {
		product.IsFeatured = *input.IsFeatured
	}
}

func findVariant(variants []models.ProductVariant, id uuid.UUID) *models.ProductVariant {
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i]
		}
	}
	return nil
}

func productConflictMessage(err error) (string, bool) {
	switch {
	case db.IsUniqueViolation(err, "products_slug_key"):
		return "a product with this slug already exists", true
	case db.IsUniqueViolation(err, "products_sku_key"):
		return "a product with this SKU already exists", true
	default:
		return "", false
	}
}

func normalizeSlug(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	var b strings.Builder
	lastDash := true
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func imageObjectKey(productID uuid.UUID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("products/%s/%s%s", productID, uuid.NewString(), ext)
}

func validatePrice(value decimal.Decimal) error {
	if value.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_usd must be non-negative")
	}
	return nil
}
