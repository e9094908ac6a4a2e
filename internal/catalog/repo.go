package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
)

// ProductFilters narrows the public product listing.
type ProductFilters struct {
	CategoryID      *uuid.UUID
	CategorySlug    *string
	Featured        *bool
	MinPriceUSD     *decimal.Decimal
	MaxPriceUSD     *decimal.Decimal
	Search          string
	Limit           int
	IncludeInactive bool
}

const defaultListLimit = 24

// Repository handles catalog persistence for products, categories,
// images, and variants.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func withAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, display_order ASC")
		}).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

// ListProducts returns products matching the filters, newest first.
func (r *Repository) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}

	qb := withAssociations(r.db.WithContext(ctx).Model(&models.Product{}))
	if !filters.IncludeInactive {
		qb = qb.Where("products.is_active = ?", true)
	}
	if filters.CategoryID != nil {
		qb = qb.Where("products.category_id = ?", *filters.CategoryID)
	} else if filters.CategorySlug != nil && *filters.CategorySlug != "" {
		qb = qb.Where("products.category_id IN (SELECT id FROM categories WHERE slug = ?)", *filters.CategorySlug)
	}
	if filters.Featured != nil {
		qb = qb.Where("products.is_featured = ?", *filters.Featured)
	}
	if filters.MinPriceUSD != nil {
		qb = qb.Where("products.price_usd >= ?", *filters.MinPriceUSD)
	}
	if filters.MaxPriceUSD != nil {
		qb = qb.Where("products.price_usd <= ?", *filters.MaxPriceUSD)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?)", pattern, pattern)
	}

	var rows []models.Product
	err := qb.
		Order("products.created_at DESC").
		Order("products.id DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// FindProductByID loads the product with associations.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := withAssociations(r.db.WithContext(ctx)).
		First(&product, "products.id = ?", id).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// FindProductBySlug loads an active product by its slug.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := withAssociations(r.db.WithContext(ctx)).
		Where("products.slug = ?", slug).
		First(&product).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListRelatedProducts returns other active products in the same category.
func (r *Repository) ListRelatedProducts(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	if product.CategoryID == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 4
	}
	var rows []models.Product
	err := withAssociations(r.db.WithContext(ctx).Model(&models.Product{})).
		Where("products.category_id = ? AND products.id <> ? AND products.is_active = ?", *product.CategoryID, product.ID, true).
		Order("products.created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// UpdateProduct persists the full product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category", "Images", "Variants").Save(product).Error
}

// DeleteProduct removes a product; images and variants cascade.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// ListCategories returns categories ordered for storefront navigation.
func (r *Repository) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	qb := r.db.WithContext(ctx).Model(&models.Category{})
	if !includeInactive {
		qb = qb.Where("is_active = ?", true)
	}
	var rows []models.Category
	err := qb.Order("display_order ASC, name ASC").Find(&rows).Error
	return rows, err
}

// FindCategoryBySlug loads a category by slug.
func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// FindCategoryByID loads a category by primary key.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// UpdateCategory persists the category row.
func (r *Repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteCategory removes a category; products keep a dangling nil category_id.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}

// CreateImage inserts a product image row.
func (r *Repository) CreateImage(ctx context.Context, image *models.ProductImage) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// FindImageByID loads one image row.
func (r *Repository) FindImageByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error) {
	var image models.ProductImage
	err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes a product image row.
func (r *Repository) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductImage{}).Error
}

// ClearPrimaryImage unsets is_primary on all images of a product.
func (r *Repository) ClearPrimaryImage(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ProductImage{}).
		Where("product_id = ?", productID).
		Update("is_primary", false).Error
}

// CreateVariant inserts a variant row.
func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Create(variant).Error
}

// FindVariantByID loads one variant row.
func (r *Repository) FindVariantByID(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &variant, nil
}

// UpdateVariant persists the variant row.
func (r *Repository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Save(variant).Error
}

// DeleteVariant removes a variant row.
func (r *Repository) DeleteVariant(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.ProductVariant{}).Error
}

// ProductStats summarizes the catalog for the admin dashboard.
type ProductStats struct {
	TotalProducts    int64 `json:"total_products"`
	LowStockProducts int64 `json:"low_stock_products"`
}

// Stats counts products and how many tracked products sit at or below
// their low stock threshold.
func (r *Repository) Stats(ctx context.Context) (*ProductStats, error) {
	var row ProductStats
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COUNT(*) AS total_products, " +
			"COALESCE(SUM(CASE WHEN track_inventory AND inventory_quantity <= low_stock_threshold THEN 1 ELSE 0 END), 0) AS low_stock_products").
		Scan(&row).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
