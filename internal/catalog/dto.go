package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	CategoryID        *uuid.UUID
	Slug              string
	SKU               string
	Name              string
	Description       *string
	PriceUSD          decimal.Decimal
	CompareAtPriceUSD *decimal.Decimal
	InventoryQuantity int
	TrackInventory    bool
	LowStockThreshold int
	IsActive          bool
	IsFeatured        bool
}

func (in CreateProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if err := validatePrice(in.PriceUSD); err != nil {
		return err
	}
	if in.InventoryQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory_quantity must be non-negative")
	}
	if in.LowStockThreshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold must be non-negative")
	}
	return nil
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	CategoryID        *uuid.UUID
	Slug              *string
	SKU               *string
	Name              *string
	Description       *string
	PriceUSD          *decimal.Decimal
	CompareAtPriceUSD *decimal.Decimal
	InventoryQuantity *int
	TrackInventory    *bool
	LowStockThreshold *int
	IsActive          *bool
	IsFeatured        *bool
}

func (in UpdateProductInput) validate() error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
	}
	if in.SKU != nil && strings.TrimSpace(*in.SKU) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sku cannot be empty")
	}
	if in.PriceUSD != nil {
		if err := validatePrice(*in.PriceUSD); err != nil {
			return err
		}
	}
	if in.InventoryQuantity != nil && *in.InventoryQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory_quantity must be non-negative")
	}
	if in.LowStockThreshold != nil && *in.LowStockThreshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "low_stock_threshold must be non-negative")
	}
	return nil
}

// CategoryInput is the admin payload for creating or updating a category.
type CategoryInput struct {
	Slug         string
	Name         string
	Description  *string
	ImageURL     *string
	DisplayOrder int
	IsActive     bool
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return nil
}

// AddImageInput carries raw image bytes destined for the bucket.
type AddImageInput struct {
	ProductID    uuid.UUID
	FileName     string
	ContentType  string
	Data         []byte
	AltText      *string
	IsPrimary    bool
	DisplayOrder int
}

// VariantInput is the admin payload for creating a variant.
type VariantInput struct {
	ProductID          uuid.UUID
	Size               *string
	Color              *string
	PriceAdjustmentUSD decimal.Decimal
	InventoryQuantity  int
	IsActive           bool
}

func (in VariantInput) validate() error {
	if in.Size == nil && in.Color == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "a size or color is required")
	}
	if in.InventoryQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "inventory_quantity must be non-negative")
	}
	return nil
}

// UpdateVariantInput holds optional mutation values for a variant.
type UpdateVariantInput struct {
	Size               *string
	Color              *string
	PriceAdjustmentUSD *decimal.Decimal
	InventoryQuantity  *int
	IsActive           *bool
}
