package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the canonical catalog listing.
type Product struct {
	ID                   uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID           *uuid.UUID       `gorm:"column:category_id;type:uuid"`
	Slug                 string           `gorm:"column:slug;not null;uniqueIndex:products_slug_key"`
	SKU                  string           `gorm:"column:sku;not null;uniqueIndex:products_sku_key"`
	Name                 string           `gorm:"column:name;not null"`
	Description          *string          `gorm:"column:description"`
	PriceUSD             decimal.Decimal  `gorm:"column:price_usd;type:numeric(10,2);not null"`
	CompareAtPriceUSD    *decimal.Decimal `gorm:"column:compare_at_price_usd;type:numeric(10,2)"`
	InventoryQuantity    int              `gorm:"column:inventory_quantity;not null;default:0"`
	TrackInventory       bool             `gorm:"column:track_inventory;not null;default:true"`
	LowStockThreshold    int              `gorm:"column:low_stock_threshold;not null;default:5"`
	IsActive             bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured           bool             `gorm:"column:is_featured;not null;default:false"`
	Category             *Category        `gorm:"foreignKey:CategoryID"`
	Images               []ProductImage   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Variants             []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePrice returns the unit price for the product, adjusted for the
// variant when one is chosen.
func (p Product) EffectivePrice(variant *ProductVariant) decimal.Decimal {
	if variant == nil {
		return p.PriceUSD
	}
	return p.PriceUSD.Add(variant.PriceAdjustmentUSD)
}
