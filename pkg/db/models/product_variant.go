package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductVariant is a size/color option with its own stock counter. The
// effective price is the parent price plus PriceAdjustmentUSD.
type ProductVariant struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID          uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Size               *string         `gorm:"column:size"`
	Color              *string         `gorm:"column:color"`
	PriceAdjustmentUSD decimal.Decimal `gorm:"column:price_adjustment_usd;type:numeric(10,2);not null;default:0"`
	InventoryQuantity  int             `gorm:"column:inventory_quantity;not null;default:0"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
