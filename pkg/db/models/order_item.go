package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem denormalizes the purchased product so the order survives catalog
// edits and deletions.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID   *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	VariantID   *uuid.UUID      `gorm:"column:variant_id;type:uuid"`
	ProductName string          `gorm:"column:product_name;not null"`
	ProductSKU  *string         `gorm:"column:product_sku"`
	VariantSize *string         `gorm:"column:variant_size"`
	VariantColor *string        `gorm:"column:variant_color"`
	PriceUSD    decimal.Decimal `gorm:"column:price_usd;type:numeric(10,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	SubtotalUSD decimal.Decimal `gorm:"column:subtotal_usd;type:numeric(10,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
