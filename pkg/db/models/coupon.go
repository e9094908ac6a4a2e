package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
)

// Coupon is a storefront discount code. Codes are stored uppercase and unique.
type Coupon struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code               string             `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Description        *string            `gorm:"column:description"`
	DiscountType       enums.DiscountType `gorm:"column:discount_type;not null"`
	DiscountValue      decimal.Decimal    `gorm:"column:discount_value;type:numeric(10,2);not null"`
	MinimumPurchaseUSD decimal.Decimal    `gorm:"column:minimum_purchase_usd;type:numeric(10,2);not null;default:0"`
	MaximumDiscountUSD *decimal.Decimal   `gorm:"column:maximum_discount_usd;type:numeric(10,2)"`
	UsageLimit         *int               `gorm:"column:usage_limit"`
	UsageCount         int                `gorm:"column:usage_count;not null;default:0"`
	ValidFrom          *time.Time         `gorm:"column:valid_from"`
	ValidUntil         *time.Time         `gorm:"column:valid_until"`
	IsActive           bool               `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
