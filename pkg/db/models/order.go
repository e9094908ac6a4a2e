package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	"github.com/sxo6luxe/sxo6-backend/pkg/types"
)

// Order snapshots a checkout. Monetary fields are frozen at creation and never
// recomputed from line items afterwards.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string              `gorm:"column:order_number;not null;uniqueIndex:orders_order_number_key"`
	UserID              *uuid.UUID          `gorm:"column:user_id;type:uuid"`
	CustomerEmail       string              `gorm:"column:customer_email;not null"`
	CustomerName        string              `gorm:"column:customer_name;not null"`
	CustomerPhone       *string             `gorm:"column:customer_phone"`
	CustomerNationality *string             `gorm:"column:customer_nationality"`
	ShippingAddress     types.Address       `gorm:"column:shipping_address;type:jsonb;not null"`
	BillingAddress      *types.Address      `gorm:"column:billing_address;type:jsonb"`
	CouponID            *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	CouponCode          *string             `gorm:"column:coupon_code"`
	SubtotalUSD         decimal.Decimal     `gorm:"column:subtotal_usd;type:numeric(10,2);not null"`
	DiscountUSD         decimal.Decimal     `gorm:"column:discount_usd;type:numeric(10,2);not null;default:0"`
	ShippingUSD         decimal.Decimal     `gorm:"column:shipping_usd;type:numeric(10,2);not null;default:0"`
	TaxUSD              decimal.Decimal     `gorm:"column:tax_usd;type:numeric(10,2);not null;default:0"`
	TotalUSD            decimal.Decimal     `gorm:"column:total_usd;type:numeric(10,2);not null"`
	ExchangeRate        *decimal.Decimal    `gorm:"column:exchange_rate;type:numeric(12,4)"`
	TotalNGN            *decimal.Decimal    `gorm:"column:total_ngn;type:numeric(14,2)"`
	CurrencyPaid        enums.Currency      `gorm:"column:currency_paid;not null;default:USD"`
	Status              enums.OrderStatus   `gorm:"column:status;not null;default:pending"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;not null;default:pending"`
	PaymentReference    *string             `gorm:"column:payment_reference"`
	TrackingNumber      *string             `gorm:"column:tracking_number"`
	PaidAt              *time.Time          `gorm:"column:paid_at"`
	ShippedAt           *time.Time          `gorm:"column:shipped_at"`
	DeliveredAt         *time.Time          `gorm:"column:delivered_at"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
