package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTransaction is the audit record written after a verified Paystack
// charge. GatewayResponse keeps the raw verification payload for support.
type PaymentTransaction struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID        `gorm:"column:order_id;type:uuid;not null"`
	Reference       string           `gorm:"column:reference;not null;uniqueIndex:payment_transactions_reference_key"`
	AmountNGN       *decimal.Decimal `gorm:"column:amount_ngn;type:numeric(14,2)"`
	AmountUSD       decimal.Decimal  `gorm:"column:amount_usd;type:numeric(10,2);not null"`
	ExchangeRate    *decimal.Decimal `gorm:"column:exchange_rate;type:numeric(12,4)"`
	Status          string           `gorm:"column:status;not null"`
	PaymentChannel  *string          `gorm:"column:payment_channel"`
	CustomerEmail   string           `gorm:"column:customer_email;not null"`
	PaidAt          *time.Time       `gorm:"column:paid_at"`
	GatewayResponse []byte           `gorm:"column:gateway_response;type:jsonb"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
}
