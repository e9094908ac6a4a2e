package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
)

// CheckoutStepRecord persists the status of one post-payment step so a
// re-invoked confirmation can resume where the previous attempt stopped.
type CheckoutStepRecord struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID                `gorm:"column:order_id;type:uuid;not null;uniqueIndex:checkout_steps_order_step_key,priority:1"`
	Step      enums.CheckoutStep       `gorm:"column:step;not null;uniqueIndex:checkout_steps_order_step_key,priority:2"`
	Status    enums.CheckoutStepStatus `gorm:"column:status;not null;default:pending"`
	Detail    *string                  `gorm:"column:detail"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the historical table name.
func (CheckoutStepRecord) TableName() string {
	return "checkout_steps"
}
