package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
)

// EmailLog records every transactional email attempt, successful or not.
type EmailLog struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   *uuid.UUID      `gorm:"column:order_id;type:uuid"`
	EmailType enums.EmailType `gorm:"column:email_type;not null"`
	Recipient string          `gorm:"column:recipient;not null"`
	Success   bool            `gorm:"column:success;not null"`
	Error     *string         `gorm:"column:error"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
