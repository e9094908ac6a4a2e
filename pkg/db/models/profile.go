package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the customer account row backing authentication and checkout prefill.
type Profile struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:profiles_email_key"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	FullName     *string   `gorm:"column:full_name"`
	Phone        *string   `gorm:"column:phone"`
	Nationality  *string   `gorm:"column:nationality"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
