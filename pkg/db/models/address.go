package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
)

// Address is a saved address book entry. At most one entry per user and type
// carries IsDefault.
type Address struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	AddressType  enums.AddressType `gorm:"column:address_type;not null;default:shipping"`
	FullName     string            `gorm:"column:full_name;not null"`
	Phone        *string           `gorm:"column:phone"`
	AddressLine1 string            `gorm:"column:address_line1;not null"`
	AddressLine2 *string           `gorm:"column:address_line2"`
	City         string            `gorm:"column:city;not null"`
	State        *string           `gorm:"column:state"`
	PostalCode   *string           `gorm:"column:postal_code"`
	Country      string            `gorm:"column:country;not null"`
	IsDefault    bool              `gorm:"column:is_default;not null;default:false"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
