package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is a gallery entry for a product. Exactly one image per product
// should carry IsPrimary.
type ProductImage struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ImageURL     string    `gorm:"column:image_url;not null"`
	AltText      *string   `gorm:"column:alt_text"`
	IsPrimary    bool      `gorm:"column:is_primary;not null;default:false"`
	DisplayOrder int       `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}
