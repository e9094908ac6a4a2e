package models

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetToken stores the SHA-256 hash of an opaque reset token. The raw
// token only ever travels in the email link.
type PasswordResetToken struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null"`
	TokenHash string     `gorm:"column:token_hash;not null;uniqueIndex:password_reset_tokens_hash_key"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null"`
	UsedAt    *time.Time `gorm:"column:used_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
