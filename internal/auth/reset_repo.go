package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
)

// ResetTokenRepository handles password reset token persistence.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *models.PasswordResetToken) error
	FindValidByHash(ctx context.Context, hash string, now time.Time) (*models.PasswordResetToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository returns a reset token repository bound to the provided database.
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *resetTokenRepository) FindValidByHash(ctx context.Context, hash string, now time.Time) (*models.PasswordResetToken, error) {
	if hash == "" {
		return nil, nil
	}
	var token models.PasswordResetToken
	if err := r.db.WithContext(ctx).
		Where("token_hash = ? AND used_at IS NULL AND expires_at > ?", hash, now).
		First(&token).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *resetTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PasswordResetToken{}).
		Where("id = ?", id).
		Update("used_at", at).Error
}
