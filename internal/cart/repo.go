package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
)

// Repository handles cart line persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func scopeOwner(q *gorm.DB, id Identity) *gorm.DB {
	if id.UserID != nil {
		return q.Where("cart_items.user_id = ?", *id.UserID)
	}
	return q.Where("cart_items.session_id = ?", *id.SessionID)
}

// ListItems returns the cart's lines joined with product data. Lines whose
// product went inactive are filtered out; primary images sort first.
func (r *Repository) ListItems(ctx context.Context, id Identity) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := scopeOwner(r.db.WithContext(ctx).Model(&models.CartItem{}), id).
		Joins("JOIN products ON products.id = cart_items.product_id AND products.is_active = true").
		Preload("Product").
		Preload("Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, display_order ASC")
		}).
		Preload("Variant").
		Order("cart_items.created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// FindItem loads one line scoped to the owner.
func (r *Repository) FindItem(ctx context.Context, id Identity, itemID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := scopeOwner(r.db.WithContext(ctx), id).
		Where("cart_items.id = ?", itemID).
		First(&item).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// FindLine returns the owner's existing line for a (product, variant)
// pair, if any.
func (r *Repository) FindLine(ctx context.Context, id Identity, productID uuid.UUID, variantID *uuid.UUID) (*models.CartItem, error) {
	q := scopeOwner(r.db.WithContext(ctx), id).
		Where("cart_items.product_id = ?", productID)
	if variantID != nil {
		q = q.Where("cart_items.variant_id = ?", *variantID)
	} else {
		q = q.Where("cart_items.variant_id IS NULL")
	}
	var item models.CartItem
	if err := q.First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a cart line.
func (r *Repository) CreateItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateQuantity sets the quantity on one line.
func (r *Repository) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// DeleteItem removes one line.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

// Clear removes every line owned by the identity.
func (r *Repository) Clear(ctx context.Context, id Identity) error {
	return scopeOwner(r.db.WithContext(ctx), id).Delete(&models.CartItem{}).Error
}

// ListGuestItems returns the raw guest lines without joins, oldest first.
func (r *Repository) ListGuestItems(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}

// ReassignToUser moves one guest line to the user's cart.
func (r *Repository) ReassignToUser(ctx context.Context, itemID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"user_id":    userID,
			"session_id": nil,
		}).Error
}

// AddQuantity increments an existing line's quantity.
func (r *Repository) AddQuantity(ctx context.Context, itemID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}
