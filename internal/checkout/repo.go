package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
)

// Repository persists checkout step records and runs the inventory
// decrements of the post-payment sequence.
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

// ListSteps returns the recorded steps for an order keyed by step name.
func (r *Repository) ListSteps(ctx context.Context, orderID uuid.UUID) (map[enums.CheckoutStep]models.CheckoutStepRecord, error) {
	var rows []models.CheckoutStepRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	steps := make(map[enums.CheckoutStep]models.CheckoutStepRecord, len(rows))
	for _, row := range rows {
		steps[row.Step] = row
	}
	return steps, nil
}

// UpsertStep records the outcome of one step. The (order_id, step) pair is
// unique, so a resumed run overwrites the previous attempt's status.
func (r *Repository) UpsertStep(ctx context.Context, orderID uuid.UUID, step enums.CheckoutStep, status enums.CheckoutStepStatus, detail *string) error {
	record := models.CheckoutStepRecord{
		OrderID: orderID,
		Step:    step,
		Status:  status,
		Detail:  detail,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "step"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "detail", "updated_at"}),
		}).
		Create(&record).
		Error
}

// DecrementLineInventory takes the purchased quantity out of stock with a
// single conditional UPDATE, covering both the product-level and the
// variant-level path. Products that do not track inventory pass through
// untouched. A false return means the stock row was missing or short.
func (r *Repository) DecrementLineInventory(ctx context.Context, item models.OrderItem) (bool, error) {
	if item.ProductID == nil {
		return false, nil
	}

	if item.VariantID != nil {
		res := r.db.WithContext(ctx).Exec(`
UPDATE product_variants AS v
SET inventory_quantity = CASE
      WHEN p.track_inventory THEN v.inventory_quantity - ?
      ELSE v.inventory_quantity
    END,
    updated_at = now()
FROM products AS p
WHERE v.id = ?
  AND p.id = v.product_id
  AND (NOT p.track_inventory OR v.inventory_quantity >= ?)`,
			item.Quantity, *item.VariantID, item.Quantity)
		if res.Error != nil {
			return false, res.Error
		}
		return res.RowsAffected > 0, nil
	}

	res := r.db.WithContext(ctx).Exec(`
UPDATE products
SET inventory_quantity = CASE
      WHEN track_inventory THEN inventory_quantity - ?
      ELSE inventory_quantity
    END,
    updated_at = now()
WHERE id = ?
  AND (NOT track_inventory OR inventory_quantity >= ?)`,
		item.Quantity, *item.ProductID, item.Quantity)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateTransaction inserts the payment audit row.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// FindTransactionByReference loads an audit row by gateway reference.
func (r *Repository) FindTransactionByReference(ctx context.Context, reference string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}
