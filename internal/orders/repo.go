package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	"github.com/sxo6luxe/sxo6-backend/pkg/pagination"
)

// AdminFilters narrows the admin order listing.
type AdminFilters struct {
	Search string
	Status *enums.OrderStatus
}

// ListResult is one page of the admin order listing.
type ListResult struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Repository handles order persistence.
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

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumberAndEmail serves the guest order lookup.
func (r *Repository) FindByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ? AND LOWER(customer_email) = ?", strings.TrimSpace(orderNumber), strings.ToLower(strings.TrimSpace(email))).
		First(&order).
		Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// ListAdmin returns one cursor page of orders matching the filters.
func (r *Repository) ListAdmin(ctx context.Context, params pagination.Params, filters AdminFilters) (*ListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where(
			"(LOWER(order_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(customer_email) LIKE ?)",
			pattern, pattern, pattern,
		)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = qb.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}

	result := &ListResult{Orders: rows}
	if len(rows) > pageSize {
		result.Orders = rows[:pageSize]
		last := result.Orders[len(result.Orders)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// UserOrderStats aggregates one customer's order count and lifetime spend.
type UserOrderStats struct {
	OrderCount    int64           `json:"order_count"`
	TotalSpentUSD decimal.Decimal `json:"total_spent_usd"`
}

// StatsByUser aggregates order counts and totals for the given users in one
// grouped query. Users without orders are absent from the map.
func (r *Repository) StatsByUser(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]UserOrderStats, error) {
	stats := make(map[uuid.UUID]UserOrderStats, len(userIDs))
	if len(userIDs) == 0 {
		return stats, nil
	}

	var rows []struct {
		UserID        uuid.UUID
		OrderCount    int64
		TotalSpentUSD decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("user_id, COUNT(*) AS order_count, COALESCE(SUM(total_usd), 0) AS total_spent_usd").
		Where("user_id IN ?", userIDs).
		Group("user_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats[row.UserID] = UserOrderStats{OrderCount: row.OrderCount, TotalSpentUSD: row.TotalSpentUSD}
	}
	return stats, nil
}

// AdminStats summarizes the whole order book for the admin dashboard.
type AdminStats struct {
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	TotalRevenueUSD decimal.Decimal `json:"total_revenue_usd"`
}

// Stats counts orders, orders still awaiting fulfillment, and lifetime
// revenue across the order book.
func (r *Repository) Stats(ctx context.Context) (*AdminStats, error) {
	var row AdminStats
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COUNT(*) AS total_orders, " +
			"COALESCE(SUM(CASE WHEN status IN ('pending', 'processing') THEN 1 ELSE 0 END), 0) AS pending_orders, " +
			"COALESCE(SUM(total_usd), 0) AS total_revenue_usd").
		Scan(&row).
		Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Update persists the order row without touching its items.
func (r *Repository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Omit("Items").Save(order).Error
}

// UpdateFields applies a partial update to the order row.
func (r *Repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}
