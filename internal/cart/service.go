package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/internal/coupons"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

var (
	freeShippingThresholdUSD = decimal.NewFromInt(200)
	flatShippingUSD          = decimal.RequireFromString("15.00")
)

// Service exposes cart reads, mutations, and totals.
type Service interface {
	GetCart(ctx context.Context, id Identity) ([]models.CartItem, error)
	AddItem(ctx context.Context, id Identity, input AddItemInput) (*models.CartItem, error)
	UpdateItem(ctx context.Context, id Identity, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, id Identity, itemID uuid.UUID) error
	Clear(ctx context.Context, id Identity) error
	Merge(ctx context.Context, sessionID string, userID uuid.UUID) (*MergeResult, error)
	Totals(ctx context.Context, id Identity, couponCode string) (*Totals, error)
}

// AddItemInput is the payload for adding a line.
type AddItemInput struct {
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// MergeResult summarizes a guest-to-user cart migration. The session id
// is echoed back so the client can drop its local token.
type MergeResult struct {
	Migrated         int    `json:"migrated"`
	Failed           int    `json:"failed"`
	ClearedSessionID string `json:"cleared_session_id"`
}

// Totals is the priced summary of a cart.
type Totals struct {
	SubtotalUSD decimal.Decimal `json:"subtotal_usd"`
	DiscountUSD decimal.Decimal `json:"discount_usd"`
	ShippingUSD decimal.Decimal `json:"shipping_usd"`
	TaxUSD      decimal.Decimal `json:"tax_usd"`
	TotalUSD    decimal.Decimal `json:"total_usd"`
	Coupon      *models.Coupon  `json:"coupon,omitempty"`
}

type productReader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string, subtotalUSD decimal.Decimal) (*coupons.Validation, error)
}

type service struct {
	repo     *Repository
	products productReader
	coupons  couponValidator
	logg     *logger.Logger
}

// NewService constructs a cart service instance.
func NewService(repo *Repository, products productReader, couponSvc couponValidator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if couponSvc == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: products, coupons: couponSvc, logg: logg}, nil
}

func (s *service) GetCart(ctx context.Context, id Identity) ([]models.CartItem, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}
	return rows, nil
}

// AddItem folds the quantity into an existing (product, variant) line
// instead of creating a duplicate.
func (s *service) AddItem(ctx context.Context, id Identity, input AddItemInput) (*models.CartItem, error) {
	if err := id.validate(); err != nil {
		return nil, err
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.FindProductByID(ctx, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil || !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if input.VariantID != nil {
		if v := variantOf(product, *input.VariantID); v == nil || !v.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant does not belong to this product")
		}
	}

	existing, err := s.repo.FindLine(ctx, id, input.ProductID, input.VariantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if existing != nil {
		if err := s.repo.AddQuantity(ctx, existing.ID, input.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment cart line")
		}
		existing.Quantity += input.Quantity
		return existing, nil
	}

	item := &models.CartItem{
		UserID:    id.UserID,
		SessionID: id.SessionID,
		ProductID: input.ProductID,
		VariantID: input.VariantID,
		Quantity:  input.Quantity,
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart line")
	}
	return item, nil
}

// UpdateItem sets a line's quantity; anything below one removes the line.
func (s *service) UpdateItem(ctx context.Context, id Identity, itemID uuid.UUID, quantity int) error {
	if err := id.validate(); err != nil {
		return err
	}
	item, err := s.repo.FindItem(ctx, id, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if quantity < 1 {
		if err := s.repo.DeleteItem(ctx, itemID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
		}
		return nil
	}
	if err := s.repo.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, id Identity, itemID uuid.UUID) error {
	if err := id.validate(); err != nil {
		return err
	}
	item, err := s.repo.FindItem(ctx, id, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart line")
	}
	return nil
}

func (s *service) Clear(ctx context.Context, id Identity) error {
	if err := id.validate(); err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

// Merge moves guest lines into the user's cart one row at a time. A row
// that fails stays on the guest session and the migration continues; the
// client is told the token is cleared either way.
func (s *service) Merge(ctx context.Context, sessionID string, userID uuid.UUID) (*MergeResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "guest session is required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "a signed-in user is required")
	}

	guestRows, err := s.repo.ListGuestItems(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list guest cart")
	}

	result := &MergeResult{ClearedSessionID: sessionID}
	userIdentity := UserIdentity(userID)
	for _, row := range guestRows {
		existing, err := s.repo.FindLine(ctx, userIdentity, row.ProductID, row.VariantID)
		if err != nil {
			result.Failed++
			s.logg.Warn(ctx, fmt.Sprintf("cart merge: load user line for item %s: %v", row.ID, err))
			continue
		}
		if existing != nil {
			if err := s.repo.AddQuantity(ctx, existing.ID, row.Quantity); err != nil {
				result.Failed++
				s.logg.Warn(ctx, fmt.Sprintf("cart merge: fold item %s: %v", row.ID, err))
				continue
			}
			if err := s.repo.DeleteItem(ctx, row.ID); err != nil {
				result.Failed++
				s.logg.Warn(ctx, fmt.Sprintf("cart merge: drop guest item %s: %v", row.ID, err))
				continue
			}
		} else if err := s.repo.ReassignToUser(ctx, row.ID, userID); err != nil {
			result.Failed++
			s.logg.Warn(ctx, fmt.Sprintf("cart merge: reassign item %s: %v", row.ID, err))
			continue
		}
		result.Migrated++
	}
	return result, nil
}

// Totals prices the cart. Tax is not charged; shipping is flat and waived
// once the subtotal reaches the free-shipping threshold.
func (s *service) Totals(ctx context.Context, id Identity, couponCode string) (*Totals, error) {
	items, err := s.GetCart(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.totalsForItems(ctx, items, couponCode)
}

func (s *service) totalsForItems(ctx context.Context, items []models.CartItem, couponCode string) (*Totals, error) {
	subtotal := Subtotal(items)

	totals := &Totals{
		SubtotalUSD: subtotal,
		DiscountUSD: decimal.Zero,
		TaxUSD:      decimal.Zero,
	}

	if code := strings.TrimSpace(couponCode); code != "" {
		validation, err := s.coupons.Validate(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}
		totals.DiscountUSD = validation.DiscountUSD
		totals.Coupon = validation.Coupon
	}

	totals.ShippingUSD = ShippingFor(subtotal)
	totals.TotalUSD = subtotal.Sub(totals.DiscountUSD).Add(totals.ShippingUSD).Add(totals.TaxUSD)
	return totals, nil
}

// Subtotal sums effective line prices across the cart.
func Subtotal(items []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		price := item.Product.EffectivePrice(item.Variant)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return subtotal
}

// ShippingFor returns the flat rate, or zero at and above the
// free-shipping threshold.
func ShippingFor(subtotalUSD decimal.Decimal) decimal.Decimal {
	if subtotalUSD.GreaterThanOrEqual(freeShippingThresholdUSD) {
		return decimal.Zero
	}
	if subtotalUSD.IsZero() {
		return decimal.Zero
	}
	return flatShippingUSD
}

func variantOf(product *models.Product, variantID uuid.UUID) *models.ProductVariant {
	for i := range product.Variants {
		if product.Variants[i].ID == variantID {
			return &product.Variants[i]
		}
	}
	return nil
}
