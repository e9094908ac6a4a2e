package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/internal/coupons"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

func usd(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestIdentityValidate(t *testing.T) {
	userID := uuid.New()
	session := "guest-" + uuid.NewString()

	if err := UserIdentity(userID).validate(); err != nil {
		t.Fatalf("user identity should validate: %v", err)
	}
	if err := GuestIdentity(session).validate(); err != nil {
		t.Fatalf("guest identity should validate: %v", err)
	}
	if err := (Identity{}).validate(); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("empty identity must be rejected, got %v", err)
	}
	both := Identity{UserID: &userID, SessionID: &session}
	if err := both.validate(); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("dual identity must be rejected, got %v", err)
	}
}

func TestShippingFor(t *testing.T) {
	if got := ShippingFor(usd("199.99")); !got.Equal(usd("15.00")) {
		t.Fatalf("expected flat shipping below threshold, got %s", got)
	}
	if got := ShippingFor(usd("200")); !got.IsZero() {
		t.Fatalf("expected free shipping at threshold, got %s", got)
	}
	if got := ShippingFor(usd("220")); !got.IsZero() {
		t.Fatalf("expected free shipping above threshold, got %s", got)
	}
	if got := ShippingFor(decimal.Zero); !got.IsZero() {
		t.Fatalf("empty cart should not be charged shipping, got %s", got)
	}
}

func TestSubtotalUsesEffectivePrices(t *testing.T) {
	adjustment := usd("10")
	product := &models.Product{PriceUSD: usd("80")}
	variant := &models.ProductVariant{PriceAdjustmentUSD: adjustment}

	items := []models.CartItem{
		{Product: product, Quantity: 2},                    // 160
		{Product: product, Variant: variant, Quantity: 1},  // 90
		{Quantity: 5},                                      // no product loaded, skipped
	}
	got := Subtotal(items)
	if !got.Equal(usd("250")) {
		t.Fatalf("expected subtotal 250, got %s", got)
	}
}

func TestTotalsWithPercentageCoupon(t *testing.T) {
	product := &models.Product{PriceUSD: usd("90")}
	items := []models.CartItem{{Product: product, Quantity: 2}} // 180

	svc := &service{coupons: &stubCouponValidator{
		validation: &coupons.Validation{
			Coupon: &models.Coupon{
				Code:          "SAVE20",
				DiscountType:  enums.DiscountTypePercentage,
				DiscountValue: usd("20"),
			},
			DiscountUSD: usd("36"),
		},
	}}

	totals, err := svc.totalsForItems(context.Background(), items, "SAVE20")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.SubtotalUSD.Equal(usd("180")) {
		t.Fatalf("expected subtotal 180, got %s", totals.SubtotalUSD)
	}
	if !totals.ShippingUSD.Equal(usd("15.00")) {
		t.Fatalf("expected flat shipping, got %s", totals.ShippingUSD)
	}
	if !totals.TaxUSD.IsZero() {
		t.Fatalf("tax should be zero, got %s", totals.TaxUSD)
	}
	if !totals.TotalUSD.Equal(usd("159")) {
		t.Fatalf("expected total 159, got %s", totals.TotalUSD)
	}
}

func TestTotalsFreeShippingAboveThreshold(t *testing.T) {
	product := &models.Product{PriceUSD: usd("110")}
	items := []models.CartItem{{Product: product, Quantity: 2}} // 220

	svc := &service{coupons: &stubCouponValidator{}}
	totals, err := svc.totalsForItems(context.Background(), items, "")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.ShippingUSD.IsZero() {
		t.Fatalf("expected free shipping, got %s", totals.ShippingUSD)
	}
	if !totals.TotalUSD.Equal(usd("220")) {
		t.Fatalf("expected total 220, got %s", totals.TotalUSD)
	}
}

func TestTotalsPropagatesCouponRejection(t *testing.T) {
	product := &models.Product{PriceUSD: usd("50")}
	items := []models.CartItem{{Product: product, Quantity: 1}}

	svc := &service{coupons: &stubCouponValidator{
		err: pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired"),
	}}
	_, err := svc.totalsForItems(context.Background(), items, "OLD")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected coupon rejection to surface, got %v", err)
	}
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:cart_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	ddl := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(2)) || '-' || hex(randomblob(6)))),
  user_id TEXT,
  session_id TEXT,
  product_id TEXT NOT NULL,
  variant_id TEXT,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	if err := db.Exec(ddl).Error; err != nil {
		t.Fatalf("create cart_items: %v", err)
	}
	return db
}

type stubProductReader struct {
	product *models.Product
}

func (s *stubProductReader) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.product != nil && s.product.ID == id {
		return s.product, nil
	}
	return nil, nil
}

func newCartTestService(db *gorm.DB, product *models.Product) *service {
	return &service{
		repo:     NewRepository(db),
		products: &stubProductReader{product: product},
		coupons:  &stubCouponValidator{},
	}
}

func countCartLines(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.CartItem{}).Count(&count).Error; err != nil {
		t.Fatalf("count cart lines: %v", err)
	}
	return count
}

func TestAddItemFoldsIntoExistingLine(t *testing.T) {
	db := setupCartTestDB(t)
	variantID := uuid.New()
	product := &models.Product{
		ID:       uuid.New(),
		IsActive: true,
		PriceUSD: usd("80"),
		Variants: []models.ProductVariant{{ID: variantID, IsActive: true}},
	}
	svc := newCartTestService(db, product)
	identity := UserIdentity(uuid.New())

	if _, err := svc.AddItem(context.Background(), identity, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), identity, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("second add: %v", err)
	}

	line, err := svc.repo.FindLine(context.Background(), identity, product.ID, nil)
	if err != nil {
		t.Fatalf("find line: %v", err)
	}
	if line == nil || line.Quantity != 3 {
		t.Fatalf("expected one line with quantity 3, got %+v", line)
	}
	if got := countCartLines(t, db); got != 1 {
		t.Fatalf("expected a single folded line, got %d", got)
	}

	// A different variant of the same product is its own line.
	if _, err := svc.AddItem(context.Background(), identity, AddItemInput{ProductID: product.ID, VariantID: &variantID, Quantity: 1}); err != nil {
		t.Fatalf("variant add: %v", err)
	}
	if got := countCartLines(t, db); got != 2 {
		t.Fatalf("expected variant to open a new line, got %d lines", got)
	}
}

func TestUpdateItemBelowOneRemovesLine(t *testing.T) {
	db := setupCartTestDB(t)
	product := &models.Product{ID: uuid.New(), IsActive: true, PriceUSD: usd("40")}
	svc := newCartTestService(db, product)
	identity := GuestIdentity("guest-" + uuid.NewString())

	itemID := uuid.New()
	seeded := &models.CartItem{
		ID:        itemID,
		SessionID: identity.SessionID,
		ProductID: product.ID,
		Quantity:  2,
	}
	if err := svc.repo.CreateItem(context.Background(), seeded); err != nil {
		t.Fatalf("seed line: %v", err)
	}

	if err := svc.UpdateItem(context.Background(), identity, itemID, 5); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	line, err := svc.repo.FindItem(context.Background(), identity, itemID)
	if err != nil {
		t.Fatalf("find item: %v", err)
	}
	if line == nil || line.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %+v", line)
	}

	if err := svc.UpdateItem(context.Background(), identity, itemID, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	gone, err := svc.repo.FindItem(context.Background(), identity, itemID)
	if err != nil {
		t.Fatalf("find item after zero update: %v", err)
	}
	if gone != nil {
		t.Fatalf("zero quantity must remove the line, got %+v", gone)
	}

	if err := svc.UpdateItem(context.Background(), identity, itemID, 1); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for removed line, got %v", err)
	}
}

type stubCouponValidator struct {
	validation *coupons.Validation
	err        error
}

func (s *stubCouponValidator) Validate(ctx context.Context, code string, subtotalUSD decimal.Decimal) (*coupons.Validation, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.validation, nil
}
