package checkout

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	"github.com/sxo6luxe/sxo6-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("SXO6_DB_DSN")
	if dsn == "" {
		t.Skip("SXO6_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func beginTx(t *testing.T) *gorm.DB {
	t.Helper()

	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return tx
}

func mustInsertProduct(t *testing.T, tx *gorm.DB, quantity int, track bool) *models.Product {
	t.Helper()

	suffix := uuid.NewString()[:8]
	product := &models.Product{
		Slug:              fmt.Sprintf("stock-%s", suffix),
		SKU:               fmt.Sprintf("SKU-%s", suffix),
		Name:              "Stock Fixture",
		PriceUSD:          decimal.RequireFromString("120"),
		InventoryQuantity: quantity,
		TrackInventory:    track,
		IsActive:          true,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return product
}

func mustInsertVariant(t *testing.T, tx *gorm.DB, productID uuid.UUID, quantity int) *models.ProductVariant {
	t.Helper()

	size := "M"
	variant := &models.ProductVariant{
		ProductID:         productID,
		Size:              &size,
		InventoryQuantity: quantity,
		IsActive:          true,
	}
	if err := tx.Create(variant).Error; err != nil {
		t.Fatalf("insert variant: %v", err)
	}
	return variant
}

func mustInsertOrder(t *testing.T, tx *gorm.DB) *models.Order {
	t.Helper()

	order := &models.Order{
		OrderNumber:   fmt.Sprintf("SXO6-TEST-%s", uuid.NewString()[:8]),
		CustomerEmail: "fixture@example.com",
		CustomerName:  "Fixture Buyer",
		ShippingAddress: types.Address{
			FullName:     "Fixture Buyer",
			AddressLine1: "1 Fixture Way",
			City:         "Lagos",
			Country:      "NG",
		},
		SubtotalUSD: decimal.RequireFromString("120"),
		TotalUSD:    decimal.RequireFromString("120"),
	}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("insert order: %v", err)
	}
	return order
}

func TestDecrementLineInventoryProductPath(t *testing.T) {
	tx := beginTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	product := mustInsertProduct(t, tx, 5, true)
	item := models.OrderItem{ProductID: &product.ID, Quantity: 3}

	ok, err := repo.DecrementLineInventory(ctx, item)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !ok {
		t.Fatal("decrement should affect the stock row")
	}

	var fresh models.Product
	if err := tx.First(&fresh, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if fresh.InventoryQuantity != 2 {
		t.Fatalf("expected 2 left, got %d", fresh.InventoryQuantity)
	}
}

func TestDecrementLineInventoryInsufficientStock(t *testing.T) {
	tx := beginTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	product := mustInsertProduct(t, tx, 2, true)
	item := models.OrderItem{ProductID: &product.ID, Quantity: 3}

	ok, err := repo.DecrementLineInventory(ctx, item)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if ok {
		t.Fatal("short stock must not be decremented")
	}

	var fresh models.Product
	if err := tx.First(&fresh, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if fresh.InventoryQuantity != 2 {
		t.Fatalf("stock must stay untouched, got %d", fresh.InventoryQuantity)
	}
}

func TestDecrementLineInventoryUntrackedPassesThrough(t *testing.T) {
	tx := beginTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	product := mustInsertProduct(t, tx, 0, false)
	item := models.OrderItem{ProductID: &product.ID, Quantity: 10}

	ok, err := repo.DecrementLineInventory(ctx, item)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !ok {
		t.Fatal("untracked product must always pass")
	}

	var fresh models.Product
	if err := tx.First(&fresh, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if fresh.InventoryQuantity != 0 {
		t.Fatalf("untracked stock must stay untouched, got %d", fresh.InventoryQuantity)
	}
}

func TestDecrementLineInventoryVariantPath(t *testing.T) {
	tx := beginTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	product := mustInsertProduct(t, tx, 100, true)
	variant := mustInsertVariant(t, tx, product.ID, 4)
	item := models.OrderItem{ProductID: &product.ID, VariantID: &variant.ID, Quantity: 4}

	ok, err := repo.DecrementLineInventory(ctx, item)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !ok {
		t.Fatal("variant decrement should affect the stock row")
	}

	var fresh models.ProductVariant
	if err := tx.First(&fresh, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if fresh.InventoryQuantity != 0 {
		t.Fatalf("expected 0 left, got %d", fresh.InventoryQuantity)
	}

	// Parent stock is variant-managed and must not move.
	var parent models.Product
	if err := tx.First(&parent, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if parent.InventoryQuantity != 100 {
		t.Fatalf("parent stock must stay untouched, got %d", parent.InventoryQuantity)
	}
}

func TestUpsertStepOverwritesPreviousAttempt(t *testing.T) {
	tx := beginTx(t)
	repo := NewRepository(tx)
	ctx := context.Background()

	order := mustInsertOrder(t, tx)
	step := enums.CheckoutStepDecrementInventory

	detail := "insufficient stock"
	if err := repo.UpsertStep(ctx, order.ID, step, enums.CheckoutStepStatusFailed, &detail); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := repo.UpsertStep(ctx, order.ID, step, enums.CheckoutStepStatusDone, nil); err != nil {
		t.Fatalf("record retry: %v", err)
	}

	steps, err := repo.ListSteps(ctx, order.ID)
	if err != nil {
		t.Fatalf("list steps: %v", err)
	}
	record, ok := steps[step]
	if !ok {
		t.Fatal("expected a single step record")
	}
	if record.Status != enums.CheckoutStepStatusDone {
		t.Fatalf("expected done, got %s", record.Status)
	}
	if record.Detail != nil {
		t.Fatalf("retry must clear the failure detail, got %v", *record.Detail)
	}
}
