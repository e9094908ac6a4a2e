package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
)

func TestRepositoryProductFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	category := mustInsertCategory(t, tx, "dresses")
	product := mustInsertProduct(t, tx, &category.ID, "silk-slip-dress", "129.00", true, false)

	detail, err := repo.FindProductBySlug(ctx, product.Slug)
	if err != nil {
		t.Fatalf("find by slug: %v", err)
	}
	if detail == nil || detail.ID != product.ID {
		t.Fatalf("expected product %s, got %+v", product.ID, detail)
	}
	if detail.Category == nil || detail.Category.ID != category.ID {
		t.Fatalf("expected preloaded category, got %+v", detail.Category)
	}

	detail.Name = "Silk Slip Dress II"
	if err := repo.UpdateProduct(ctx, detail); err != nil {
		t.Fatalf("update product: %v", err)
	}

	fetched, err := repo.FindProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if fetched.Name != "Silk Slip Dress II" {
		t.Fatalf("expected updated name, got %s", fetched.Name)
	}

	if err := repo.DeleteProduct(ctx, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	gone, err := repo.FindProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("find deleted: %v", err)
	}
	if gone != nil {
		t.Fatal("expected product to be deleted")
	}
}

func TestRepositoryListProductsFilters(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	dresses := mustInsertCategory(t, tx, "dresses")
	bags := mustInsertCategory(t, tx, "bags")

	featured := mustInsertProduct(t, tx, &dresses.ID, "featured-dress", "220.00", true, true)
	_ = mustInsertProduct(t, tx, &dresses.ID, "plain-dress", "80.00", true, false)
	_ = mustInsertProduct(t, tx, &bags.ID, "tote-bag", "150.00", true, false)
	_ = mustInsertProduct(t, tx, &dresses.ID, "retired-dress", "60.00", false, false)

	inCategory, err := repo.ListProducts(ctx, ProductFilters{CategorySlug: &dresses.Slug})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(inCategory) != 2 {
		t.Fatalf("expected 2 active dresses, got %d", len(inCategory))
	}

	isFeatured := true
	featuredOnly, err := repo.ListProducts(ctx, ProductFilters{Featured: &isFeatured})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if len(featuredOnly) != 1 || featuredOnly[0].ID != featured.ID {
		t.Fatalf("expected featured product, got %v", featuredOnly)
	}

	min := decimal.RequireFromString("100")
	priced, err := repo.ListProducts(ctx, ProductFilters{MinPriceUSD: &min})
	if err != nil {
		t.Fatalf("list by price: %v", err)
	}
	if len(priced) != 2 {
		t.Fatalf("expected 2 products at or above 100, got %d", len(priced))
	}

	searched, err := repo.ListProducts(ctx, ProductFilters{Search: "TOTE"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(searched) != 1 || searched[0].Slug != "tote-bag" {
		t.Fatalf("expected tote bag from search, got %v", searched)
	}
}

func TestRepositoryRelatedProducts(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	category := mustInsertCategory(t, tx, "knitwear")
	anchor := mustInsertProduct(t, tx, &category.ID, "anchor-knit", "99.00", true, false)
	sibling := mustInsertProduct(t, tx, &category.ID, "sibling-knit", "89.00", true, false)
	_ = mustInsertProduct(t, tx, &category.ID, "retired-knit", "79.00", false, false)

	related, err := repo.ListRelatedProducts(ctx, anchor, 4)
	if err != nil {
		t.Fatalf("list related: %v", err)
	}
	if len(related) != 1 || related[0].ID != sibling.ID {
		t.Fatalf("expected only the active sibling, got %v", related)
	}

	orphan := mustInsertProduct(t, tx, nil, "orphan-knit", "49.00", true, false)
	none, err := repo.ListRelatedProducts(ctx, orphan, 4)
	if err != nil {
		t.Fatalf("list related for orphan: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no related products without a category, got %d", len(none))
	}
}

func mustInsertCategory(t *testing.T, tx *gorm.DB, slug string) *models.Category {
	t.Helper()
	category := &models.Category{
		Slug:     fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8]),
		Name:     slug,
		IsActive: true,
	}
	if err := tx.Create(category).Error; err != nil {
		t.Fatalf("insert category: %v", err)
	}
	return category
}

func mustInsertProduct(t *testing.T, tx *gorm.DB, categoryID *uuid.UUID, slug, price string, active, featured bool) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:        categoryID,
		Slug:              slug,
		SKU:               fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:              slug,
		PriceUSD:          decimal.RequireFromString(price),
		InventoryQuantity: 10,
		TrackInventory:    true,
		IsActive:          active,
		IsFeatured:        featured,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return product
}
