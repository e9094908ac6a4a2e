package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

func TestNormalizeSlug(t *testing.T) {
	cases := map[string]string{
		"Silk Slip Dress":     "silk-slip-dress",
		"  Éclat -- Noir  ":   "clat-noir",
		"UPPER_case 2024!":    "upper-case-2024",
		"---":                 "",
		"already-a-slug":      "already-a-slug",
	}
	for input, want := range cases {
		if got := normalizeSlug(input); got != want {
			t.Fatalf("normalizeSlug(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestApplyProductUpdateTrims(t *testing.T) {
	product := &models.Product{
		SKU:  "old-sku",
		Name: "old name",
	}
	applyProductUpdate(product, UpdateProductInput{
		SKU:  stringPtr("  NEW-SKU "),
		Name: stringPtr("  Silk Slip Dress "),
		Slug: stringPtr("Silk Slip Dress"),
	})
	if product.SKU != "NEW-SKU" {
		t.Fatalf("expected trimmed sku, got %q", product.SKU)
	}
	if product.Name != "Silk Slip Dress" {
		t.Fatalf("expected trimmed name, got %q", product.Name)
	}
	if product.Slug != "silk-slip-dress" {
		t.Fatalf("expected normalized slug, got %q", product.Slug)
	}
}

func TestCreateProductInputValidation(t *testing.T) {
	base := CreateProductInput{
		Name:     "Silk Slip Dress",
		SKU:      "SXO6-DR-001",
		PriceUSD: decimal.RequireFromString("129.00"),
	}
	if err := base.validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	missingName := base
	missingName.Name = "  "
	if err := missingName.validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing name, got %v", err)
	}

	negativePrice := base
	negativePrice.PriceUSD = decimal.RequireFromString("-1")
	if err := negativePrice.validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	negativeStock := base
	negativeStock.InventoryQuantity = -3
	if err := negativeStock.validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for negative inventory, got %v", err)
	}
}

func TestVariantInputValidation(t *testing.T) {
	if err := (VariantInput{InventoryQuantity: 5}).validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error without size or color, got %v", err)
	}
	size := "M"
	if err := (VariantInput{Size: &size, InventoryQuantity: 5}).validate(); err != nil {
		t.Fatalf("expected valid variant, got %v", err)
	}
}

func TestProductConflictMessage(t *testing.T) {
	if msg, ok := productConflictMessage(errors.New(`duplicate key value violates unique constraint "products_slug_key"`)); !ok || !strings.Contains(msg, "slug") {
		t.Fatalf("expected slug conflict, got %q %v", msg, ok)
	}
	if msg, ok := productConflictMessage(errors.New(`duplicate key value violates unique constraint "products_sku_key"`)); !ok || !strings.Contains(msg, "SKU") {
		t.Fatalf("expected sku conflict, got %q %v", msg, ok)
	}
	if _, ok := productConflictMessage(errors.New("connection refused")); ok {
		t.Fatal("unrelated error should not map to a conflict")
	}
}

func TestFindVariant(t *testing.T) {
	target := uuid.New()
	variants := []models.ProductVariant{
		{ID: uuid.New()},
		{ID: target, InventoryQuantity: 7},
	}
	found := findVariant(variants, target)
	if found == nil || found.InventoryQuantity != 7 {
		t.Fatalf("expected to find variant, got %+v", found)
	}
	if findVariant(variants, uuid.New()) != nil {
		t.Fatal("expected nil for unknown variant id")
	}
}

func TestImageObjectKey(t *testing.T) {
	productID := uuid.New()
	key := imageObjectKey(productID, "Lookbook Shot.JPG")
	if !strings.HasPrefix(key, "products/"+productID.String()+"/") {
		t.Fatalf("unexpected key prefix: %s", key)
	}
	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("expected lowercased extension, got %s", key)
	}
}

func TestObjectFromURL(t *testing.T) {
	svc := &service{uploader: &fakeUploader{prefix: "https://storage.googleapis.com/sxo6-media/"}}

	object := svc.objectFromURL("https://storage.googleapis.com/sxo6-media/products/abc/img.jpg")
	if object != "products/abc/img.jpg" {
		t.Fatalf("unexpected object %q", object)
	}
	if svc.objectFromURL("https://cdn.example.com/foreign.jpg") != "" {
		t.Fatal("foreign URLs should not map to a bucket object")
	}
}

type fakeUploader struct {
	prefix  string
	deleted []string
}

func (f *fakeUploader) Upload(ctx context.Context, object, contentType string, data []byte) (string, error) {
	return f.prefix + object, nil
}

func (f *fakeUploader) Delete(ctx context.Context, object string) error {
	f.deleted = append(f.deleted, object)
	return nil
}

func (f *fakeUploader) PublicURL(object string) string {
	return f.prefix + object
}

func stringPtr(value string) *string {
	return &value
}
