package notifications

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
)

func TestBuildOrderEmailData(t *testing.T) {
	size := "M"
	color := "Noir"
	tracking := "NG-TRACK-7"
	order := &models.Order{
		OrderNumber:    "SXO6-20260401-ABCDEF",
		CustomerName:   "Ada O.",
		TotalUSD:       decimal.RequireFromString("195.5"),
		TrackingNumber: &tracking,
		Items: []models.OrderItem{
			{
				ProductName:  "Silk Slip Dress",
				VariantSize:  &size,
				VariantColor: &color,
				Quantity:     1,
				SubtotalUSD:  decimal.RequireFromString("180"),
			},
			{
				ProductName: "Leather Tote",
				Quantity:    2,
				SubtotalUSD: decimal.RequireFromString("15.5"),
			},
		},
	}

	data := buildOrderEmailData(order)
	if data.OrderNumber != order.OrderNumber || data.CustomerName != "Ada O." {
		t.Fatalf("unexpected header fields: %+v", data)
	}
	if data.TotalUSD != "195.50" {
		t.Fatalf("expected formatted total 195.50, got %q", data.TotalUSD)
	}
	if data.TrackingNumber != tracking {
		t.Fatalf("expected tracking %q, got %q", tracking, data.TrackingNumber)
	}
	if len(data.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(data.Items))
	}
	if data.Items[0].Variant != "M / Noir" {
		t.Fatalf("expected combined variant label, got %q", data.Items[0].Variant)
	}
	if data.Items[1].Variant != "" {
		t.Fatalf("plain items must have no variant label, got %q", data.Items[1].Variant)
	}
	if data.Items[1].SubtotalUSD != "15.50" {
		t.Fatalf("expected formatted subtotal, got %q", data.Items[1].SubtotalUSD)
	}
}

func TestVariantLabel(t *testing.T) {
	size := "L"
	color := "Ivory"
	empty := ""

	cases := []struct {
		name string
		item models.OrderItem
		want string
	}{
		{"both", models.OrderItem{VariantSize: &size, VariantColor: &color}, "L / Ivory"},
		{"sizeOnly", models.OrderItem{VariantSize: &size}, "L"},
		{"colorOnly", models.OrderItem{VariantColor: &color}, "Ivory"},
		{"emptyStrings", models.OrderItem{VariantSize: &empty, VariantColor: &empty}, ""},
		{"none", models.OrderItem{}, ""},
	}
	for _, tc := range cases {
		if got := variantLabel(tc.item); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestResetMailerBuildsEscapedURL(t *testing.T) {
	m := &ResetMailer{frontendURL: "https://sxo6luxe.com"}

	got := m.resetURL("abc+def/123")
	want := "https://sxo6luxe.com/reset-password?token=abc%2Bdef%2F123"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
