package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/api/middleware"
	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
)

type stubCartService struct {
	getFn    func(context.Context, cart.Identity) ([]models.CartItem, error)
	addFn    func(context.Context, cart.Identity, cart.AddItemInput) (*models.CartItem, error)
	mergeFn  func(context.Context, string, uuid.UUID) (*cart.MergeResult, error)
	totalsFn func(context.Context, cart.Identity, string) (*cart.Totals, error)
}

func (s *stubCartService) GetCart(ctx context.Context, id cart.Identity) ([]models.CartItem, error) {
	return s.getFn(ctx, id)
}

func (s *stubCartService) AddItem(ctx context.Context, id cart.Identity, input cart.AddItemInput) (*models.CartItem, error) {
	return s.addFn(ctx, id, input)
}

func (s *stubCartService) UpdateItem(ctx context.Context, id cart.Identity, itemID uuid.UUID, quantity int) error {
	return nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, id cart.Identity, itemID uuid.UUID) error {
	return nil
}

func (s *stubCartService) Clear(ctx context.Context, id cart.Identity) error { return nil }

func (s *stubCartService) Merge(ctx context.Context, sessionID string, userID uuid.UUID) (*cart.MergeResult, error) {
	return s.mergeFn(ctx, sessionID, userID)
}

func (s *stubCartService) Totals(ctx context.Context, id cart.Identity, couponCode string) (*cart.Totals, error) {
	return s.totalsFn(ctx, id, couponCode)
}

func TestCartGetUsesUserIdentity(t *testing.T) {
	userID := uuid.New()
	service := &stubCartService{
		getFn: func(ctx context.Context, id cart.Identity) ([]models.CartItem, error) {
			if id.UserID == nil || *id.UserID != userID {
				t.Fatalf("expected user identity, got %+v", id)
			}
			if id.SessionID != nil {
				t.Fatal("session id must not be set for a signed-in shopper")
			}
			return []models.CartItem{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	// A stale guest header must lose to the signed-in user.
	ctx = middleware.WithGuestSession(ctx, "guest-abc")
	rec := httptest.NewRecorder()
	CartGet(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartGetFallsBackToGuestSession(t *testing.T) {
	service := &stubCartService{
		getFn: func(ctx context.Context, id cart.Identity) ([]models.CartItem, error) {
			if id.SessionID == nil || *id.SessionID != "guest-abc" {
				t.Fatalf("expected guest identity, got %+v", id)
			}
			return []models.CartItem{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	ctx := middleware.WithGuestSession(req.Context(), "guest-abc")
	rec := httptest.NewRecorder()
	CartGet(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCartGetRejectsAnonymous(t *testing.T) {
	service := &stubCartService{
		getFn: func(ctx context.Context, id cart.Identity) ([]models.CartItem, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	CartGet(service, nil)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCartAddItemCreated(t *testing.T) {
	productID := uuid.New()
	service := &stubCartService{
		addFn: func(ctx context.Context, id cart.Identity, input cart.AddItemInput) (*models.CartItem, error) {
			if input.ProductID != productID {
				t.Fatalf("unexpected product id %s", input.ProductID)
			}
			if input.Quantity != 2 {
				t.Fatalf("unexpected quantity %d", input.Quantity)
			}
			return &models.CartItem{ID: uuid.New(), ProductID: productID, Quantity: 2}, nil
		},
	}

	body := []byte(`{"product_id":"` + productID.String() + `","quantity":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))
	ctx := middleware.WithGuestSession(req.Context(), "guest-abc")
	rec := httptest.NewRecorder()
	CartAddItem(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartAddItemRejectsZeroQuantity(t *testing.T) {
	service := &stubCartService{
		addFn: func(ctx context.Context, id cart.Identity, input cart.AddItemInput) (*models.CartItem, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	body := []byte(`{"product_id":"` + uuid.NewString() + `","quantity":0}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", bytes.NewReader(body))
	ctx := middleware.WithGuestSession(req.Context(), "guest-abc")
	rec := httptest.NewRecorder()
	CartAddItem(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCartMergeRequiresGuestHeader(t *testing.T) {
	service := &stubCartService{
		mergeFn: func(ctx context.Context, sessionID string, userID uuid.UUID) (*cart.MergeResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge", nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	rec := httptest.NewRecorder()
	CartMerge(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without guest header, got %d", rec.Code)
	}
}

func TestCartMergeMigratesGuestCart(t *testing.T) {
	userID := uuid.New()
	service := &stubCartService{
		mergeFn: func(ctx context.Context, sessionID string, gotUser uuid.UUID) (*cart.MergeResult, error) {
			if sessionID != "guest-abc" || gotUser != userID {
				t.Fatalf("unexpected merge args %q %s", sessionID, gotUser)
			}
			return &cart.MergeResult{Migrated: 3, ClearedSessionID: sessionID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/merge", nil)
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithGuestSession(ctx, "guest-abc")
	rec := httptest.NewRecorder()
	CartMerge(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"migrated":3`)) {
		t.Fatalf("expected merge result in body, got %s", rec.Body.String())
	}
}

func TestCartTotalsPassesCouponCode(t *testing.T) {
	service := &stubCartService{
		totalsFn: func(ctx context.Context, id cart.Identity, couponCode string) (*cart.Totals, error) {
			if couponCode != "WELCOME10" {
				t.Fatalf("unexpected coupon %q", couponCode)
			}
			return &cart.Totals{
				SubtotalUSD: decimal.NewFromInt(100),
				DiscountUSD: decimal.NewFromInt(10),
				TotalUSD:    decimal.NewFromInt(90),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/totals?coupon=WELCOME10", nil)
	ctx := middleware.WithGuestSession(req.Context(), "guest-abc")
	rec := httptest.NewRecorder()
	CartTotals(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCartUpdateItemInvalidUUID(t *testing.T) {
	service := &stubCartService{}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/not-a-uuid", bytes.NewReader([]byte(`{"quantity":1}`)))
	ctx := middleware.WithGuestSession(req.Context(), "guest-abc")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("itemID", "not-a-uuid")
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	rec := httptest.NewRecorder()
	CartUpdateItem(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
