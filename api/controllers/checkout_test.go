package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/api/middleware"
	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	"github.com/sxo6luxe/sxo6-backend/internal/checkout"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

type stubCheckoutService struct {
	createFn  func(context.Context, cart.Identity, checkout.CreateOrderInput) (*checkout.CreateOrderResult, error)
	confirmFn func(context.Context, *cart.Identity, uuid.UUID, string) (*checkout.ConfirmResult, error)
}

func (s *stubCheckoutService) CreateOrder(ctx context.Context, identity cart.Identity, input checkout.CreateOrderInput) (*checkout.CreateOrderResult, error) {
	return s.createFn(ctx, identity, input)
}

func (s *stubCheckoutService) ConfirmPayment(ctx context.Context, identity *cart.Identity, orderID uuid.UUID, reference string) (*checkout.ConfirmResult, error) {
	return s.confirmFn(ctx, identity, orderID, reference)
}

const checkoutBody = `{
	"customer_email": "ada@example.com",
	"customer_name": "Ada O.",
	"shipping_address": {
		"full_name": "Ada O.",
		"address_line1": "14 Bourdillon Rd",
		"city": "Lagos",
		"country": "Nigeria"
	},
	"coupon_code": "WELCOME10"
}`

func TestCheckoutCreateReturnsCreated(t *testing.T) {
	service := &stubCheckoutService{
		createFn: func(ctx context.Context, identity cart.Identity, input checkout.CreateOrderInput) (*checkout.CreateOrderResult, error) {
			if identity.SessionID == nil || *identity.SessionID != "guest-abc" {
				t.Fatalf("expected guest identity, got %+v", identity)
			}
			if input.CustomerEmail != "ada@example.com" {
				t.Fatalf("unexpected email %q", input.CustomerEmail)
			}
			if input.ShippingAddress.Country != "Nigeria" {
				t.Fatalf("unexpected country %q", input.ShippingAddress.Country)
			}
			if input.CouponCode != "WELCOME10" {
				t.Fatalf("unexpected coupon %q", input.CouponCode)
			}
			ref := "ps_ref_123"
			return &checkout.CreateOrderResult{
				AuthorizationURL: "https://checkout.paystack.com/abc",
				PaymentReference: &ref,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte(checkoutBody)))
	ctx := middleware.WithGuestSession(req.Context(), "guest-abc")
	rec := httptest.NewRecorder()
	CheckoutCreate(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("authorization_url")) {
		t.Fatalf("expected authorization url in body, got %s", rec.Body.String())
	}
}

func TestCheckoutCreateRejectsAnonymous(t *testing.T) {
	service := &stubCheckoutService{
		createFn: func(ctx context.Context, identity cart.Identity, input checkout.CreateOrderInput) (*checkout.CreateOrderResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte(checkoutBody)))
	rec := httptest.NewRecorder()
	CheckoutCreate(service, nil)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCheckoutCreateSurfacesEmptyCart(t *testing.T) {
	service := &stubCheckoutService{
		createFn: func(ctx context.Context, identity cart.Identity, input checkout.CreateOrderInput) (*checkout.CreateOrderResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewReader([]byte(checkoutBody)))
	ctx := middleware.WithGuestSession(req.Context(), "guest-abc")
	rec := httptest.NewRecorder()
	CheckoutCreate(service, nil)(rec, req.WithContext(ctx))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("cart is empty")) {
		t.Fatalf("expected message passthrough, got %s", rec.Body.String())
	}
}

func confirmRequest(t *testing.T, orderID uuid.UUID, body string, seed func(context.Context) context.Context) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/"+orderID.String()+"/confirm", bytes.NewReader([]byte(body)))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", orderID.String())
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if seed != nil {
		ctx = seed(ctx)
	}
	return req.WithContext(ctx)
}

func TestCheckoutConfirmWithSignedInShopper(t *testing.T) {
	orderID := uuid.New()
	userID := uuid.New()
	service := &stubCheckoutService{
		confirmFn: func(ctx context.Context, identity *cart.Identity, gotOrder uuid.UUID, reference string) (*checkout.ConfirmResult, error) {
			if identity == nil || identity.UserID == nil || *identity.UserID != userID {
				t.Fatalf("expected user identity, got %+v", identity)
			}
			if gotOrder != orderID {
				t.Fatalf("unexpected order id %s", gotOrder)
			}
			if reference != "ps_ref_123" {
				t.Fatalf("unexpected reference %q", reference)
			}
			return &checkout.ConfirmResult{OrderID: orderID, Reference: reference, Completed: true}, nil
		},
	}

	req := confirmRequest(t, orderID, `{"reference":"ps_ref_123"}`, func(ctx context.Context) context.Context {
		return middleware.WithUserID(ctx, userID.String())
	})
	rec := httptest.NewRecorder()
	CheckoutConfirm(service, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"completed":true`)) {
		t.Fatalf("expected completed result, got %s", rec.Body.String())
	}
}

func TestCheckoutConfirmAllowsMissingIdentity(t *testing.T) {
	orderID := uuid.New()
	service := &stubCheckoutService{
		confirmFn: func(ctx context.Context, identity *cart.Identity, gotOrder uuid.UUID, reference string) (*checkout.ConfirmResult, error) {
			if identity != nil {
				t.Fatalf("expected nil identity for a bare redirect confirm, got %+v", identity)
			}
			return &checkout.ConfirmResult{OrderID: gotOrder, Reference: "ps_ref_123", Completed: true}, nil
		},
	}

	req := confirmRequest(t, orderID, `{}`, nil)
	rec := httptest.NewRecorder()
	CheckoutConfirm(service, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCheckoutConfirmRejectsBadOrderID(t *testing.T) {
	service := &stubCheckoutService{
		confirmFn: func(ctx context.Context, identity *cart.Identity, gotOrder uuid.UUID, reference string) (*checkout.ConfirmResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/not-a-uuid/confirm", bytes.NewReader([]byte(`{}`)))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderID", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	CheckoutConfirm(service, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
