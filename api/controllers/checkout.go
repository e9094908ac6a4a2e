package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	"github.com/sxo6luxe/sxo6-backend/internal/checkout"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/types"
)

type checkoutAddress struct {
	FullName     string  `json:"full_name" validate:"required,max=120"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	AddressLine1 string  `json:"address_line1" validate:"required,max=255"`
	AddressLine2 *string `json:"address_line2" validate:"omitempty,max=255"`
	City         string  `json:"city" validate:"required,max=120"`
	State        string  `json:"state" validate:"omitempty,max=120"`
	PostalCode   string  `json:"postal_code" validate:"omitempty,max=20"`
	Country      string  `json:"country" validate:"required,max=56"`
}

func (a checkoutAddress) toAddress() types.Address {
	return types.Address{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

type createOrderRequest struct {
	CustomerEmail       string           `json:"customer_email" validate:"required,email"`
	CustomerName        string           `json:"customer_name" validate:"required,max=120"`
	CustomerPhone       *string          `json:"customer_phone" validate:"omitempty,max=32"`
	CustomerNationality *string          `json:"customer_nationality" validate:"omitempty,max=56"`
	ShippingAddress     checkoutAddress  `json:"shipping_address" validate:"required"`
	BillingAddress      *checkoutAddress `json:"billing_address" validate:"omitempty"`
	CouponCode          string           `json:"coupon_code" validate:"omitempty,max=64"`
	CallbackURL         string           `json:"callback_url" validate:"omitempty,url,max=500"`
}

type confirmPaymentRequest struct {
	Reference string `json:"reference" validate:"omitempty,max=100"`
}

// CheckoutCreate snapshots the cart into an order and, for Nigerian
// customers, opens a Paystack transaction.
func CheckoutCreate(service checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := resolveIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := checkout.CreateOrderInput{
			CustomerEmail:       body.CustomerEmail,
			CustomerName:        body.CustomerName,
			CustomerPhone:       body.CustomerPhone,
			CustomerNationality: body.CustomerNationality,
			ShippingAddress:     body.ShippingAddress.toAddress(),
			CouponCode:          body.CouponCode,
			CallbackURL:         body.CallbackURL,
		}
		if body.BillingAddress != nil {
			billing := body.BillingAddress.toAddress()
			input.BillingAddress = &billing
		}

		result, err := service.CreateOrder(r.Context(), identity, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckoutConfirm verifies the Paystack charge and runs the post-payment
// sequence. Safe to retry: completed steps are skipped on the next call.
func CheckoutConfirm(service checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := parsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body confirmPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// Identity is optional here: a guest returning from the Paystack
		// redirect may confirm without a session header.
		var identity *cart.Identity
		if resolved, err := resolveIdentity(r); err == nil {
			identity = &resolved
		}

		result, err := service.ConfirmPayment(r.Context(), identity, orderID, body.Reference)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
