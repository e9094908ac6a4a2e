package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/api/responses"
	"github.com/sxo6luxe/sxo6-backend/api/validators"
	"github.com/sxo6luxe/sxo6-backend/internal/coupons"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
)

type validateCouponRequest struct {
	Code        string `json:"code" validate:"required,max=64"`
	SubtotalUSD string `json:"subtotal_usd" validate:"required"`
}

type couponRequest struct {
	Code               string  `json:"code" validate:"required,max=64"`
	Description        *string `json:"description" validate:"omitempty,max=500"`
	DiscountType       string  `json:"discount_type" validate:"required,oneof=percentage fixed_usd"`
	DiscountValue      string  `json:"discount_value" validate:"required"`
	MinimumPurchaseUSD string  `json:"minimum_purchase_usd" validate:"omitempty"`
	MaximumDiscountUSD *string `json:"maximum_discount_usd" validate:"omitempty"`
	UsageLimit         *int    `json:"usage_limit" validate:"omitempty,min=1"`
	ValidFrom          *string `json:"valid_from" validate:"omitempty"`
	ValidUntil         *string `json:"valid_until" validate:"omitempty"`
	IsActive           bool    `json:"is_active"`
}

// CouponValidate prices a coupon against the supplied subtotal.
func CouponValidate(service coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body validateCouponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subtotal, err := parseBodyDecimal(body.SubtotalUSD, "subtotal_usd")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		validation, err := service.Validate(r.Context(), body.Code, subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, validation)
	}
}

func AdminCouponList(service coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := service.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"coupons": rows})
	}
}

func AdminCouponCreate(service coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body couponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := service.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, coupon)
	}
}

func AdminCouponUpdate(service coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := parsePathUUID(chi.URLParam(r, "couponID"), "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body couponRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := service.Update(r.Context(), couponID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}

func AdminCouponDelete(service coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		couponID, err := parsePathUUID(chi.URLParam(r, "couponID"), "couponID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.Delete(r.Context(), couponID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func (body couponRequest) toInput() (coupons.CouponInput, error) {
	input := coupons.CouponInput{
		Code:         body.Code,
		Description:  body.Description,
		DiscountType: enums.DiscountType(body.DiscountType),
		UsageLimit:   body.UsageLimit,
		IsActive:     body.IsActive,
	}

	value, err := parseBodyDecimal(body.DiscountValue, "discount_value")
	if err != nil {
		return input, err
	}
	input.DiscountValue = value

	if body.MinimumPurchaseUSD != "" {
		minimum, err := parseBodyDecimal(body.MinimumPurchaseUSD, "minimum_purchase_usd")
		if err != nil {
			return input, err
		}
		input.MinimumPurchaseUSD = minimum
	}

	if body.MaximumDiscountUSD != nil {
		maximum, err := parseBodyDecimal(*body.MaximumDiscountUSD, "maximum_discount_usd")
		if err != nil {
			return input, err
		}
		input.MaximumDiscountUSD = &maximum
	}

	if body.ValidFrom != nil {
		from, err := parseBodyTime(*body.ValidFrom, "valid_from")
		if err != nil {
			return input, err
		}
		input.ValidFrom = &from
	}
	if body.ValidUntil != nil {
		until, err := parseBodyTime(*body.ValidUntil, "valid_until")
		if err != nil {
			return input, err
		}
		input.ValidUntil = &until
	}

	return input, nil
}

func parseBodyDecimal(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, field+" must be a decimal string")
	}
	return value, nil
}

func parseBodyTime(raw, field string) (time.Time, error) {
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, field+" must be an RFC3339 timestamp")
	}
	return value, nil
}
