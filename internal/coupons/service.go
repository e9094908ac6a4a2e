package coupons

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/pkg/db"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// Service exposes coupon validation and admin management.
type Service interface {
	Validate(ctx context.Context, code string, subtotalUSD decimal.Decimal) (*Validation, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Create(ctx context.Context, input CouponInput) (*models.Coupon, error)
	Update(ctx context.Context, couponID uuid.UUID, input CouponInput) (*models.Coupon, error)
	Delete(ctx context.Context, couponID uuid.UUID) error
}

// Validation pairs an accepted coupon with the discount it grants for a
// given subtotal.
type Validation struct {
	Coupon      *models.Coupon  `json:"coupon"`
	DiscountUSD decimal.Decimal `json:"discount_usd"`
}

// CouponInput is the admin payload for creating or updating a coupon.
type CouponInput struct {
	Code               string
	Description        *string
	DiscountType       enums.DiscountType
	DiscountValue      decimal.Decimal
	MinimumPurchaseUSD decimal.Decimal
	MaximumDiscountUSD *decimal.Decimal
	UsageLimit         *int
	ValidFrom          *time.Time
	ValidUntil         *time.Time
	IsActive           bool
}

func (in CouponInput) validate() error {
	if strings.TrimSpace(in.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if !in.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_type must be percentage or fixed_usd")
	}
	if !in.DiscountValue.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount_value must be positive")
	}
	if in.DiscountType == enums.DiscountTypePercentage && in.DiscountValue.GreaterThan(oneHundred) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	if in.MinimumPurchaseUSD.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum_purchase_usd must be non-negative")
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage_limit must be at least 1")
	}
	if in.ValidFrom != nil && in.ValidUntil != nil && in.ValidUntil.Before(*in.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "valid_until must be after valid_from")
	}
	return nil
}

type service struct {
	repo *Repository
	now  func() time.Time
}

// NewService constructs a coupon service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// Validate checks the code against the subtotal and returns the discount
// it would grant. The usage counter is only consumed at checkout.
func (s *service) Validate(ctx context.Context, code string, subtotalUSD decimal.Decimal) (*Validation, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if subtotalUSD.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must be non-negative")
	}

	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}

	if err := Eligible(coupon, subtotalUSD, s.now().UTC()); err != nil {
		return nil, err
	}

	return &Validation{
		Coupon:      coupon,
		DiscountUSD: DiscountFor(coupon, subtotalUSD),
	}, nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, input CouponInput) (*models.Coupon, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	coupon := couponFromInput(input)
	if err := s.repo.Create(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "coupons_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert coupon")
	}
	return coupon, nil
}

func (s *service) Update(ctx context.Context, couponID uuid.UUID, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, couponID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	coupon.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	coupon.Description = input.Description
	coupon.DiscountType = input.DiscountType
	coupon.DiscountValue = input.DiscountValue
	coupon.MinimumPurchaseUSD = input.MinimumPurchaseUSD
	coupon.MaximumDiscountUSD = input.MaximumDiscountUSD
	coupon.UsageLimit = input.UsageLimit
	coupon.ValidFrom = input.ValidFrom
	coupon.ValidUntil = input.ValidUntil
	coupon.IsActive = input.IsActive

	if err := s.repo.Update(ctx, coupon); err != nil {
		if db.IsUniqueViolation(err, "coupons_code_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update coupon")
	}
	return coupon, nil
}

func (s *service) Delete(ctx context.Context, couponID uuid.UUID) error {
	coupon, err := s.repo.FindByID(ctx, couponID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if coupon == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
	}
	if err := s.repo.Delete(ctx, couponID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete coupon")
	}
	return nil
}

// Eligible reports whether the coupon can be applied to the subtotal at
// the given instant. A nil error means the coupon applies.
func Eligible(coupon *models.Coupon, subtotalUSD decimal.Decimal, now time.Time) error {
	if !coupon.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon is not active")
	}
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon is not yet valid")
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon has expired")
	}
	if coupon.UsageLimit != nil && coupon.UsageCount >= *coupon.UsageLimit {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon usage limit reached")
	}
	if subtotalUSD.LessThan(coupon.MinimumPurchaseUSD) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("minimum purchase of $%s required", coupon.MinimumPurchaseUSD.StringFixed(2)))
	}
	return nil
}

// DiscountFor computes the dollar discount the coupon grants for the
// subtotal. Percentage discounts honor maximum_discount_usd; no discount
// ever exceeds the subtotal itself.
func DiscountFor(coupon *models.Coupon, subtotalUSD decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch coupon.DiscountType {
	case enums.DiscountTypePercentage:
		discount = subtotalUSD.Mul(coupon.DiscountValue).Div(oneHundred).Round(2)
		if coupon.MaximumDiscountUSD != nil && discount.GreaterThan(*coupon.MaximumDiscountUSD) {
			discount = *coupon.MaximumDiscountUSD
		}
	case enums.DiscountTypeFixedUSD:
		discount = coupon.DiscountValue
	default:
		return decimal.Zero
	}
	if discount.GreaterThan(subtotalUSD) {
		return subtotalUSD
	}
	return discount
}

func couponFromInput(input CouponInput) *models.Coupon {
	return &models.Coupon{
		Code:               strings.ToUpper(strings.TrimSpace(input.Code)),
		Description:        input.Description,
		DiscountType:       input.DiscountType,
		DiscountValue:      input.DiscountValue,
		MinimumPurchaseUSD: input.MinimumPurchaseUSD,
		MaximumDiscountUSD: input.MaximumDiscountUSD,
		UsageLimit:         input.UsageLimit,
		ValidFrom:          input.ValidFrom,
		ValidUntil:         input.ValidUntil,
		IsActive:           input.IsActive,
	}
}
