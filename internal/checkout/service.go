package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/internal/cart"
	"github.com/sxo6luxe/sxo6-backend/internal/coupons"
	"github.com/sxo6luxe/sxo6-backend/internal/orders"
	"github.com/sxo6luxe/sxo6-backend/pkg/db"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/metrics"
	"github.com/sxo6luxe/sxo6-backend/pkg/paystack"
	"github.com/sxo6luxe/sxo6-backend/pkg/types"
)

// Service runs order creation and the post-payment sequence.
type Service interface {
	CreateOrder(ctx context.Context, identity cart.Identity, input CreateOrderInput) (*CreateOrderResult, error)
	ConfirmPayment(ctx context.Context, identity *cart.Identity, orderID uuid.UUID, reference string) (*ConfirmResult, error)
}

// CreateOrderInput is the checkout payload.
type CreateOrderInput struct {
	CustomerEmail       string
	CustomerName        string
	CustomerPhone       *string
	CustomerNationality *string
	ShippingAddress     types.Address
	BillingAddress      *types.Address
	CouponCode          string
	CallbackURL         string
}

// CreateOrderResult returns the snapshot order plus, for Paystack
// customers, the redirect needed to open the payment popup.
type CreateOrderResult struct {
	Order            *models.Order `json:"order"`
	AuthorizationURL string        `json:"authorization_url,omitempty"`
	PaymentReference *string       `json:"payment_reference,omitempty"`
}

// ConfirmResult reports how far the post-payment sequence got. A failed
// step leaves Completed false and carries the payment reference so support
// can follow up; the order itself stays visible.
type ConfirmResult struct {
	OrderID    uuid.UUID           `json:"order_id"`
	Reference  string              `json:"reference"`
	Completed  bool                `json:"completed"`
	FailedStep *enums.CheckoutStep `json:"failed_step,omitempty"`
}

type cartReader interface {
	GetCart(ctx context.Context, id cart.Identity) ([]models.CartItem, error)
	Totals(ctx context.Context, id cart.Identity, couponCode string) (*cart.Totals, error)
	Clear(ctx context.Context, id cart.Identity) error
}

type paymentGateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

type rateSource interface {
	USDToNGN(ctx context.Context) decimal.Decimal
}

type emailPublisher interface {
	PublishOrderEmail(ctx context.Context, emailType enums.EmailType, orderID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams bundles the dependencies of the checkout service.
type ServiceParams struct {
	Repo       *Repository
	OrderRepo  *orders.Repository
	CouponRepo *coupons.Repository
	Cart       cartReader
	Gateway    paymentGateway
	Rates      rateSource
	Publisher  emailPublisher
	DB         txRunner
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
}

type service struct {
	repo       *Repository
	orderRepo  *orders.Repository
	couponRepo *coupons.Repository
	cart       cartReader
	gateway    paymentGateway
	rates      rateSource
	publisher  emailPublisher
	dbClient   txRunner
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService constructs a checkout service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.CouponRepo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if params.Rates == nil {
		return nil, fmt.Errorf("rate source required")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("email publisher required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Metrics == nil {
		return nil, fmt.Errorf("checkout metrics required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       params.Repo,
		orderRepo:  params.OrderRepo,
		couponRepo: params.CouponRepo,
		cart:       params.Cart,
		gateway:    params.Gateway,
		rates:      params.Rates,
		publisher:  params.Publisher,
		dbClient:   params.DB,
		metrics:    params.Metrics,
		logg:       params.Logger,
		now:        time.Now,
	}, nil
}

// CreateOrder snapshots the cart into an order inside one transaction.
// Nigerian customers get a Paystack authorization URL back; everyone else
// leaves with a pending order and an emptied cart.
func (s *service) CreateOrder(ctx context.Context, identity cart.Identity, input CreateOrderInput) (*CreateOrderResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if err := input.ShippingAddress.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.BillingAddress != nil {
		if err := input.BillingAddress.Validate(); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
	}

	items, err := s.cart.GetCart(ctx, identity)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	totals, err := s.cart.Totals(ctx, identity, input.CouponCode)
	if err != nil {
		return nil, err
	}

	orderItems, err := buildOrderItems(items)
	if err != nil {
		return nil, err
	}
	if err := reconcileTotals(orderItems, totals); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &models.Order{
		OrderNumber:         generateOrderNumber(now),
		UserID:              identity.UserID,
		CustomerEmail:       email,
		CustomerName:        name,
		CustomerPhone:       input.CustomerPhone,
		CustomerNationality: input.CustomerNationality,
		ShippingAddress:     input.ShippingAddress,
		BillingAddress:      input.BillingAddress,
		SubtotalUSD:         totals.SubtotalUSD,
		DiscountUSD:         totals.DiscountUSD,
		ShippingUSD:         totals.ShippingUSD,
		TaxUSD:              totals.TaxUSD,
		TotalUSD:            totals.TotalUSD,
		CurrencyPaid:        enums.CurrencyUSD,
		Status:              enums.OrderStatusPending,
		PaymentStatus:       enums.PaymentStatusPending,
		Items:               orderItems,
	}
	if totals.Coupon != nil {
		order.CouponID = &totals.Coupon.ID
		code := totals.Coupon.Code
		order.CouponCode = &code
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}
		if totals.Coupon != nil {
			ok, err := s.couponRepo.WithTx(tx).IncrementUsage(ctx, totals.Coupon.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume coupon")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeValidation, "coupon usage limit reached")
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	s.metrics.IncOrdersCreated()

	result := &CreateOrderResult{Order: order}
	if isNigerian(input.CustomerNationality) {
		if err := s.initializePayment(ctx, order, input.CallbackURL, result); err != nil {
			return nil, err
		}
	} else {
		// No gateway leg, so the cart is released immediately.
		if err := s.cart.Clear(ctx, identity); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("clear cart after order %s: %v", order.OrderNumber, err))
		}
	}
	return result, nil
}

func (s *service) initializePayment(ctx context.Context, order *models.Order, callbackURL string, result *CreateOrderResult) error {
	rate := s.rates.USDToNGN(ctx)
	totalNGN := order.TotalUSD.Mul(rate).Round(2)
	reference := generatePaymentReference(s.now().UTC())

	init, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       order.CustomerEmail,
		AmountNGN:   totalNGN,
		Reference:   reference,
		CallbackURL: callbackURL,
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initialize payment")
	}

	updates := map[string]any{
		"exchange_rate":     rate,
		"total_ngn":         totalNGN,
		"currency_paid":     enums.CurrencyNGN,
		"payment_reference": reference,
	}
	if err := s.orderRepo.UpdateFields(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment reference")
	}
	order.ExchangeRate = &rate
	order.TotalNGN = &totalNGN
	order.CurrencyPaid = enums.CurrencyNGN
	order.PaymentReference = &reference

	result.AuthorizationURL = init.AuthorizationURL
	result.PaymentReference = &reference
	return nil
}

// ConfirmPayment verifies the charge and then walks the post-payment
// sequence, skipping steps a previous invocation already finished. A step
// failure is recorded and stops the walk without hiding the order.
func (s *service) ConfirmPayment(ctx context.Context, identity *cart.Identity, orderID uuid.UUID, reference string) (*ConfirmResult, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.PaymentReference == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order does not await payment confirmation")
	}

	reference = strings.TrimSpace(reference)
	if reference == "" {
		reference = *order.PaymentReference
	}
	if reference != *order.PaymentReference {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reference does not match this order")
	}

	verification, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment")
	}
	if !verification.Succeeded() {
		// The order stays pending/pending; the customer can retry.
		return nil, pkgerrors.New(pkgerrors.CodePayment,
			fmt.Sprintf("payment was not successful (status %s)", verification.Status))
	}

	recorded, err := s.repo.ListSteps(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load checkout steps")
	}

	result := &ConfirmResult{OrderID: orderID, Reference: reference, Completed: true}
	for _, step := range enums.CheckoutStepOrder {
		if recorded[step].Status == enums.CheckoutStepStatusDone {
			continue
		}

		start := s.now()
		stepErr := s.runStep(ctx, step, order, verification, identity)
		s.metrics.ObserveStepDuration(step.String(), s.now().Sub(start))

		if stepErr != nil {
			s.metrics.IncStepFailure(step.String())
			detail := stepErr.Error()
			if err := s.repo.UpsertStep(ctx, orderID, step, enums.CheckoutStepStatusFailed, &detail); err != nil {
				s.logg.Error(ctx, fmt.Sprintf("record failed step %s", step), err)
			}
			s.logg.Error(ctx, fmt.Sprintf("checkout step %s for order %s", step, order.OrderNumber), stepErr)

			failed := step
			result.Completed = false
			result.FailedStep = &failed
			return result, nil
		}

		s.metrics.IncStepSuccess(step.String())
		if err := s.repo.UpsertStep(ctx, orderID, step, enums.CheckoutStepStatusDone, nil); err != nil {
			s.logg.Error(ctx, fmt.Sprintf("record step %s", step), err)
		}
	}
	return result, nil
}

func (s *service) runStep(ctx context.Context, step enums.CheckoutStep, order *models.Order, verification *paystack.VerifyResult, identity *cart.Identity) error {
	switch step {
	case enums.CheckoutStepMarkPaid:
		return s.markPaid(ctx, order, verification)
	case enums.CheckoutStepRecordTransaction:
		return s.recordTransaction(ctx, order, verification)
	case enums.CheckoutStepSendConfirmation:
		return s.publisher.PublishOrderEmail(ctx, enums.EmailTypeOrderConfirmation, order.ID)
	case enums.CheckoutStepDecrementInventory:
		return s.decrementInventory(ctx, order)
	case enums.CheckoutStepClearCart:
		return s.clearCart(ctx, order, identity)
	default:
		return fmt.Errorf("unknown checkout step %q", step)
	}
}

func (s *service) markPaid(ctx context.Context, order *models.Order, verification *paystack.VerifyResult) error {
	paidAt := s.now().UTC()
	if verification.PaidAt != nil {
		paidAt = *verification.PaidAt
	}
	updates := map[string]any{
		"payment_status": enums.PaymentStatusPaid,
		"paid_at":        paidAt,
	}
	if order.Status == enums.OrderStatusPending {
		updates["status"] = enums.OrderStatusProcessing
	}
	if err := s.orderRepo.UpdateFields(ctx, order.ID, updates); err != nil {
		return err
	}
	order.PaymentStatus = enums.PaymentStatusPaid
	order.PaidAt = &paidAt
	if order.Status == enums.OrderStatusPending {
		order.Status = enums.OrderStatusProcessing
	}
	return nil
}

func (s *service) recordTransaction(ctx context.Context, order *models.Order, verification *paystack.VerifyResult) error {
	txn := &models.PaymentTransaction{
		OrderID:         order.ID,
		Reference:       *order.PaymentReference,
		AmountUSD:       order.TotalUSD,
		ExchangeRate:    order.ExchangeRate,
		Status:          verification.Status,
		CustomerEmail:   order.CustomerEmail,
		PaidAt:          verification.PaidAt,
		GatewayResponse: verification.Raw,
	}
	amountNGN := verification.AmountNGN
	txn.AmountNGN = &amountNGN
	if verification.Channel != "" {
		channel := verification.Channel
		txn.PaymentChannel = &channel
	}
	if verification.CustomerEmail != "" {
		txn.CustomerEmail = verification.CustomerEmail
	}

	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		// A resumed run may race a previous insert of the same reference.
		if db.IsUniqueViolation(err, "payment_transactions_reference_key") {
			return nil
		}
		return err
	}
	return nil
}

func (s *service) decrementInventory(ctx context.Context, order *models.Order) error {
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		ok, err := s.repo.DecrementLineInventory(ctx, item)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("insufficient stock for %q", item.ProductName)
		}
	}
	return nil
}

func (s *service) clearCart(ctx context.Context, order *models.Order, identity *cart.Identity) error {
	if identity == nil {
		if order.UserID == nil {
			// Guest confirmed without a session header; their client
			// clears local storage on its own.
			return nil
		}
		id := cart.UserIdentity(*order.UserID)
		identity = &id
	}
	return s.cart.Clear(ctx, *identity)
}

func buildOrderItems(items []models.CartItem) ([]models.OrderItem, error) {
	rows := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.Product == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart line missing product data")
		}
		price := item.Product.EffectivePrice(item.Variant)
		productID := item.ProductID
		sku := item.Product.SKU
		row := models.OrderItem{
			ProductID:   &productID,
			VariantID:   item.VariantID,
			ProductName: item.Product.Name,
			ProductSKU:  &sku,
			PriceUSD:    price,
			Quantity:    item.Quantity,
			SubtotalUSD: price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		if item.Variant != nil {
			row.VariantSize = item.Variant.Size
			row.VariantColor = item.Variant.Color
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// reconcileTotals guards the snapshot: line subtotals must add up to the
// priced subtotal, and the stored total must equal
// subtotal - discount + shipping + tax.
func reconcileTotals(items []models.OrderItem, totals *cart.Totals) error {
	lineSum := decimal.Zero
	for _, item := range items {
		lineSum = lineSum.Add(item.SubtotalUSD)
	}
	if !lineSum.Equal(totals.SubtotalUSD) {
		return pkgerrors.New(pkgerrors.CodeInternal, "cart totals do not reconcile")
	}
	expected := totals.SubtotalUSD.Sub(totals.DiscountUSD).Add(totals.ShippingUSD).Add(totals.TaxUSD)
	if !expected.Equal(totals.TotalUSD) {
		return pkgerrors.New(pkgerrors.CodeInternal, "cart totals do not reconcile")
	}
	return nil
}

func isNigerian(nationality *string) bool {
	if nationality == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*nationality)) {
	case "ng", "nga", "nigeria", "nigerian":
		return true
	default:
		return false
	}
}

const referenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a uuid-derived suffix; this path has no entropy
		// requirement beyond uniqueness.
		return strings.ToUpper(uuid.NewString()[:n])
	}
	for i, b := range buf {
		buf[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return string(buf)
}

func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("SXO6-%s-%s", now.Format("20060102"), randomSuffix(6))
}

func generatePaymentReference(now time.Time) string {
	return fmt.Sprintf("SXO6-%d-%s", now.Unix(), randomSuffix(8))
}
