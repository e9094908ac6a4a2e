package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/pagination"
)

// Service exposes customer and admin order operations.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	Lookup(ctx context.Context, orderNumber, email string) (*models.Order, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)

	AdminList(ctx context.Context, params pagination.Params, filters AdminFilters) (*ListResult, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error)
	UpdateTracking(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*models.Order, error)
}

type emailPublisher interface {
	PublishOrderEmail(ctx context.Context, emailType enums.EmailType, orderID uuid.UUID) error
}

type orderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAdmin(ctx context.Context, params pagination.Params, filters AdminFilters) (*ListResult, error)
	Stats(ctx context.Context) (*AdminStats, error)
	Update(ctx context.Context, order *models.Order) error
}

type service struct {
	repo      orderRepository
	publisher emailPublisher
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs an order service instance.
func NewService(repo orderRepository, publisher emailPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("email publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, publisher: publisher, logg: logg, now: time.Now}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "a signed-in user is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "a signed-in user is required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	// A foreign order reads as missing so ids cannot be enumerated.
	if order == nil || order.UserID == nil || *order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// Lookup serves guests who kept their order number and email.
func (s *service) Lookup(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	if strings.TrimSpace(orderNumber) == "" || strings.TrimSpace(email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and email are required")
	}
	order, err := s.repo.FindByNumberAndEmail(ctx, orderNumber, email)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// Cancel lets a customer back out of an order that has not started
// fulfillment.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only pending orders can be cancelled")
	}

	order.Status = enums.OrderStatusCancelled
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	s.publishEmail(ctx, enums.EmailTypeOrderCancelled, order.ID)
	return order, nil
}

func (s *service) AdminList(ctx context.Context, params pagination.Params, filters AdminFilters) (*ListResult, error) {
	result, err := s.repo.ListAdmin(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return result, nil
}

func (s *service) AdminStats(ctx context.Context) (*AdminStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order stats")
	}
	return stats, nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// UpdateStatus moves the order along the fulfillment lifecycle. Timestamps
// are stamped only on the first entry into a status, and each transition
// publishes its customer email as a best effort.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*models.Order, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	order, err := s.AdminGet(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivered orders can only have tracking updated")
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, target))
	}

	s.applyStatus(order, target)
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if emailType, ok := emailTypeForStatus(target); ok {
		s.publishEmail(ctx, emailType, order.ID)
	}
	return order, nil
}

// UpdateTracking records the tracking number. Orders not yet shipped are
// moved to shipped at the same time; delivered orders accept only the
// tracking change.
func (s *service) UpdateTracking(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*models.Order, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking_number is required")
	}
	order, err := s.AdminGet(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.TrackingNumber = &trackingNumber
	shippedNow := false
	if order.Status != enums.OrderStatusDelivered && order.Status != enums.OrderStatusShipped {
		if !order.Status.CanTransitionTo(enums.OrderStatusShipped) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cannot mark a %s order shipped", order.Status))
		}
		s.applyStatus(order, enums.OrderStatusShipped)
		shippedNow = true
	}

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tracking")
	}
	if shippedNow {
		s.publishEmail(ctx, enums.EmailTypeOrderShipped, order.ID)
	}
	return order, nil
}

func (s *service) applyStatus(order *models.Order, target enums.OrderStatus) {
	order.Status = target
	now := s.now().UTC()
	switch target {
	case enums.OrderStatusShipped:
		if order.ShippedAt == nil {
			order.ShippedAt = &now
		}
	case enums.OrderStatusDelivered:
		if order.DeliveredAt == nil {
			order.DeliveredAt = &now
		}
	}
}

func (s *service) publishEmail(ctx context.Context, emailType enums.EmailType, orderID uuid.UUID) {
	if err := s.publisher.PublishOrderEmail(ctx, emailType, orderID); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("publish %s email for order %s: %v", emailType, orderID, err))
	}
}

func emailTypeForStatus(status enums.OrderStatus) (enums.EmailType, bool) {
	switch status {
	case enums.OrderStatusShipped:
		return enums.EmailTypeOrderShipped, true
	case enums.OrderStatusDelivered:
		return enums.EmailTypeOrderDelivered, true
	case enums.OrderStatusCancelled:
		return enums.EmailTypeOrderCancelled, true
	default:
		return "", false
	}
}
