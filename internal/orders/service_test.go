package orders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/logger"
	"github.com/sxo6luxe/sxo6-backend/pkg/pagination"
)

var fixedNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *stubOrderRepo, publisher *stubPublisher) *service {
	t.Helper()
	if publisher == nil {
		publisher = &stubPublisher{}
	}
	svc, err := NewService(repo, publisher, logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	typed := svc.(*service)
	typed.now = func() time.Time { return fixedNow }
	return typed
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: &owner, Status: enums.OrderStatusPending}
	repo := newStubOrderRepo(order)
	svc := newTestService(t, repo, nil)

	if _, err := svc.GetForUser(context.Background(), owner, order.ID); err != nil {
		t.Fatalf("owner should see order: %v", err)
	}
	_, err := svc.GetForUser(context.Background(), stranger, order.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("foreign order must read as missing, got %v", err)
	}
}

func TestCancelOnlyPending(t *testing.T) {
	owner := uuid.New()
	pending := &models.Order{ID: uuid.New(), UserID: &owner, Status: enums.OrderStatusPending}
	shipped := &models.Order{ID: uuid.New(), UserID: &owner, Status: enums.OrderStatusShipped}
	repo := newStubOrderRepo(pending, shipped)
	publisher := &stubPublisher{}
	svc := newTestService(t, repo, publisher)

	cancelled, err := svc.Cancel(context.Background(), owner, pending.ID)
	if err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if len(publisher.published) != 1 || publisher.published[0] != enums.EmailTypeOrderCancelled {
		t.Fatalf("expected one cancelled email event, got %v", publisher.published)
	}

	_, err = svc.Cancel(context.Background(), owner, shipped.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("shipped order must not cancel, got %v", err)
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	repo := newStubOrderRepo(order)
	publisher := &stubPublisher{}
	svc := newTestService(t, repo, publisher)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("pending to shipped must be rejected, got %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("pending to processing: %v", err)
	}
	if updated.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", updated.Status)
	}
	if len(publisher.published) != 0 {
		t.Fatalf("processing should not publish an email, got %v", publisher.published)
	}

	updated, err = svc.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("processing to shipped: %v", err)
	}
	if updated.ShippedAt == nil || !updated.ShippedAt.Equal(fixedNow) {
		t.Fatalf("expected shipped_at %s, got %v", fixedNow, updated.ShippedAt)
	}
	if len(publisher.published) != 1 || publisher.published[0] != enums.EmailTypeOrderShipped {
		t.Fatalf("expected shipped email event, got %v", publisher.published)
	}
}

func TestUpdateStatusStampsOnlyFirstEntry(t *testing.T) {
	earlier := fixedNow.Add(-48 * time.Hour)
	order := &models.Order{
		ID:        uuid.New(),
		Status:    enums.OrderStatusProcessing,
		ShippedAt: &earlier,
	}
	repo := newStubOrderRepo(order)
	svc := newTestService(t, repo, nil)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if !updated.ShippedAt.Equal(earlier) {
		t.Fatalf("shipped_at must keep its first value, got %v", updated.ShippedAt)
	}
}

func TestDeliveredOrdersAreImmutable(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusDelivered}
	repo := newStubOrderRepo(order)
	svc := newTestService(t, repo, nil)

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusRefunded)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("delivered order must reject status changes, got %v", err)
	}

	updated, err := svc.UpdateTracking(context.Background(), order.ID, "NG-TRACK-99")
	if err != nil {
		t.Fatalf("delivered order should accept tracking: %v", err)
	}
	if updated.TrackingNumber == nil || *updated.TrackingNumber != "NG-TRACK-99" {
		t.Fatalf("expected tracking to be stored, got %v", updated.TrackingNumber)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("status must stay delivered, got %s", updated.Status)
	}
}

func TestUpdateTrackingMarksShipped(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusProcessing}
	repo := newStubOrderRepo(order)
	publisher := &stubPublisher{}
	svc := newTestService(t, repo, publisher)

	updated, err := svc.UpdateTracking(context.Background(), order.ID, "NG-TRACK-1")
	if err != nil {
		t.Fatalf("update tracking: %v", err)
	}
	if updated.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}
	if updated.ShippedAt == nil {
		t.Fatal("expected shipped_at stamp")
	}
	if len(publisher.published) != 1 || publisher.published[0] != enums.EmailTypeOrderShipped {
		t.Fatalf("expected shipped email event, got %v", publisher.published)
	}
}

func TestPublishFailureDoesNotFailTransition(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusShipped}
	repo := newStubOrderRepo(order)
	publisher := &stubPublisher{err: errors.New("broker down")}
	svc := newTestService(t, repo, publisher)

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("transition must survive publish failure: %v", err)
	}
	if updated.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", updated.Status)
	}
}

func TestLookupRequiresBothFields(t *testing.T) {
	svc := newTestService(t, newStubOrderRepo(), nil)

	_, err := svc.Lookup(context.Background(), "SXO6-1", "")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

type stubOrderRepo struct {
	byID map[uuid.UUID]*models.Order
}

func newStubOrderRepo(rows ...*models.Order) *stubOrderRepo {
	repo := &stubOrderRepo{byID: make(map[uuid.UUID]*models.Order)}
	for _, row := range rows {
		repo.byID[row.ID] = row
	}
	return repo
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.byID[id], nil
}

func (s *stubOrderRepo) FindByNumberAndEmail(ctx context.Context, orderNumber, email string) (*models.Order, error) {
	for _, row := range s.byID {
		if row.OrderNumber == orderNumber && row.CustomerEmail == email {
			return row, nil
		}
	}
	return nil, nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	for _, row := range s.byID {
		if row.UserID != nil && *row.UserID == userID {
			rows = append(rows, *row)
		}
	}
	return rows, nil
}

func (s *stubOrderRepo) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{TotalOrders: int64(len(s.byID))}
	for _, row := range s.byID {
		if row.Status == enums.OrderStatusPending || row.Status == enums.OrderStatusProcessing {
			stats.PendingOrders++
		}
		stats.TotalRevenueUSD = stats.TotalRevenueUSD.Add(row.TotalUSD)
	}
	return stats, nil
}

func (s *stubOrderRepo) ListAdmin(ctx context.Context, params pagination.Params, filters AdminFilters) (*ListResult, error) {
	var rows []models.Order
	for _, row := range s.byID {
		rows = append(rows, *row)
	}
	return &ListResult{Orders: rows}, nil
}

func (s *stubOrderRepo) Update(ctx context.Context, order *models.Order) error {
	s.byID[order.ID] = order
	return nil
}

type stubPublisher struct {
	published []enums.EmailType
	err       error
}

func (s *stubPublisher) PublishOrderEmail(ctx context.Context, emailType enums.EmailType, orderID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, emailType)
	return nil
}
