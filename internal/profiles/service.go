package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sxo6luxe/sxo6-backend/internal/orders"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the profile service.
type ServiceParams struct {
	Repo       Repository
	OrderStats orderStatsSource
}

// Service exposes profile reads and updates plus the admin customer views.
type Service struct {
	repo       Repository
	orderStats orderStatsSource
}

type orderStatsSource interface {
	StatsByUser(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]orders.UserOrderStats, error)
}

// CustomerSummary pairs a customer profile with their order activity.
type CustomerSummary struct {
	models.Profile
	OrderCount    int64           `json:"order_count"`
	TotalSpentUSD decimal.Decimal `json:"total_spent_usd"`
}

// CustomerListResult is one page of the admin customer listing.
type CustomerListResult struct {
	Customers  []CustomerSummary `json:"customers"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	FullName    *string
	Phone       *string
	Nationality *string
}

// NewService builds a profile service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.OrderStats == nil {
		return nil, errors.New("order stats source is required")
	}
	return &Service{repo: params.Repo, orderStats: params.OrderStats}, nil
}

// Get returns the profile for the given user.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	profile, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}
	return profile, nil
}

// Update applies the editable fields and returns the fresh profile.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*models.Profile, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	updates := map[string]any{}
	if input.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil {
		updates["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Nationality != nil {
		updates["nationality"] = strings.TrimSpace(*input.Nationality)
	}
	if len(updates) == 0 {
		return s.Get(ctx, userID)
	}

	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}
	return s.Get(ctx, userID)
}

// AdminListCustomers pages through customer accounts with their order
// counts and lifetime spend attached.
func (s *Service) AdminListCustomers(ctx context.Context, params pagination.Params, search string) (*CustomerListResult, error) {
	rows, next, err := s.repo.ListCustomers(ctx, params, search)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, profile := range rows {
		ids = append(ids, profile.ID)
	}
	stats, err := s.orderStats.StatsByUser(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order activity")
	}

	result := &CustomerListResult{
		Customers:  make([]CustomerSummary, 0, len(rows)),
		NextCursor: next,
	}
	for _, profile := range rows {
		summary := CustomerSummary{Profile: profile, TotalSpentUSD: decimal.Zero}
		if activity, ok := stats[profile.ID]; ok {
			summary.OrderCount = activity.OrderCount
			summary.TotalSpentUSD = activity.TotalSpentUSD
		}
		result.Customers = append(result.Customers, summary)
	}
	return result, nil
}

// CountCustomers reports how many customer accounts exist.
func (s *Service) CountCustomers(ctx context.Context) (int64, error) {
	count, err := s.repo.CountCustomers(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count customers")
	}
	return count, nil
}
