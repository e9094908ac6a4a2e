package addresses

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	"github.com/sxo6luxe/sxo6-backend/pkg/enums"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
)

// Service manages a user's saved address book.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.Address, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.Address, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

// AddressInput is the payload for creating or updating an address.
type AddressInput struct {
	AddressType  enums.AddressType
	FullName     string
	Phone        *string
	AddressLine1 string
	AddressLine2 *string
	City         string
	State        *string
	PostalCode   *string
	Country      string
	IsDefault    bool
}

func (in AddressInput) validate() error {
	if !in.AddressType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "address_type must be shipping or billing")
	}
	if strings.TrimSpace(in.FullName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "full_name is required")
	}
	if strings.TrimSpace(in.AddressLine1) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address_line1 is required")
	}
	if strings.TrimSpace(in.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	if strings.TrimSpace(in.Country) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "country is required")
	}
	return nil
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	dbClient txRunner
}

// NewService constructs an address service instance.
func NewService(repo *Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "a signed-in user is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	return rows, nil
}

// Create saves a new address. Marking it default demotes the previous
// default of the same type inside one transaction.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "a signed-in user is required")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	address := addressFromInput(userID, input)
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if input.IsDefault {
			if err := txRepo.ClearDefault(ctx, userID, input.AddressType); err != nil {
				return err
			}
		}
		return txRepo.Create(ctx, address)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert address")
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.Address, error) {
	address, err := s.requireOwned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	applyInput(address, input)
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if input.IsDefault {
			if err := txRepo.ClearDefault(ctx, userID, input.AddressType); err != nil {
				return err
			}
		}
		return txRepo.Update(ctx, address)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}
	return address, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.requireOwned(ctx, userID, addressID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	return nil
}

func (s *service) requireOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "a signed-in user is required")
	}
	address, err := s.repo.FindByID(ctx, addressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	if address == nil || address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return address, nil
}

func addressFromInput(userID uuid.UUID, input AddressInput) *models.Address {
	return &models.Address{
		UserID:       userID,
		AddressType:  input.AddressType,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        input.Phone,
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: input.AddressLine2,
		City:         strings.TrimSpace(input.City),
		State:        input.State,
		PostalCode:   input.PostalCode,
		Country:      strings.TrimSpace(input.Country),
		IsDefault:    input.IsDefault,
	}
}

func applyInput(address *models.Address, input AddressInput) {
	address.AddressType = input.AddressType
	address.FullName = strings.TrimSpace(input.FullName)
	address.Phone = input.Phone
	address.AddressLine1 = strings.TrimSpace(input.AddressLine1)
	address.AddressLine2 = input.AddressLine2
	address.City = strings.TrimSpace(input.City)
	address.State = input.State
	address.PostalCode = input.PostalCode
	address.Country = strings.TrimSpace(input.Country)
	address.IsDefault = input.IsDefault
}
