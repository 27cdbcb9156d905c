package service

import (
	"context"
	"database/sql"
	"strings"

	"go.uber.org/zap"

	accountservice "storefront/internal/account/service"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type CustomerRepository interface {
	Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
	Create(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error)
	Update(ctx context.Context, c domain.Customer) error
}

type AccountProvisioner interface {
	ProvisionAccount(ctx context.Context, creds accountservice.Credentials, t domain.AccountType, createProfile accountservice.ProfileCreator) (int64, int64, error)
	SetActive(ctx context.Context, accountID int64, active bool) error
}

type CustomerService struct {
	customers CustomerRepository
	accounts  AccountProvisioner
	logger    *zap.Logger
}

func NewCustomerService(customers CustomerRepository, accounts AccountProvisioner, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customers: customers,
		accounts:  accounts,
		logger:    logger,
	}
}

func (s *CustomerService) Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error) {
	return s.customers.Search(ctx, query, limit, offset)
}

func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	return s.customers.FindByID(ctx, id)
}

func requireName(c domain.Customer) error {
	if strings.TrimSpace(c.FullName) == "" {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "fullName", Message: "fullName is required"})
	}
	return nil
}

// Create provisions the login account and the customer profile together.
func (s *CustomerService) Create(ctx context.Context, creds accountservice.Credentials, c domain.Customer) (*domain.Customer, error) {
	if err := requireName(c); err != nil {
		return nil, err
	}

	_, customerID, err := s.accounts.ProvisionAccount(ctx, creds, domain.AccountTypeCustomer,
		func(ctx context.Context, tx *sql.Tx, accountID int64) (int64, error) {
			c.AccountID = accountID
			return s.customers.Create(ctx, tx, c)
		})
	if err != nil {
		return nil, err
	}
	return s.customers.FindByID(ctx, customerID)
}

// Update rewrites the profile fields. The login account is untouched.
func (s *CustomerService) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	if err := requireName(c); err != nil {
		return nil, err
	}
	if err := s.customers.Update(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("customer updated", zap.Int64("customerId", c.ID))
	return s.customers.FindByID(ctx, c.ID)
}

func (s *CustomerService) Deactivate(ctx context.Context, id int64) error {
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return s.accounts.SetActive(ctx, c.AccountID, false)
}
