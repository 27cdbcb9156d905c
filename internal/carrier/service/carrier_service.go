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

type CarrierRepository interface {
	List(ctx context.Context, assignableOnly bool) ([]domain.Carrier, error)
	FindByID(ctx context.Context, id int64) (*domain.Carrier, error)
	Create(ctx context.Context, tx *sql.Tx, c domain.Carrier) (int64, error)
	Update(ctx context.Context, c domain.Carrier) error
	SetAvailability(ctx context.Context, id int64, available bool) error
}

type AccountProvisioner interface {
	ProvisionAccount(ctx context.Context, creds accountservice.Credentials, t domain.AccountType, createProfile accountservice.ProfileCreator) (int64, int64, error)
	SetActive(ctx context.Context, accountID int64, active bool) error
}

type CarrierService struct {
	carriers CarrierRepository
	accounts AccountProvisioner
	logger   *zap.Logger
}

func NewCarrierService(carriers CarrierRepository, accounts AccountProvisioner, logger *zap.Logger) *CarrierService {
	return &CarrierService{
		carriers: carriers,
		accounts: accounts,
		logger:   logger,
	}
}

func (s *CarrierService) List(ctx context.Context) ([]domain.Carrier, error) {
	return s.carriers.List(ctx, false)
}

// ListAvailable returns carriers that are available and whose account is active.
func (s *CarrierService) ListAvailable(ctx context.Context) ([]domain.Carrier, error) {
	return s.carriers.List(ctx, true)
}

func (s *CarrierService) Get(ctx context.Context, id int64) (*domain.Carrier, error) {
	return s.carriers.FindByID(ctx, id)
}

func requireName(c domain.Carrier) error {
	if strings.TrimSpace(c.FullName) == "" {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "fullName", Message: "fullName is required"})
	}
	return nil
}

// Create inserts the carrier's account and profile in a single transaction.
func (s *CarrierService) Create(ctx context.Context, creds accountservice.Credentials, c domain.Carrier) (*domain.Carrier, error) {
	if err := requireName(c); err != nil {
		return nil, err
	}

	_, carrierID, err := s.accounts.ProvisionAccount(ctx, creds, domain.AccountTypeCarrier,
		func(ctx context.Context, tx *sql.Tx, accountID int64) (int64, error) {
			c.AccountID = accountID
			return s.carriers.Create(ctx, tx, c)
		})
	if err != nil {
		return nil, err
	}

	s.logger.Info("carrier created", zap.Int64("carrierId", carrierID))
	return s.carriers.FindByID(ctx, carrierID)
}

func (s *CarrierService) Update(ctx context.Context, c domain.Carrier) (*domain.Carrier, error) {
	if err := requireName(c); err != nil {
		return nil, err
	}
	if err := s.carriers.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.carriers.FindByID(ctx, c.ID)
}

// SetAvailability toggles whether the carrier accepts new orders. A carrier
// whose account is disabled cannot become available.
func (s *CarrierService) SetAvailability(ctx context.Context, id int64, available bool) error {
	c, err := s.carriers.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if available && !c.AccountActive {
		return apperrors.NewConflictErrorWithReason(domain.CarrierInactive, "carrier account is disabled")
	}
	if err := s.carriers.SetAvailability(ctx, id, available); err != nil {
		return err
	}

	s.logger.Info("carrier availability changed", zap.Int64("carrierId", id), zap.Bool("available", available))
	return nil
}

// Deactivate disables the carrier's account and takes it off the roster.
func (s *CarrierService) Deactivate(ctx context.Context, id int64) error {
	c, err := s.carriers.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.carriers.SetAvailability(ctx, id, false); err != nil {
		return err
	}
	return s.accounts.SetActive(ctx, c.AccountID, false)
}
