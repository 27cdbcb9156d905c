package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	accountservice "storefront/internal/account/service"
	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type mockCustomerRepository struct {
	SearchFunc   func(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error)
	FindByIDFunc func(ctx context.Context, id int64) (*domain.Customer, error)
	CreateFunc   func(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error)
	UpdateFunc   func(ctx context.Context, c domain.Customer) error
}

func (m *mockCustomerRepository) Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error) {
	return m.SearchFunc(ctx, query, limit, offset)
}

func (m *mockCustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockCustomerRepository) Create(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error) {
	return m.CreateFunc(ctx, tx, c)
}

func (m *mockCustomerRepository) Update(ctx context.Context, c domain.Customer) error {
	return m.UpdateFunc(ctx, c)
}

type mockAccountProvisioner struct {
	ProvisionAccountFunc func(ctx context.Context, creds accountservice.Credentials, t domain.AccountType, createProfile accountservice.ProfileCreator) (int64, int64, error)
	SetActiveFunc        func(ctx context.Context, accountID int64, active bool) error
}

func (m *mockAccountProvisioner) ProvisionAccount(ctx context.Context, creds accountservice.Credentials, t domain.AccountType, createProfile accountservice.ProfileCreator) (int64, int64, error) {
	return m.ProvisionAccountFunc(ctx, creds, t, createProfile)
}

func (m *mockAccountProvisioner) SetActive(ctx context.Context, accountID int64, active bool) error {
	return m.SetActiveFunc(ctx, accountID, active)
}

func TestCreate_ProvisionsCustomerAccount(t *testing.T) {
	customers := &mockCustomerRepository{
		CreateFunc: func(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error) {
			assert.Equal(t, int64(40), c.AccountID)
			return 6, nil
		},
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Customer, error) {
			return &domain.Customer{ID: id, AccountID: 40, FullName: "Dee"}, nil
		},
	}
	accounts := &mockAccountProvisioner{
		ProvisionAccountFunc: func(ctx context.Context, creds accountservice.Credentials, at domain.AccountType, createProfile accountservice.ProfileCreator) (int64, int64, error) {
			assert.Equal(t, domain.AccountTypeCustomer, at)
			profileID, err := createProfile(ctx, nil, 40)
			return 40, profileID, err
		},
	}
	svc := NewCustomerService(customers, accounts, zap.NewNop())

	c, err := svc.Create(context.Background(), accountservice.Credentials{Username: "dee", Password: "secret1"}, domain.Customer{FullName: "Dee"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), c.ID)
}

func TestCreate_RequiresName(t *testing.T) {
	svc := NewCustomerService(&mockCustomerRepository{}, &mockAccountProvisioner{}, zap.NewNop())

	_, err := svc.Create(context.Background(), accountservice.Credentials{Username: "dee", Password: "secret1"}, domain.Customer{})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestDeactivate_DisablesOwningAccount(t *testing.T) {
	customers := &mockCustomerRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Customer, error) {
			return &domain.Customer{ID: id, AccountID: 91}, nil
		},
	}
	var gotAccount int64
	accounts := &mockAccountProvisioner{
		SetActiveFunc: func(ctx context.Context, accountID int64, active bool) error {
			assert.False(t, active)
			gotAccount = accountID
			return nil
		},
	}
	svc := NewCustomerService(customers, accounts, zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), 3))
	assert.Equal(t, int64(91), gotAccount)
}

func TestUpdate_NotFound(t *testing.T) {
	customers := &mockCustomerRepository{
		UpdateFunc: func(ctx context.Context, c domain.Customer) error {
			return apperrors.NewNotFoundError("customer 3 not found")
		},
	}
	svc := NewCustomerService(customers, &mockAccountProvisioner{}, zap.NewNop())

	_, err := svc.Update(context.Background(), domain.Customer{ID: 3, FullName: "Dee"})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
