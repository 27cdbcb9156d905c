package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/auth"
)

type mockAccountRepository struct {
	FindByUsernameFunc func(ctx context.Context, username string) (*domain.Account, error)
	FindByIDFunc       func(ctx context.Context, id int64) (*domain.Account, error)
	CreateFunc         func(ctx context.Context, tx *sql.Tx, a domain.Account) (int64, error)
	UpdatePasswordFunc func(ctx context.Context, id int64, hash string) error
	SetActiveFunc      func(ctx context.Context, id int64, active bool) error
	FindProfileIDFunc  func(ctx context.Context, accountID int64, t domain.AccountType) (int64, error)
}

func (m *mockAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return m.FindByUsernameFunc(ctx, username)
}

func (m *mockAccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockAccountRepository) Create(ctx context.Context, tx *sql.Tx, a domain.Account) (int64, error) {
	return m.CreateFunc(ctx, tx, a)
}

func (m *mockAccountRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return m.UpdatePasswordFunc(ctx, id, hash)
}

func (m *mockAccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return m.SetActiveFunc(ctx, id, active)
}

func (m *mockAccountRepository) FindProfileID(ctx context.Context, accountID int64, t domain.AccountType) (int64, error) {
	return m.FindProfileIDFunc(ctx, accountID, t)
}

type mockAdminRepository struct {
	ListFunc     func(ctx context.Context) ([]domain.Admin, error)
	FindByIDFunc func(ctx context.Context, id int64) (*domain.Admin, error)
	CreateFunc   func(ctx context.Context, tx *sql.Tx, ad domain.Admin) (int64, error)
	UpdateFunc   func(ctx context.Context, ad domain.Admin) error
}

func (m *mockAdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	return m.ListFunc(ctx)
}

func (m *mockAdminRepository) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockAdminRepository) Create(ctx context.Context, tx *sql.Tx, ad domain.Admin) (int64, error) {
	return m.CreateFunc(ctx, tx, ad)
}

func (m *mockAdminRepository) Update(ctx context.Context, ad domain.Admin) error {
	return m.UpdateFunc(ctx, ad)
}

type mockCustomerWriter struct {
	CreateFunc func(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error)
}

func (m *mockCustomerWriter) Create(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error) {
	return m.CreateFunc(ctx, tx, c)
}

type mockTokenIssuer struct {
	IssueFunc func(accountID int64, accountType domain.AccountType, profileID int64) (string, time.Time, error)
}

func (m *mockTokenIssuer) Issue(accountID int64, accountType domain.AccountType, profileID int64) (string, time.Time, error) {
	return m.IssueFunc(accountID, accountType, profileID)
}

func fixedIssuer() *mockTokenIssuer {
	return &mockTokenIssuer{
		IssueFunc: func(accountID int64, accountType domain.AccountType, profileID int64) (string, time.Time, error) {
			return "signed-token", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), nil
		},
	}
}

func newTestAccountService(t *testing.T, accounts AccountRepository, admins AdminRepository, customers CustomerWriter) (*AccountService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAccountService(db, accounts, admins, customers, fixedIssuer(), zap.NewNop()), mock
}

func hashed(t *testing.T, plain string) string {
	t.Helper()
	h, err := auth.HashPassword(plain)
	require.NoError(t, err)
	return h
}

func TestLogin_Success(t *testing.T) {
	accounts := &mockAccountRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Account, error) {
			assert.Equal(t, "alice", username)
			return &domain.Account{ID: 4, Username: username, PasswordHash: hashed(t, "s3cret!"), Type: domain.AccountTypeCustomer, IsActive: true}, nil
		},
		FindProfileIDFunc: func(ctx context.Context, accountID int64, at domain.AccountType) (int64, error) {
			return 21, nil
		},
	}
	svc, _ := newTestAccountService(t, accounts, &mockAdminRepository{}, &mockCustomerWriter{})

	session, err := svc.Login(context.Background(), " alice ", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", session.Token)
	assert.Equal(t, int64(21), session.ProfileID)
	assert.Equal(t, domain.AccountTypeCustomer, session.AccountType)
}

func TestLogin_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	accounts := &mockAccountRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Account, error) {
			if username == "ghost" {
				return nil, apperrors.NewNotFoundError("account not found")
			}
			return &domain.Account{ID: 1, PasswordHash: hashed(t, "right-one"), Type: domain.AccountTypeAdmin, IsActive: true}, nil
		},
	}
	svc, _ := newTestAccountService(t, accounts, &mockAdminRepository{}, &mockCustomerWriter{})

	_, errUnknown := svc.Login(context.Background(), "ghost", "whatever")
	_, errWrong := svc.Login(context.Background(), "admin", "wrong-one")

	ue1, ok := apperrors.IsUnauthorizedError(errUnknown)
	require.True(t, ok)
	ue2, ok := apperrors.IsUnauthorizedError(errWrong)
	require.True(t, ok)
	assert.Equal(t, ue1.Message, ue2.Message)
}

func TestLogin_InactiveAccount(t *testing.T) {
	accounts := &mockAccountRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Account, error) {
			return &domain.Account{ID: 1, PasswordHash: hashed(t, "s3cret!"), Type: domain.AccountTypeCarrier, IsActive: false}, nil
		},
	}
	svc, _ := newTestAccountService(t, accounts, &mockAdminRepository{}, &mockCustomerWriter{})

	_, err := svc.Login(context.Background(), "bob", "s3cret!")
	_, ok := apperrors.IsForbiddenError(err)
	assert.True(t, ok)
}

func TestLogin_LegacyPlaintextIsRehashed(t *testing.T) {
	var storedHash string
	accounts := &mockAccountRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Account, error) {
			return &domain.Account{ID: 9, PasswordHash: "legacy-pass", Type: domain.AccountTypeAdmin, IsActive: true}, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id int64, hash string) error {
			storedHash = hash
			return nil
		},
		FindProfileIDFunc: func(ctx context.Context, accountID int64, at domain.AccountType) (int64, error) {
			return 1, nil
		},
	}
	svc, _ := newTestAccountService(t, accounts, &mockAdminRepository{}, &mockCustomerWriter{})

	_, err := svc.Login(context.Background(), "root", "legacy-pass")
	require.NoError(t, err)
	assert.True(t, auth.IsHashed(storedHash))
	assert.True(t, auth.CheckPassword(storedHash, "legacy-pass"))
}

func TestLogin_RehashFailureDoesNotBlockLogin(t *testing.T) {
	accounts := &mockAccountRepository{
		FindByUsernameFunc: func(ctx context.Context, username string) (*domain.Account, error) {
			return &domain.Account{ID: 9, PasswordHash: "legacy-pass", Type: domain.AccountTypeAdmin, IsActive: true}, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id int64, hash string) error {
			return errors.New("read-only replica")
		},
		FindProfileIDFunc: func(ctx context.Context, accountID int64, at domain.AccountType) (int64, error) {
			return 1, nil
		},
	}
	svc, _ := newTestAccountService(t, accounts, &mockAdminRepository{}, &mockCustomerWriter{})

	_, err := svc.Login(context.Background(), "root", "legacy-pass")
	assert.NoError(t, err)
}

func TestRegisterCustomer_CreatesAccountAndProfileInOneTransaction(t *testing.T) {
	var createdAccount domain.Account
	accounts := &mockAccountRepository{
		CreateFunc: func(ctx context.Context, tx *sql.Tx, a domain.Account) (int64, error) {
			require.NotNil(t, tx)
			createdAccount = a
			return 50, nil
		},
	}
	customers := &mockCustomerWriter{
		CreateFunc: func(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error) {
			require.NotNil(t, tx)
			assert.Equal(t, int64(50), c.AccountID)
			return 8, nil
		},
	}
	svc, mock := newTestAccountService(t, accounts, &mockAdminRepository{}, customers)
	mock.ExpectBegin()
	mock.ExpectCommit()

	c, err := svc.RegisterCustomer(context.Background(),
		Credentials{Username: "carol", Password: "hunter22"},
		domain.Customer{FullName: "Carol", Address: "12 Elm St"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), c.ID)
	assert.Equal(t, int64(50), c.AccountID)
	assert.Equal(t, domain.AccountTypeCustomer, createdAccount.Type)
	assert.True(t, auth.IsHashed(createdAccount.PasswordHash))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterCustomer_ProfileFailureRollsBack(t *testing.T) {
	accounts := &mockAccountRepository{
		CreateFunc: func(ctx context.Context, tx *sql.Tx, a domain.Account) (int64, error) {
			return 50, nil
		},
	}
	customers := &mockCustomerWriter{
		CreateFunc: func(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error) {
			return 0, errors.New("insert failed")
		},
	}
	svc, mock := newTestAccountService(t, accounts, &mockAdminRepository{}, customers)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.RegisterCustomer(context.Background(), Credentials{Username: "carol", Password: "hunter22"}, domain.Customer{FullName: "Carol"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterCustomer_ShortPassword(t *testing.T) {
	svc, mock := newTestAccountService(t, &mockAccountRepository{}, &mockAdminRepository{}, &mockCustomerWriter{})

	_, err := svc.RegisterCustomer(context.Background(), Credentials{Username: "carol", Password: "abc"}, domain.Customer{FullName: "Carol"})
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "password", ve.Details[0].Field)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangePassword(t *testing.T) {
	var newHash string
	accounts := &mockAccountRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Account, error) {
			return &domain.Account{ID: id, PasswordHash: hashed(t, "old-pass"), IsActive: true}, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id int64, hash string) error {
			newHash = hash
			return nil
		},
	}
	svc, _ := newTestAccountService(t, accounts, &mockAdminRepository{}, &mockCustomerWriter{})

	err := svc.ChangePassword(context.Background(), 3, "not-it", "new-pass")
	_, ok := apperrors.IsUnauthorizedError(err)
	assert.True(t, ok)
	assert.Empty(t, newHash)

	require.NoError(t, svc.ChangePassword(context.Background(), 3, "old-pass", "new-pass"))
	assert.True(t, auth.CheckPassword(newHash, "new-pass"))
}

func TestDeactivateAdmin_RefusesSelf(t *testing.T) {
	admins := &mockAdminRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Admin, error) {
			return &domain.Admin{ID: id, AccountID: 77}, nil
		},
	}
	deactivated := int64(0)
	accounts := &mockAccountRepository{
		SetActiveFunc: func(ctx context.Context, id int64, active bool) error {
			assert.False(t, active)
			deactivated = id
			return nil
		},
	}
	svc, _ := newTestAccountService(t, accounts, admins, &mockCustomerWriter{})

	err := svc.DeactivateAdmin(context.Background(), 2, 77)
	ce, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, "SELF_DEACTIVATION", ce.Reason)

	require.NoError(t, svc.DeactivateAdmin(context.Background(), 2, 1))
	assert.Equal(t, int64(77), deactivated)
}

func TestCreateAdmin(t *testing.T) {
	accounts := &mockAccountRepository{
		CreateFunc: func(ctx context.Context, tx *sql.Tx, a domain.Account) (int64, error) {
			assert.Equal(t, domain.AccountTypeAdmin, a.Type)
			return 5, nil
		},
	}
	admins := &mockAdminRepository{
		CreateFunc: func(ctx context.Context, tx *sql.Tx, ad domain.Admin) (int64, error) {
			assert.Equal(t, int64(5), ad.AccountID)
			return 2, nil
		},
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Admin, error) {
			return &domain.Admin{ID: id, AccountID: 5, Username: "ops", FullName: "Ops", IsActive: true}, nil
		},
	}
	svc, mock := newTestAccountService(t, accounts, admins, &mockCustomerWriter{})
	mock.ExpectBegin()
	mock.ExpectCommit()

	ad, err := svc.CreateAdmin(context.Background(), Credentials{Username: "ops", Password: "ops-pass"}, domain.Admin{FullName: "Ops"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ad.ID)
}
