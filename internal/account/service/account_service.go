package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/auth"
)

const minPasswordLength = 6

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id int64) (*domain.Account, error)
	Create(ctx context.Context, tx *sql.Tx, a domain.Account) (int64, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) error
	FindProfileID(ctx context.Context, accountID int64, t domain.AccountType) (int64, error)
}

type AdminRepository interface {
	List(ctx context.Context) ([]domain.Admin, error)
	FindByID(ctx context.Context, id int64) (*domain.Admin, error)
	Create(ctx context.Context, tx *sql.Tx, ad domain.Admin) (int64, error)
	Update(ctx context.Context, ad domain.Admin) error
}

// CustomerWriter inserts the customer profile of a self-registered account.
type CustomerWriter interface {
	Create(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error)
}

type TokenIssuer interface {
	Issue(accountID int64, accountType domain.AccountType, profileID int64) (string, time.Time, error)
}

type Credentials struct {
	Username string
	Password string
}

type Session struct {
	Token       string
	ExpiresAt   time.Time
	AccountID   int64
	AccountType domain.AccountType
	ProfileID   int64
}

// ProfileCreator inserts the profile row of a freshly created account.
type ProfileCreator func(ctx context.Context, tx *sql.Tx, accountID int64) (int64, error)

type AccountService struct {
	txManager TransactionManager
	accounts  AccountRepository
	admins    AdminRepository
	customers CustomerWriter
	tokens    TokenIssuer
	logger    *zap.Logger
}

func NewAccountService(
	txManager TransactionManager,
	accounts AccountRepository,
	admins AdminRepository,
	customers CustomerWriter,
	tokens TokenIssuer,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		txManager: txManager,
		accounts:  accounts,
		admins:    admins,
		customers: customers,
		tokens:    tokens,
		logger:    logger,
	}
}

// Login verifies the credentials and issues a bearer token. Accounts still
// holding a plaintext password are upgraded to a bcrypt hash on success.
func (s *AccountService) Login(ctx context.Context, username, password string) (*Session, error) {
	invalid := apperrors.NewUnauthorizedError("invalid username or password")

	acct, err := s.accounts.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, invalid
		}
		return nil, err
	}

	if !auth.CheckPassword(acct.PasswordHash, password) {
		s.logger.Warn("login rejected", zap.Int64("accountId", acct.ID))
		return nil, invalid
	}
	if !acct.CanSignIn() {
		return nil, apperrors.NewForbiddenError("account is disabled")
	}

	if !auth.IsHashed(acct.PasswordHash) {
		s.rehash(ctx, acct.ID, password)
	}

	profileID, err := s.accounts.FindProfileID(ctx, acct.ID, acct.Type)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(acct.ID, acct.Type, profileID)
	if err != nil {
		return nil, apperrors.NewInternalError("issuing token", err)
	}

	s.logger.Info("login succeeded", zap.Int64("accountId", acct.ID), zap.String("accountType", string(acct.Type)))
	return &Session{
		Token:       token,
		ExpiresAt:   expiresAt,
		AccountID:   acct.ID,
		AccountType: acct.Type,
		ProfileID:   profileID,
	}, nil
}

func (s *AccountService) rehash(ctx context.Context, accountID int64, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.accounts.UpdatePassword(ctx, accountID, hash)
	}
	if err != nil {
		s.logger.Warn("legacy password upgrade failed", zap.Int64("accountId", accountID), zap.Error(err))
		return
	}
	s.logger.Info("legacy password upgraded", zap.Int64("accountId", accountID))
}

func validateCredentials(c Credentials) error {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(c.Username) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "username", Message: "username is required"})
	}
	if len(c.Password) < minPasswordLength {
		details = append(details, apperrors.ValidationDetail{
			Field:   "password",
			Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength),
		})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// ProvisionAccount creates an account and its profile row in one transaction.
func (s *AccountService) ProvisionAccount(ctx context.Context, creds Credentials, t domain.AccountType, createProfile ProfileCreator) (int64, int64, error) {
	if err := validateCredentials(creds); err != nil {
		return 0, 0, err
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return 0, 0, apperrors.NewInternalError("hashing password", err)
	}

	tx, err := s.txManager.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	accountID, err := s.accounts.Create(ctx, tx, domain.Account{
		Username:     strings.TrimSpace(creds.Username),
		PasswordHash: hash,
		Type:         t,
		IsActive:     true,
	})
	if err != nil {
		return 0, 0, err
	}

	profileID, err := createProfile(ctx, tx, accountID)
	if err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing account: %w", err)
	}

	s.logger.Info("account created",
		zap.Int64("accountId", accountID),
		zap.Int64("profileId", profileID),
		zap.String("accountType", string(t)),
	)
	return accountID, profileID, nil
}

func (s *AccountService) RegisterCustomer(ctx context.Context, creds Credentials, c domain.Customer) (*domain.Customer, error) {
	accountID, customerID, err := s.ProvisionAccount(ctx, creds, domain.AccountTypeCustomer,
		func(ctx context.Context, tx *sql.Tx, accountID int64) (int64, error) {
			c.AccountID = accountID
			return s.customers.Create(ctx, tx, c)
		})
	if err != nil {
		return nil, err
	}

	c.ID = customerID
	c.AccountID = accountID
	c.Username = strings.TrimSpace(creds.Username)
	c.IsActive = true
	return &c, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error {
	acct, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(acct.PasswordHash, oldPassword) {
		return apperrors.NewUnauthorizedError("current password is incorrect")
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "newPassword",
			Message: fmt.Sprintf("newPassword must be at least %d characters", minPasswordLength),
		})
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.NewInternalError("hashing password", err)
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", zap.Int64("accountId", accountID))
	return nil
}

func (s *AccountService) SetActive(ctx context.Context, accountID int64, active bool) error {
	if err := s.accounts.SetActive(ctx, accountID, active); err != nil {
		return err
	}
	s.logger.Info("account activation changed", zap.Int64("accountId", accountID), zap.Bool("active", active))
	return nil
}

func (s *AccountService) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	return s.admins.List(ctx)
}

func (s *AccountService) GetAdmin(ctx context.Context, id int64) (*domain.Admin, error) {
	return s.admins.FindByID(ctx, id)
}

func (s *AccountService) CreateAdmin(ctx context.Context, creds Credentials, ad domain.Admin) (*domain.Admin, error) {
	if strings.TrimSpace(ad.FullName) == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "fullName", Message: "fullName is required"})
	}

	_, adminID, err := s.ProvisionAccount(ctx, creds, domain.AccountTypeAdmin,
		func(ctx context.Context, tx *sql.Tx, accountID int64) (int64, error) {
			ad.AccountID = accountID
			return s.admins.Create(ctx, tx, ad)
		})
	if err != nil {
		return nil, err
	}
	return s.admins.FindByID(ctx, adminID)
}

func (s *AccountService) UpdateAdmin(ctx context.Context, ad domain.Admin) (*domain.Admin, error) {
	if err := s.admins.Update(ctx, ad); err != nil {
		return nil, err
	}
	return s.admins.FindByID(ctx, ad.ID)
}

// DeactivateAdmin disables the admin's account. Admins cannot lock
// themselves out.
func (s *AccountService) DeactivateAdmin(ctx context.Context, adminID, callerAccountID int64) error {
	ad, err := s.admins.FindByID(ctx, adminID)
	if err != nil {
		return err
	}
	if ad.AccountID == callerAccountID {
		return apperrors.NewConflictErrorWithReason("SELF_DEACTIVATION", "admins cannot deactivate their own account")
	}
	return s.SetActive(ctx, ad.AccountID, false)
}
