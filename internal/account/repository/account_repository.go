package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
)

const accountColumns = `id, username, passwordHash, accountType, isActive, createdAt, updatedAt`

type MySQLAccountRepository struct {
	db *sql.DB
}

func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{db: db}
}

func (r *MySQLAccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM Account WHERE username = ?`, username)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %q not found", username))
	}
	return a, err
}

func (r *MySQLAccountRepository) FindByID(ctx context.Context, id int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM Account WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %d not found", id))
	}
	return a, err
}

// Create inserts the account inside tx so the caller can add the profile
// row before committing.
func (r *MySQLAccountRepository) Create(ctx context.Context, tx *sql.Tx, a domain.Account) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO Account (username, passwordHash, accountType, isActive) VALUES (?, ?, ?, ?)`,
		a.Username, a.PasswordHash, string(a.Type), a.IsActive,
	)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return 0, apperrors.NewConflictErrorWithReason("USERNAME_TAKEN", fmt.Sprintf("username %q is already taken", a.Username))
		}
		return 0, fmt.Errorf("inserting account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting account id: %w", err)
	}
	return id, nil
}

func (r *MySQLAccountRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE Account SET passwordHash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("updating password of account %d: %w", id, err)
	}
	return requireAffected(result, fmt.Sprintf("account %d not found", id))
}

func (r *MySQLAccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE Account SET isActive = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("updating account %d: %w", id, err)
	}
	return requireAffected(result, fmt.Sprintf("account %d not found", id))
}

var profileTables = map[domain.AccountType]string{
	domain.AccountTypeAdmin:    "Admin",
	domain.AccountTypeCustomer: "Customer",
	domain.AccountTypeCarrier:  "Carrier",
}

// FindProfileID returns the id of the Admin, Customer or Carrier row owned
// by the account.
func (r *MySQLAccountRepository) FindProfileID(ctx context.Context, accountID int64, t domain.AccountType) (int64, error) {
	table, ok := profileTables[t]
	if !ok {
		return 0, fmt.Errorf("unknown account type %q", t)
	}

	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE accountId = ?`, accountID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, apperrors.NewNotFoundError(fmt.Sprintf("%s profile for account %d not found", table, accountID))
	}
	if err != nil {
		return 0, fmt.Errorf("querying %s profile: %w", table, err)
	}
	return id, nil
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	var accountType string
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &accountType, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning account row: %w", err)
	}
	a.Type = domain.AccountType(accountType)
	return &a, nil
}

func requireAffected(result sql.Result, notFound string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(notFound)
	}
	return nil
}
