package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

const customerSelect = `
	SELECT cu.id, cu.accountId, a.username, cu.fullName, cu.email, cu.phone, cu.address, a.isActive, cu.createdAt
	FROM Customer cu
	JOIN Account a ON a.id = cu.accountId`

type MySQLCustomerRepository struct {
	db *sql.DB
}

func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{db: db}
}

// Search pages through customers whose name, username or email contains query.
func (r *MySQLCustomerRepository) Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error) {
	where := ""
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + q + "%"
		where = ` WHERE cu.fullName LIKE ? OR a.username LIKE ? OR cu.email LIKE ?`
		args = append(args, pattern, pattern, pattern)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM Customer cu JOIN Account a ON a.id = cu.accountId` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, customerSelect+where+` ORDER BY cu.fullName, cu.id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying customers: %w", err)
	}
	defer rows.Close()

	customers := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating customer rows: %w", err)
	}
	return customers, total, nil
}

func (r *MySQLCustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, customerSelect+` WHERE cu.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("customer %d not found", id))
	}
	return c, err
}

func (r *MySQLCustomerRepository) Create(ctx context.Context, tx *sql.Tx, c domain.Customer) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO Customer (accountId, fullName, email, phone, address) VALUES (?, ?, ?, ?, ?)`,
		c.AccountID, c.FullName, c.Email, c.Phone, c.Address,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting customer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting customer id: %w", err)
	}
	return id, nil
}

func (r *MySQLCustomerRepository) Update(ctx context.Context, c domain.Customer) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE Customer SET fullName = ?, email = ?, phone = ?, address = ? WHERE id = ?`,
		c.FullName, c.Email, c.Phone, c.Address, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("customer %d not found", c.ID))
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	var email, phone, address sql.NullString
	err := s.Scan(&c.ID, &c.AccountID, &c.Username, &c.FullName, &email, &phone, &address, &c.IsActive, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning customer row: %w", err)
	}
	c.Email, c.Phone, c.Address = email.String, phone.String, address.String
	return &c, nil
}
