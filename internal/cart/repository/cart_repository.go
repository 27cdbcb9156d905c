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

const cartSelect = `
	SELECT sc.id, sc.customerId, sc.productId, p.name, p.price, sc.quantity, p.stock, p.isActive, sc.addedAt
	FROM ShoppingCart sc
	JOIN Product p ON p.id = sc.productId
	WHERE sc.customerId = ?
	ORDER BY sc.productId`

type MySQLCartRepository struct {
	db *sql.DB
}

func NewMySQLCartRepository(db *sql.DB) *MySQLCartRepository {
	return &MySQLCartRepository{db: db}
}

// ListLines returns the customer's cart ordered by productId, joined with the
// live product price and stock.
func (r *MySQLCartRepository) ListLines(ctx context.Context, customerID int64) ([]domain.CartLine, error) {
	rows, err := r.db.QueryContext(ctx, cartSelect, customerID)
	if err != nil {
		return nil, fmt.Errorf("querying cart of customer %d: %w", customerID, err)
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(
			&l.ID, &l.CustomerID, &l.ProductID, &l.ProductName, &l.UnitPrice,
			&l.Quantity, &l.Stock, &l.ProductActive, &l.AddedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning cart row: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cart rows: %w", err)
	}
	return lines, nil
}

// LineQuantity returns the quantity already in the cart, zero when the
// product is not there.
func (r *MySQLCartRepository) LineQuantity(ctx context.Context, customerID, productID int64) (int, error) {
	var qty int
	err := r.db.QueryRowContext(ctx,
		`SELECT quantity FROM ShoppingCart WHERE customerId = ? AND productId = ?`,
		customerID, productID,
	).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying cart line: %w", err)
	}
	return qty, nil
}

// AddQuantity creates the line or increments an existing one.
func (r *MySQLCartRepository) AddQuantity(ctx context.Context, customerID, productID int64, qty int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ShoppingCart (customerId, productId, quantity) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity)`,
		customerID, productID, qty,
	)
	if err != nil {
		return cartWriteError(err, productID)
	}
	return nil
}

func (r *MySQLCartRepository) SetQuantity(ctx context.Context, customerID, productID int64, qty int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ShoppingCart SET quantity = ? WHERE customerId = ? AND productId = ?`,
		qty, customerID, productID,
	)
	if err != nil {
		return cartWriteError(err, productID)
	}
	return requireLine(result, productID)
}

func (r *MySQLCartRepository) RemoveLine(ctx context.Context, customerID, productID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM ShoppingCart WHERE customerId = ? AND productId = ?`,
		customerID, productID,
	)
	if err != nil {
		return fmt.Errorf("deleting cart line: %w", err)
	}
	return requireLine(result, productID)
}

func (r *MySQLCartRepository) Clear(ctx context.Context, customerID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ShoppingCart WHERE customerId = ?`, customerID); err != nil {
		return fmt.Errorf("clearing cart of customer %d: %w", customerID, err)
	}
	return nil
}

// RemoveOrderedTx takes qty units of a product out of the cart as part of
// checkout. A line holding more than qty keeps the remainder; lines for other
// products are left alone.
func (r *MySQLCartRepository) RemoveOrderedTx(ctx context.Context, tx *sql.Tx, customerID, productID int64, qty int) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ShoppingCart WHERE customerId = ? AND productId = ? AND quantity <= ?`,
		customerID, productID, qty,
	); err != nil {
		return fmt.Errorf("removing ordered cart line: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ShoppingCart SET quantity = quantity - ? WHERE customerId = ? AND productId = ? AND quantity > ?`,
		qty, customerID, productID, qty,
	); err != nil {
		return fmt.Errorf("reducing ordered cart line: %w", err)
	}
	return nil
}

func requireLine(result sql.Result, productID int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("product %d is not in the cart", productID))
	}
	return nil
}

func cartWriteError(err error, productID int64) error {
	switch {
	case mysql.IsForeignKeyViolation(err):
		return apperrors.NewNotFoundError(fmt.Sprintf("product %d not found", productID))
	case mysql.IsCheckViolation(err):
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "quantity", Message: "quantity must be greater than zero"})
	}
	return fmt.Errorf("writing cart line: %w", err)
}
