package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
)

const detailSelect = `
	SELECT d.id, d.orderId, d.productId, p.name, d.quantity, d.unitPrice, d.subtotal
	FROM OrderDetail d
	JOIN Product p ON p.id = d.productId`

type MySQLOrderDetailRepository struct {
	db *sql.DB
}

func NewMySQLOrderDetailRepository(db *sql.DB) *MySQLOrderDetailRepository {
	return &MySQLOrderDetailRepository{db: db}
}

func (r *MySQLOrderDetailRepository) Insert(ctx context.Context, tx *sql.Tx, d domain.OrderDetail) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO OrderDetail (orderId, productId, quantity, unitPrice, subtotal) VALUES (?, ?, ?, ?, ?)`,
		d.OrderID, d.ProductID, d.Quantity, d.UnitPrice, d.Subtotal,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order detail: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting order detail id: %w", err)
	}
	return id, nil
}

func (r *MySQLOrderDetailRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error) {
	rows, err := r.db.QueryContext(ctx, detailSelect+` WHERE d.orderId = ? ORDER BY d.productId`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying details of order %d: %w", orderID, err)
	}
	return scanDetails(rows)
}

// ListByOrderTx reads the details inside tx, for restoring stock on cancel.
func (r *MySQLOrderDetailRepository) ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderDetail, error) {
	rows, err := tx.QueryContext(ctx, detailSelect+` WHERE d.orderId = ? ORDER BY d.productId`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying details of order %d: %w", orderID, err)
	}
	return scanDetails(rows)
}

func scanDetails(rows *sql.Rows) ([]domain.OrderDetail, error) {
	defer rows.Close()

	details := []domain.OrderDetail{}
	for rows.Next() {
		var d domain.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.ProductName, &d.Quantity, &d.UnitPrice, &d.Subtotal); err != nil {
			return nil, fmt.Errorf("scanning order detail row: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order detail rows: %w", err)
	}
	return details, nil
}
