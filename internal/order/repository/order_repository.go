package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
)

const orderColumns = `o.id, o.customerId, cu.fullName, o.carrierId, ca.fullName,
		o.subtotal, o.shippingFee, o.discount, o.totalAmount, o.status,
		o.shippingAddress, o.notes, o.orderDate, o.updatedAt`

const orderFrom = `
	FROM Orders o
	JOIN Customer cu ON cu.id = o.customerId
	LEFT JOIN Carrier ca ON ca.id = o.carrierId`

// cancelledPattern matches the marker literally; MySQL LIKE gives [ and ]
// no special meaning.
var cancelledPattern = "%" + domain.CancelledMarker + "%"

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, o domain.Order) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO Orders (customerId, subtotal, shippingFee, discount, totalAmount, status, shippingAddress, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		o.CustomerID, o.Subtotal, o.ShippingFee, o.Discount, o.TotalAmount, o.Status, o.ShippingAddress, nullIfEmpty(o.Notes),
	)
	if err != nil {
		if mysql.IsCheckViolation(err) {
			return 0, apperrors.NewValidationError(fmt.Sprintf("order status %q is not allowed", o.Status))
		}
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting order id: %w", err)
	}
	return id, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	return findOrder(ctx, r.db, id)
}

// FindByIDTx reads the order through tx, so rows written earlier in the same
// transaction are visible with their database defaults filled in.
func (r *MySQLOrderRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	return findOrder(ctx, tx, id)
}

func findOrder(ctx context.Context, q rowQuerier, id int64) (*domain.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", id))
	}
	return o, err
}

// FindByIDForUpdate locks the order row, and only that row, until tx ends.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	o, err := scanOrder(tx.QueryRowContext(ctx, `SELECT `+orderColumns+orderFrom+` WHERE o.id = ? FOR UPDATE OF o`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", id))
	}
	return o, err
}

func orderWhere(f domain.OrderFilter) (string, []any) {
	var conds []string
	var args []any

	if f.CustomerID > 0 {
		conds = append(conds, "o.customerId = ?")
		args = append(args, f.CustomerID)
	}
	if f.CarrierID > 0 {
		conds = append(conds, "o.carrierId = ?")
		args = append(args, f.CarrierID)
	}
	switch {
	case f.Status == domain.OrderStatusCancelled:
		conds = append(conds, "o.notes LIKE ?")
		args = append(args, cancelledPattern)
	case f.Status != "":
		conds = append(conds, "o.status = ?", "(o.notes IS NULL OR o.notes NOT LIKE ?)")
		args = append(args, f.Status, cancelledPattern)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of orders, newest first, and the total match count.
func (r *MySQLOrderRepository) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	where, args := orderWhere(f)

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := `SELECT ` + orderColumns + orderFrom + where + ` ORDER BY o.orderDate DESC, o.id DESC LIMIT ? OFFSET ?`
	orders, err := r.query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListBetween returns every order placed in [from, to).
func (r *MySQLOrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	return r.query(ctx,
		`SELECT `+orderColumns+orderFrom+` WHERE o.orderDate >= ? AND o.orderDate < ? ORDER BY o.orderDate, o.id`,
		from, to,
	)
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.OrderStatus) error {
	result, err := tx.ExecContext(ctx, `UPDATE Orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		if mysql.IsCheckViolation(err) {
			return apperrors.NewValidationError(fmt.Sprintf("order status %q is not allowed", status))
		}
		return fmt.Errorf("updating order %d status: %w", id, err)
	}
	return requireAffected(result, id)
}

func (r *MySQLOrderRepository) UpdateNotes(ctx context.Context, tx *sql.Tx, id int64, notes string) error {
	result, err := tx.ExecContext(ctx, `UPDATE Orders SET notes = ? WHERE id = ?`, nullIfEmpty(notes), id)
	if err != nil {
		return fmt.Errorf("updating order %d notes: %w", id, err)
	}
	return requireAffected(result, id)
}

func (r *MySQLOrderRepository) SetCarrier(ctx context.Context, tx *sql.Tx, id, carrierID int64) error {
	result, err := tx.ExecContext(ctx, `UPDATE Orders SET carrierId = ? WHERE id = ?`, carrierID, id)
	if err != nil {
		if mysql.IsForeignKeyViolation(err) {
			return apperrors.NewNotFoundError(fmt.Sprintf("carrier %d not found", carrierID))
		}
		return fmt.Errorf("assigning carrier to order %d: %w", id, err)
	}
	return requireAffected(result, id)
}

func (r *MySQLOrderRepository) query(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}
	return orders, nil
}

func requireAffected(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order %d not found", id))
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var o domain.Order
	var carrierID sql.NullInt64
	var carrierName, address, notes sql.NullString
	var status string

	err := s.Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &carrierID, &carrierName,
		&o.Subtotal, &o.ShippingFee, &o.Discount, &o.TotalAmount, &status,
		&address, &notes, &o.OrderDate, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning order row: %w", err)
	}

	o.Status = domain.OrderStatus(status)
	o.ShippingAddress, o.Notes = address.String, notes.String
	if carrierID.Valid {
		id := carrierID.Int64
		o.CarrierID = &id
	}
	if carrierName.Valid {
		name := carrierName.String
		o.CarrierName = &name
	}
	return &o, nil
}
