package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

const carrierSelect = `
	SELECT ca.id, ca.accountId, a.username, ca.fullName, ca.phone, ca.vehicleNumber, ca.isAvailable, a.isActive
	FROM Carrier ca
	JOIN Account a ON a.id = ca.accountId`

type MySQLCarrierRepository struct {
	db *sql.DB
}

func NewMySQLCarrierRepository(db *sql.DB) *MySQLCarrierRepository {
	return &MySQLCarrierRepository{db: db}
}

// List returns every carrier, or only those that can take an order right
// now when assignableOnly is set.
func (r *MySQLCarrierRepository) List(ctx context.Context, assignableOnly bool) ([]domain.Carrier, error) {
	query := carrierSelect
	if assignableOnly {
		query += ` WHERE ca.isAvailable = 1 AND a.isActive = 1`
	}
	query += ` ORDER BY ca.fullName, ca.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying carriers: %w", err)
	}
	defer rows.Close()

	carriers := []domain.Carrier{}
	for rows.Next() {
		c, err := scanCarrier(rows)
		if err != nil {
			return nil, err
		}
		carriers = append(carriers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating carrier rows: %w", err)
	}
	return carriers, nil
}

func (r *MySQLCarrierRepository) FindByID(ctx context.Context, id int64) (*domain.Carrier, error) {
	c, err := scanCarrier(r.db.QueryRowContext(ctx, carrierSelect+` WHERE ca.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("carrier %d not found", id))
	}
	return c, err
}

// FindByIDTx reads the carrier inside tx, sharing-locking the row so the
// carrier cannot be marked unavailable while an order is being assigned.
func (r *MySQLCarrierRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Carrier, error) {
	c, err := scanCarrier(tx.QueryRowContext(ctx, carrierSelect+` WHERE ca.id = ? LOCK IN SHARE MODE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("carrier %d not found", id))
	}
	return c, err
}

func (r *MySQLCarrierRepository) Create(ctx context.Context, tx *sql.Tx, c domain.Carrier) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO Carrier (accountId, fullName, phone, vehicleNumber, isAvailable) VALUES (?, ?, ?, ?, ?)`,
		c.AccountID, c.FullName, c.Phone, c.VehicleNumber, c.IsAvailable,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting carrier: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting carrier id: %w", err)
	}
	return id, nil
}

func (r *MySQLCarrierRepository) Update(ctx context.Context, c domain.Carrier) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE Carrier SET fullName = ?, phone = ?, vehicleNumber = ?, isAvailable = ? WHERE id = ?`,
		c.FullName, c.Phone, c.VehicleNumber, c.IsAvailable, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating carrier %d: %w", c.ID, err)
	}
	return requireAffected(result, c.ID)
}

func (r *MySQLCarrierRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE Carrier SET isAvailable = ? WHERE id = ?`, available, id)
	if err != nil {
		return fmt.Errorf("updating carrier %d availability: %w", id, err)
	}
	return requireAffected(result, id)
}

func requireAffected(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("carrier %d not found", id))
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCarrier(s scanner) (*domain.Carrier, error) {
	var c domain.Carrier
	var phone, vehicle sql.NullString
	err := s.Scan(&c.ID, &c.AccountID, &c.Username, &c.FullName, &phone, &vehicle, &c.IsAvailable, &c.AccountActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning carrier row: %w", err)
	}
	c.Phone, c.VehicleNumber = phone.String, vehicle.String
	return &c, nil
}
