package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

const adminSelect = `
	SELECT ad.id, ad.accountId, a.username, ad.fullName, ad.email, ad.phone, a.isActive
	FROM Admin ad
	JOIN Account a ON a.id = ad.accountId`

type MySQLAdminRepository struct {
	db *sql.DB
}

func NewMySQLAdminRepository(db *sql.DB) *MySQLAdminRepository {
	return &MySQLAdminRepository{db: db}
}

func (r *MySQLAdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx, adminSelect+` ORDER BY ad.fullName, ad.id`)
	if err != nil {
		return nil, fmt.Errorf("querying admins: %w", err)
	}
	defer rows.Close()

	admins := []domain.Admin{}
	for rows.Next() {
		var ad domain.Admin
		var email, phone sql.NullString
		if err := rows.Scan(&ad.ID, &ad.AccountID, &ad.Username, &ad.FullName, &email, &phone, &ad.IsActive); err != nil {
			return nil, fmt.Errorf("scanning admin row: %w", err)
		}
		ad.Email, ad.Phone = email.String, phone.String
		admins = append(admins, ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating admin rows: %w", err)
	}
	return admins, nil
}

func (r *MySQLAdminRepository) FindByID(ctx context.Context, id int64) (*domain.Admin, error) {
	var ad domain.Admin
	var email, phone sql.NullString
	err := r.db.QueryRowContext(ctx, adminSelect+` WHERE ad.id = ?`, id).
		Scan(&ad.ID, &ad.AccountID, &ad.Username, &ad.FullName, &email, &phone, &ad.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("admin %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("scanning admin row: %w", err)
	}
	ad.Email, ad.Phone = email.String, phone.String
	return &ad, nil
}

func (r *MySQLAdminRepository) Create(ctx context.Context, tx *sql.Tx, ad domain.Admin) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`INSERT INTO Admin (accountId, fullName, email, phone) VALUES (?, ?, ?, ?)`,
		ad.AccountID, ad.FullName, ad.Email, ad.Phone,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting admin: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting admin id: %w", err)
	}
	return id, nil
}

func (r *MySQLAdminRepository) Update(ctx context.Context, ad domain.Admin) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE Admin SET fullName = ?, email = ?, phone = ? WHERE id = ?`,
		ad.FullName, ad.Email, ad.Phone, ad.ID,
	)
	if err != nil {
		return fmt.Errorf("updating admin %d: %w", ad.ID, err)
	}
	return requireAffected(result, fmt.Sprintf("admin %d not found", ad.ID))
}
