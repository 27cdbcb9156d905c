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

type MySQLCategoryRepository struct {
	db *sql.DB
}

func NewMySQLCategoryRepository(db *sql.DB) *MySQLCategoryRepository {
	return &MySQLCategoryRepository{db: db}
}

func (r *MySQLCategoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `SELECT id, name, description, isActive FROM Category`
	if activeOnly {
		query += ` WHERE isActive = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *MySQLCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, description, isActive FROM Category WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("category %d not found", id))
	}
	return c, err
}

func (r *MySQLCategoryRepository) Create(ctx context.Context, c domain.Category) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO Category (name, description, isActive) VALUES (?, ?, ?)`,
		c.Name, c.Description, c.IsActive,
	)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return 0, apperrors.NewConflictErrorWithReason("DUPLICATE_CATEGORY", fmt.Sprintf("category %q already exists", c.Name))
		}
		return 0, fmt.Errorf("inserting category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting category id: %w", err)
	}
	return id, nil
}

func (r *MySQLCategoryRepository) Update(ctx context.Context, c domain.Category) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE Category SET name = ?, description = ?, isActive = ? WHERE id = ?`,
		c.Name, c.Description, c.IsActive, c.ID,
	)
	if err != nil {
		if mysql.IsDuplicateEntry(err) {
			return apperrors.NewConflictErrorWithReason("DUPLICATE_CATEGORY", fmt.Sprintf("category %q already exists", c.Name))
		}
		return fmt.Errorf("updating category %d: %w", c.ID, err)
	}
	return requireAffected(result, fmt.Sprintf("category %d not found", c.ID))
}

// Delete removes the category. Categories still referenced by products are
// refused by the foreign key and reported as a conflict.
func (r *MySQLCategoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM Category WHERE id = ?`, id)
	if err != nil {
		if mysql.IsForeignKeyViolation(err) {
			return apperrors.NewConflictErrorWithReason("CATEGORY_IN_USE", fmt.Sprintf("category %d still has products", id))
		}
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	return requireAffected(result, fmt.Sprintf("category %d not found", id))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (*domain.Category, error) {
	var c domain.Category
	var description sql.NullString
	if err := s.Scan(&c.ID, &c.Name, &description, &c.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning category row: %w", err)
	}
	c.Description = description.String
	return &c, nil
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
