package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
)

const productColumns = `p.id, p.categoryId, c.name, p.name, p.description, p.price, p.stock, p.isActive, p.createdAt, p.updatedAt`

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

func productWhere(f domain.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	if q := strings.TrimSpace(f.Query); q != "" {
		conds = append(conds, "p.name LIKE ?")
		args = append(args, "%"+escapeLike(q)+"%")
	}
	if f.CategoryID > 0 {
		conds = append(conds, "p.categoryId = ?")
		args = append(args, f.CategoryID)
	}
	if f.ActiveOnly {
		conds = append(conds, "p.isActive = 1", "c.isActive = 1")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search returns one page of products matching f plus the total match count.
func (r *MySQLProductRepository) Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	where, args := productWhere(f)

	var total int64
	countQuery := `SELECT COUNT(*) FROM Product p JOIN Category c ON c.id = p.categoryId` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM Product p JOIN Category c ON c.id = p.categoryId` +
		where + ` ORDER BY p.name, p.id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, total, nil
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM Product p JOIN Category c ON c.id = p.categoryId WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product %d not found", id))
	}
	return p, err
}

// FindByIDForUpdate locks the product row, not its category, for the rest of tx.
func (r *MySQLProductRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Product, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM Product p JOIN Category c ON c.id = p.categoryId WHERE p.id = ? FOR UPDATE OF p`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product %d not found", id))
	}
	return p, err
}

func (r *MySQLProductRepository) Create(ctx context.Context, p domain.Product) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO Product (categoryId, name, description, price, stock, isActive) VALUES (?, ?, ?, ?, ?, ?)`,
		p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.IsActive,
	)
	if err != nil {
		return 0, productWriteError(err, p.CategoryID)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting product id: %w", err)
	}
	return id, nil
}

func (r *MySQLProductRepository) Update(ctx context.Context, p domain.Product) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE Product SET categoryId = ?, name = ?, description = ?, price = ?, stock = ?, isActive = ? WHERE id = ?`,
		p.CategoryID, p.Name, p.Description, p.Price, p.Stock, p.IsActive, p.ID,
	)
	if err != nil {
		return productWriteError(err, p.CategoryID)
	}
	return requireAffected(result, fmt.Sprintf("product %d not found", p.ID))
}

func (r *MySQLProductRepository) SetStock(ctx context.Context, id int64, stock int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE Product SET stock = ? WHERE id = ?`, stock, id)
	if err != nil {
		return productWriteError(err, 0)
	}
	return requireAffected(result, fmt.Sprintf("product %d not found", id))
}

func (r *MySQLProductRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE Product SET isActive = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", id, err)
	}
	return requireAffected(result, fmt.Sprintf("product %d not found", id))
}

// DecrementStock takes qty units out of stock, refusing to go below zero.
func (r *MySQLProductRepository) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE Product SET stock = stock - ? WHERE id = ? AND stock >= ?`, qty, id, qty)
	if err != nil {
		return fmt.Errorf("decrementing stock of product %d: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if n == 0 {
		return apperrors.NewConflictErrorWithReason(string(domain.ReasonInsufficientStock),
			fmt.Sprintf("product %d has fewer than %d units in stock", id, qty))
	}
	return nil
}

func (r *MySQLProductRepository) IncrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) error {
	_, err := tx.ExecContext(ctx, `UPDATE Product SET stock = stock + ? WHERE id = ?`, qty, id)
	if err != nil {
		return fmt.Errorf("restoring stock of product %d: %w", id, err)
	}
	return nil
}

func productWriteError(err error, categoryID int64) error {
	switch {
	case mysql.IsForeignKeyViolation(err):
		return apperrors.NewNotFoundError(fmt.Sprintf("category %d not found", categoryID))
	case mysql.IsCheckViolation(err):
		return apperrors.NewValidationError("product violates catalog constraints", apperrors.ValidationDetail{
			Field:   "price",
			Message: "price and stock must not be negative",
		})
	}
	return fmt.Errorf("writing product: %w", err)
}

func scanProduct(s scanner) (*domain.Product, error) {
	var p domain.Product
	var description sql.NullString
	err := s.Scan(
		&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &description,
		&p.Price, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning product row: %w", err)
	}
	p.Description = description.String
	return &p, nil
}
