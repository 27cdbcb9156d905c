package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/mysql"
)

type MySQLImageRepository struct {
	db *sql.DB
}

func NewMySQLImageRepository(db *sql.DB) *MySQLImageRepository {
	return &MySQLImageRepository{db: db}
}

// ListByProducts loads the images of several products keyed by product id.
func (r *MySQLImageRepository) ListByProducts(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductImage, error) {
	out := make(map[int64][]domain.ProductImage, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	placeholders := make([]string, len(productIDs))
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, productId, imageUrl, isPrimary, sortOrder
		FROM ProductImage
		WHERE productId IN (%s)
		ORDER BY productId, sortOrder, id`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying product images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL, &img.IsPrimary, &img.SortOrder); err != nil {
			return nil, fmt.Errorf("scanning product image row: %w", err)
		}
		out[img.ProductID] = append(out[img.ProductID], img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product image rows: %w", err)
	}
	return out, nil
}

// Add inserts an image. A primary image demotes the product's other images
// in the same transaction.
func (r *MySQLImageRepository) Add(ctx context.Context, img domain.ProductImage) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if img.IsPrimary {
		if _, err := tx.ExecContext(ctx, `UPDATE ProductImage SET isPrimary = 0 WHERE productId = ?`, img.ProductID); err != nil {
			return 0, fmt.Errorf("clearing primary image: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO ProductImage (productId, imageUrl, isPrimary, sortOrder) VALUES (?, ?, ?, ?)`,
		img.ProductID, img.ImageURL, img.IsPrimary, img.SortOrder,
	)
	if err != nil {
		if mysql.IsForeignKeyViolation(err) {
			return 0, apperrors.NewNotFoundError(fmt.Sprintf("product %d not found", img.ProductID))
		}
		return 0, fmt.Errorf("inserting product image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting product image id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing product image: %w", err)
	}
	return id, nil
}

func (r *MySQLImageRepository) Delete(ctx context.Context, productID, imageID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ProductImage WHERE id = ? AND productId = ?`, imageID, productID)
	if err != nil {
		return fmt.Errorf("deleting product image %d: %w", imageID, err)
	}
	return requireAffected(result, fmt.Sprintf("image %d not found on product %d", imageID, productID))
}

// SetPrimary marks one image primary and every other image of the product not.
func (r *MySQLImageRepository) SetPrimary(ctx context.Context, productID, imageID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE ProductImage SET isPrimary = 1 WHERE id = ? AND productId = ?`, imageID, productID)
	if err != nil {
		return fmt.Errorf("setting primary image: %w", err)
	}
	if err := requireAffected(result, fmt.Sprintf("image %d not found on product %d", imageID, productID)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE ProductImage SET isPrimary = 0 WHERE productId = ? AND id <> ?`, productID, imageID); err != nil {
		return fmt.Errorf("clearing primary image: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing primary image: %w", err)
	}
	return nil
}
