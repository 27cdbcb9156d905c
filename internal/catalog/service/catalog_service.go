package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type CategoryRepository interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (int64, error)
	Update(ctx context.Context, c domain.Category) error
	Delete(ctx context.Context, id int64) error
}

type ProductRepository interface {
	Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (int64, error)
	Update(ctx context.Context, p domain.Product) error
	SetStock(ctx context.Context, id int64, stock int) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type ImageRepository interface {
	ListByProducts(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductImage, error)
	Add(ctx context.Context, img domain.ProductImage) (int64, error)
	Delete(ctx context.Context, productID, imageID int64) error
	SetPrimary(ctx context.Context, productID, imageID int64) error
}

type CatalogService struct {
	categories CategoryRepository
	products   ProductRepository
	images     ImageRepository
	logger     *zap.Logger
}

func NewCatalogService(categories CategoryRepository, products ProductRepository, images ImageRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		categories: categories,
		products:   products,
		images:     images,
		logger:     logger,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	return s.categories.List(ctx, !includeInactive)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}

	id, err := s.categories.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	c.ID = id

	s.logger.Info("category created", zap.Int64("categoryId", id), zap.String("name", c.Name))
	return &c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, c domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted", zap.Int64("categoryId", id))
	return nil
}

// SearchProducts returns a page of products with their images attached.
func (s *CatalogService) SearchProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	products, total, err := s.products.Search(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachImages(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetProduct loads one product. Storefront callers (includeInactive false)
// do not see deactivated products.
func (s *CatalogService) GetProduct(ctx context.Context, id int64, includeInactive bool) (*domain.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !includeInactive && !p.IsActive {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product %d not found", id))
	}

	list := []domain.Product{*p}
	if err := s.attachImages(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *CatalogService) attachImages(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	images, err := s.images.ListByProducts(ctx, ids)
	if err != nil {
		return err
	}
	for i := range products {
		products[i].Images = images[products[i].ID]
	}
	return nil
}

func validateProduct(p domain.Product) error {
	var details []apperrors.ValidationDetail
	if strings.TrimSpace(p.Name) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if p.Price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "price", Message: "price must not be negative"})
	}
	if p.Stock < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "stock", Message: "stock must not be negative"})
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if _, err := s.categories.FindByID(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	id, err := s.products.Create(ctx, p)
	if err != nil {
		return nil, err
	}

	s.logger.Info("product created", zap.Int64("productId", id), zap.String("name", p.Name))
	return s.products.FindByID(ctx, id)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if _, err := s.categories.FindByID(ctx, p.CategoryID); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, p.ID, true)
}

func (s *CatalogService) SetStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{Field: "stock", Message: "stock must not be negative"})
	}
	if err := s.products.SetStock(ctx, id, stock); err != nil {
		return err
	}
	s.logger.Info("stock set", zap.Int64("productId", id), zap.Int("stock", stock))
	return nil
}

// DeactivateProduct hides the product from the storefront. Order history
// keeps referencing the row, so products are never hard deleted.
func (s *CatalogService) DeactivateProduct(ctx context.Context, id int64) error {
	if err := s.products.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info("product deactivated", zap.Int64("productId", id))
	return nil
}

func (s *CatalogService) AddImage(ctx context.Context, img domain.ProductImage) (*domain.ProductImage, error) {
	if _, err := s.products.FindByID(ctx, img.ProductID); err != nil {
		return nil, err
	}
	id, err := s.images.Add(ctx, img)
	if err != nil {
		return nil, err
	}
	img.ID = id
	return &img, nil
}

func (s *CatalogService) DeleteImage(ctx context.Context, productID, imageID int64) error {
	return s.images.Delete(ctx, productID, imageID)
}

func (s *CatalogService) SetPrimaryImage(ctx context.Context, productID, imageID int64) error {
	return s.images.SetPrimary(ctx, productID, imageID)
}

func (s *CatalogService) ListImages(ctx context.Context, productID int64) ([]domain.ProductImage, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	images, err := s.images.ListByProducts(ctx, []int64{productID})
	if err != nil {
		return nil, err
	}
	if images[productID] == nil {
		return []domain.ProductImage{}, nil
	}
	return images[productID], nil
}
