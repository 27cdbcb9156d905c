package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type mockCategoryRepository struct {
	ListFunc     func(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	FindByIDFunc func(ctx context.Context, id int64) (*domain.Category, error)
	CreateFunc   func(ctx context.Context, c domain.Category) (int64, error)
	UpdateFunc   func(ctx context.Context, c domain.Category) error
	DeleteFunc   func(ctx context.Context, id int64) error
}

func (m *mockCategoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	return m.ListFunc(ctx, activeOnly)
}

func (m *mockCategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockCategoryRepository) Create(ctx context.Context, c domain.Category) (int64, error) {
	return m.CreateFunc(ctx, c)
}

func (m *mockCategoryRepository) Update(ctx context.Context, c domain.Category) error {
	return m.UpdateFunc(ctx, c)
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int64) error {
	return m.DeleteFunc(ctx, id)
}

type mockProductRepository struct {
	SearchFunc    func(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error)
	FindByIDFunc  func(ctx context.Context, id int64) (*domain.Product, error)
	CreateFunc    func(ctx context.Context, p domain.Product) (int64, error)
	UpdateFunc    func(ctx context.Context, p domain.Product) error
	SetStockFunc  func(ctx context.Context, id int64, stock int) error
	SetActiveFunc func(ctx context.Context, id int64, active bool) error
}

func (m *mockProductRepository) Search(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	return m.SearchFunc(ctx, f)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockProductRepository) Create(ctx context.Context, p domain.Product) (int64, error) {
	return m.CreateFunc(ctx, p)
}

func (m *mockProductRepository) Update(ctx context.Context, p domain.Product) error {
	return m.UpdateFunc(ctx, p)
}

func (m *mockProductRepository) SetStock(ctx context.Context, id int64, stock int) error {
	return m.SetStockFunc(ctx, id, stock)
}

func (m *mockProductRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return m.SetActiveFunc(ctx, id, active)
}

type mockImageRepository struct {
	ListByProductsFunc func(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductImage, error)
	AddFunc            func(ctx context.Context, img domain.ProductImage) (int64, error)
	DeleteFunc         func(ctx context.Context, productID, imageID int64) error
	SetPrimaryFunc     func(ctx context.Context, productID, imageID int64) error
}

func (m *mockImageRepository) ListByProducts(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductImage, error) {
	return m.ListByProductsFunc(ctx, productIDs)
}

func (m *mockImageRepository) Add(ctx context.Context, img domain.ProductImage) (int64, error) {
	return m.AddFunc(ctx, img)
}

func (m *mockImageRepository) Delete(ctx context.Context, productID, imageID int64) error {
	return m.DeleteFunc(ctx, productID, imageID)
}

func (m *mockImageRepository) SetPrimary(ctx context.Context, productID, imageID int64) error {
	return m.SetPrimaryFunc(ctx, productID, imageID)
}

func existingCategory() *mockCategoryRepository {
	return &mockCategoryRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Category, error) {
			return &domain.Category{ID: id, Name: "Books", IsActive: true}, nil
		},
	}
}

func noImages() *mockImageRepository {
	return &mockImageRepository{
		ListByProductsFunc: func(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductImage, error) {
			return map[int64][]domain.ProductImage{}, nil
		},
	}
}

func TestListCategories_StorefrontSeesActiveOnly(t *testing.T) {
	var gotActiveOnly bool
	categories := &mockCategoryRepository{
		ListFunc: func(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
			gotActiveOnly = activeOnly
			return nil, nil
		},
	}
	svc := NewCatalogService(categories, &mockProductRepository{}, noImages(), zap.NewNop())

	_, err := svc.ListCategories(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, gotActiveOnly)

	_, err = svc.ListCategories(context.Background(), true)
	require.NoError(t, err)
	assert.False(t, gotActiveOnly)
}

func TestCreateCategory_RequiresName(t *testing.T) {
	svc := NewCatalogService(&mockCategoryRepository{}, &mockProductRepository{}, noImages(), zap.NewNop())

	_, err := svc.CreateCategory(context.Background(), domain.Category{Name: "   "})
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
}

func TestSearchProducts_AttachesImages(t *testing.T) {
	products := &mockProductRepository{
		SearchFunc: func(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
			return []domain.Product{{ID: 1}, {ID: 2}}, 2, nil
		},
	}
	images := &mockImageRepository{
		ListByProductsFunc: func(ctx context.Context, productIDs []int64) (map[int64][]domain.ProductImage, error) {
			assert.Equal(t, []int64{1, 2}, productIDs)
			return map[int64][]domain.ProductImage{2: {{ID: 9, ProductID: 2, ImageURL: "https://cdn/x.png"}}}, nil
		},
	}
	svc := NewCatalogService(&mockCategoryRepository{}, products, images, zap.NewNop())

	got, total, err := svc.SearchProducts(context.Background(), domain.ProductFilter{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Empty(t, got[0].Images)
	assert.Len(t, got[1].Images, 1)
}

func TestGetProduct_InactiveHiddenFromStorefront(t *testing.T) {
	products := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			return &domain.Product{ID: id, IsActive: false}, nil
		},
	}
	svc := NewCatalogService(&mockCategoryRepository{}, products, noImages(), zap.NewNop())

	_, err := svc.GetProduct(context.Background(), 5, false)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)

	p, err := svc.GetProduct(context.Background(), 5, true)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
}

func TestCreateProduct_RejectsNegativePriceAndStock(t *testing.T) {
	svc := NewCatalogService(existingCategory(), &mockProductRepository{}, noImages(), zap.NewNop())

	_, err := svc.CreateProduct(context.Background(), domain.Product{
		CategoryID: 1,
		Name:       "Pen",
		Price:      decimal.NewFromInt(-1),
		Stock:      -3,
	})
	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)
}

func TestCreateProduct_UnknownCategory(t *testing.T) {
	categories := &mockCategoryRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Category, error) {
			return nil, apperrors.NewNotFoundError("category 4 not found")
		},
	}
	created := false
	products := &mockProductRepository{
		CreateFunc: func(ctx context.Context, p domain.Product) (int64, error) {
			created = true
			return 1, nil
		},
	}
	svc := NewCatalogService(categories, products, noImages(), zap.NewNop())

	_, err := svc.CreateProduct(context.Background(), domain.Product{CategoryID: 4, Name: "Pen", Price: decimal.NewFromInt(100)})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.False(t, created)
}

func TestCreateProduct_Success(t *testing.T) {
	products := &mockProductRepository{
		CreateFunc: func(ctx context.Context, p domain.Product) (int64, error) {
			return 12, nil
		},
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			return &domain.Product{ID: id, Name: "Pen", IsActive: true}, nil
		},
	}
	svc := NewCatalogService(existingCategory(), products, noImages(), zap.NewNop())

	p, err := svc.CreateProduct(context.Background(), domain.Product{CategoryID: 1, Name: "Pen", Price: decimal.NewFromInt(100), Stock: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(12), p.ID)
}

func TestSetStock_Negative(t *testing.T) {
	called := false
	products := &mockProductRepository{
		SetStockFunc: func(ctx context.Context, id int64, stock int) error {
			called = true
			return nil
		},
	}
	svc := NewCatalogService(&mockCategoryRepository{}, products, noImages(), zap.NewNop())

	err := svc.SetStock(context.Background(), 1, -1)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.False(t, called)

	require.NoError(t, svc.SetStock(context.Background(), 1, 0))
	assert.True(t, called)
}

func TestDeactivateProduct(t *testing.T) {
	var gotActive = true
	products := &mockProductRepository{
		SetActiveFunc: func(ctx context.Context, id int64, active bool) error {
			gotActive = active
			return nil
		},
	}
	svc := NewCatalogService(&mockCategoryRepository{}, products, noImages(), zap.NewNop())

	require.NoError(t, svc.DeactivateProduct(context.Background(), 3))
	assert.False(t, gotActive)
}

func TestAddImage_ProductMissing(t *testing.T) {
	products := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			return nil, apperrors.NewNotFoundError("product 3 not found")
		},
	}
	svc := NewCatalogService(&mockCategoryRepository{}, products, noImages(), zap.NewNop())

	_, err := svc.AddImage(context.Background(), domain.ProductImage{ProductID: 3, ImageURL: "https://cdn/a.png"})
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestListImages_EmptyIsNotNil(t *testing.T) {
	products := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int64) (*domain.Product, error) {
			return &domain.Product{ID: id}, nil
		},
	}
	svc := NewCatalogService(&mockCategoryRepository{}, products, noImages(), zap.NewNop())

	images, err := svc.ListImages(context.Background(), 3)
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestDeleteCategory_PropagatesConflict(t *testing.T) {
	categories := &mockCategoryRepository{
		DeleteFunc: func(ctx context.Context, id int64) error {
			return apperrors.NewConflictErrorWithReason("CATEGORY_IN_USE", "in use")
		},
	}
	svc := NewCatalogService(categories, &mockProductRepository{}, noImages(), zap.NewNop())

	err := svc.DeleteCategory(context.Background(), 1)
	var ce *apperrors.ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "CATEGORY_IN_USE", ce.Reason)
}
