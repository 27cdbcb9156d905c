package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	"storefront/internal/server/httpx"
)

type CatalogService interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	SearchProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error)
	GetProduct(ctx context.Context, id int64, includeInactive bool) (*domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	SetStock(ctx context.Context, id int64, stock int) error
	DeactivateProduct(ctx context.Context, id int64) error
	ListImages(ctx context.Context, productID int64) ([]domain.ProductImage, error)
	AddImage(ctx context.Context, img domain.ProductImage) (*domain.ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID int64) error
	SetPrimaryImage(ctx context.Context, productID, imageID int64) error
}

type Controller struct {
	service CatalogService
	logger  *zap.Logger
}

func NewController(service CatalogService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Storefront

func (c *Controller) ListCategories(w http.ResponseWriter, r *http.Request) {
	c.listCategories(w, r, false)
}

func (c *Controller) ListProducts(w http.ResponseWriter, r *http.Request) {
	c.listProducts(w, r, true)
}

func (c *Controller) GetProduct(w http.ResponseWriter, r *http.Request) {
	c.getProduct(w, r, false)
}

// Admin

func (c *Controller) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	c.listCategories(w, r, true)
}

func (c *Controller) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	c.listProducts(w, r, r.URL.Query().Get("active") == "true")
}

func (c *Controller) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	c.getProduct(w, r, true)
}

func (c *Controller) listCategories(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	categories, err := c.service.ListCategories(r.Context(), includeInactive)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	out := make([]dto.CategoryDTO, len(categories))
	for i, cat := range categories {
		out[i] = dto.NewCategoryDTO(cat)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, out)
}

func (c *Controller) listProducts(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	page, err := httpx.Pagination(r)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	categoryID, err := httpx.QueryID(r, "categoryId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	products, total, err := c.service.SearchProducts(r.Context(), domain.ProductFilter{
		Query:      strings.TrimSpace(r.URL.Query().Get("q")),
		CategoryID: categoryID,
		ActiveOnly: activeOnly,
		Limit:      page.Limit,
		Offset:     page.Offset(),
	})
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp := dto.ProductListResponse{
		Products: make([]dto.ProductDTO, len(products)),
		Meta:     dto.NewPageMeta(page.Page, page.Limit, total),
	}
	for i, p := range products {
		resp.Products[i] = dto.NewProductDTO(p)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) getProduct(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	id, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	p, err := c.service.GetProduct(r.Context(), id, includeInactive)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewProductDTO(*p))
}

func (c *Controller) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "categoryId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	cat, err := c.service.GetCategory(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewCategoryDTO(*cat))
}

func (c *Controller) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	cat, err := c.service.CreateCategory(r.Context(), domain.Category{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
	})
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewCategoryDTO(*cat))
}

func (c *Controller) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "categoryId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.CategoryRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	cat, err := c.service.UpdateCategory(r.Context(), domain.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
	})
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewCategoryDTO(*cat))
}

func (c *Controller) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "categoryId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.DeleteCategory(r.Context(), id); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productFromRequest(id int64, req dto.ProductRequest) domain.Product {
	return domain.Product{
		ID:          id,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		IsActive:    boolOr(req.IsActive, true),
	}
}

func (c *Controller) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	p, err := c.service.CreateProduct(r.Context(), productFromRequest(0, req))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewProductDTO(*p))
}

func (c *Controller) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.ProductRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	p, err := c.service.UpdateProduct(r.Context(), productFromRequest(id, req))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewProductDTO(*p))
}

func (c *Controller) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.DeactivateProduct(r.Context(), id); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) SetStock(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.StockRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.SetStock(r.Context(), id, req.Stock); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) ListImages(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	images, err := c.service.ListImages(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	out := make([]dto.ProductImageDTO, len(images))
	for i, img := range images {
		out[i] = dto.NewProductImageDTO(img)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, out)
}

func (c *Controller) AddImage(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.ProductImageRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	img, err := c.service.AddImage(r.Context(), domain.ProductImage{
		ProductID: id,
		ImageURL:  req.ImageURL,
		IsPrimary: req.IsPrimary,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewProductImageDTO(*img))
}

func (c *Controller) DeleteImage(w http.ResponseWriter, r *http.Request) {
	c.imageAction(w, r, c.service.DeleteImage)
}

func (c *Controller) SetPrimaryImage(w http.ResponseWriter, r *http.Request) {
	c.imageAction(w, r, c.service.SetPrimaryImage)
}

func (c *Controller) imageAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, productID, imageID int64) error) {
	productID, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	imageID, err := httpx.URLParamID(r, "imageId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if err := action(r.Context(), productID, imageID); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
