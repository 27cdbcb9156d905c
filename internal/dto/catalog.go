package dto

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CategoryDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

func NewCategoryDTO(c domain.Category) CategoryDTO {
	return CategoryDTO{ID: c.ID, Name: c.Name, Description: c.Description, IsActive: c.IsActive}
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	IsActive    *bool  `json:"isActive"`
}

type ProductDTO struct {
	ID           int64             `json:"id"`
	CategoryID   int64             `json:"categoryId"`
	CategoryName string            `json:"categoryName"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        decimal.Decimal   `json:"price"`
	Stock        int               `json:"stock"`
	IsActive     bool              `json:"isActive"`
	InStock      bool              `json:"inStock"`
	PrimaryImage string            `json:"primaryImage,omitempty"`
	Images       []ProductImageDTO `json:"images,omitempty"`
}

type ProductImageDTO struct {
	ID        int64  `json:"id"`
	ImageURL  string `json:"imageUrl"`
	IsPrimary bool   `json:"isPrimary"`
	SortOrder int    `json:"sortOrder"`
}

func NewProductDTO(p domain.Product) ProductDTO {
	out := ProductDTO{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Stock:        p.Stock,
		IsActive:     p.IsActive,
		InStock:      p.IsActive && p.Stock > 0,
	}
	if img, ok := p.PrimaryImage(); ok {
		out.PrimaryImage = img.ImageURL
	}
	for _, img := range p.Images {
		out.Images = append(out.Images, NewProductImageDTO(img))
	}
	return out
}

func NewProductImageDTO(img domain.ProductImage) ProductImageDTO {
	return ProductImageDTO{ID: img.ID, ImageURL: img.ImageURL, IsPrimary: img.IsPrimary, SortOrder: img.SortOrder}
}

type ProductRequest struct {
	CategoryID  int64           `json:"categoryId" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    *bool           `json:"isActive"`
}

type StockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

type ProductImageRequest struct {
	ImageURL  string `json:"imageUrl" validate:"required,url,max=500"`
	IsPrimary bool   `json:"isPrimary"`
	SortOrder int    `json:"sortOrder" validate:"gte=0"`
}

type ProductListResponse struct {
	Products []ProductDTO `json:"products"`
	Meta     PageMeta     `json:"meta"`
}
