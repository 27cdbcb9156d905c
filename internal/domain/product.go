package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          int64
	Name        string
	Description string
	IsActive    bool
}

type Product struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	IsActive     bool
	Images       []ProductImage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProductImage struct {
	ID        int64
	ProductID int64
	ImageURL  string
	IsPrimary bool
	SortOrder int
}

// RejectionReason explains why a quantity of a product cannot be sold.
type RejectionReason string

const (
	ReasonInvalidQuantity   RejectionReason = "INVALID_QUANTITY"
	ReasonProductNotFound   RejectionReason = "PRODUCT_NOT_FOUND"
	ReasonProductInactive   RejectionReason = "PRODUCT_INACTIVE"
	ReasonOutOfStock        RejectionReason = "OUT_OF_STOCK"
	ReasonInsufficientStock RejectionReason = "INSUFFICIENT_STOCK"
)

// CheckQuantity enforces 0 < qty <= stock on an active product. It returns
// an empty reason when qty can be sold.
func (p Product) CheckQuantity(qty int) RejectionReason {
	switch {
	case qty <= 0:
		return ReasonInvalidQuantity
	case !p.IsActive:
		return ReasonProductInactive
	case p.Stock <= 0:
		return ReasonOutOfStock
	case qty > p.Stock:
		return ReasonInsufficientStock
	}
	return ""
}

func (p Product) PrimaryImage() (ProductImage, bool) {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img, true
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0], true
	}
	return ProductImage{}, false
}

// ProductFilter narrows a catalog search. Zero values mean no constraint.
type ProductFilter struct {
	Query      string
	CategoryID int64
	ActiveOnly bool
	Limit      int
	Offset     int
}
