package dto

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0,lte=10000"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0,lte=10000"`
}

type CartLineDTO struct {
	ProductID     int64           `json:"productId"`
	ProductName   string          `json:"productName"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Quantity      int             `json:"quantity"`
	ExtendedPrice decimal.Decimal `json:"extendedPrice"`
	Stock         int             `json:"stock"`
	Available     bool            `json:"available"`
}

type CartSummaryDTO struct {
	LineCount   int             `json:"lineCount"`
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
}

type CartResponse struct {
	Lines   []CartLineDTO  `json:"lines"`
	Summary CartSummaryDTO `json:"summary"`
}

func NewCartResponse(lines []domain.CartLine, summary domain.CartSummary) CartResponse {
	out := CartResponse{
		Lines: make([]CartLineDTO, len(lines)),
		Summary: CartSummaryDTO{
			LineCount:   summary.LineCount,
			ItemCount:   summary.ItemCount,
			Subtotal:    summary.Subtotal,
			ShippingFee: summary.ShippingFee,
			Discount:    summary.Discount,
			Total:       summary.Total,
		},
	}
	for i, l := range lines {
		out.Lines[i] = CartLineDTO{
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			UnitPrice:     l.UnitPrice,
			Quantity:      l.Quantity,
			ExtendedPrice: l.ExtendedPrice(),
			Stock:         l.Stock,
			Available:     l.ProductActive && l.Quantity <= l.Stock,
		}
	}
	return out
}
