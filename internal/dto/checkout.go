package dto

import (
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

type CheckoutStatus string

const (
	CheckoutPlaced   CheckoutStatus = "PLACED"
	CheckoutRejected CheckoutStatus = "REJECTED"
)

// CheckoutItem is one cart line handed to the checkout transaction.
type CheckoutItem struct {
	ProductID int64
	Quantity  int
}

type LineFailure struct {
	ProductID int64
	Quantity  int
	Available int
	Reason    domain.RejectionReason
}

type CheckoutResult struct {
	Status   CheckoutStatus
	Order    *domain.Order
	Failures []LineFailure
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shippingAddress" validate:"max=255"`
	Notes           string `json:"notes" validate:"max=1000"`
}

type LineFailureDTO struct {
	ProductID int64  `json:"productId"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
	Reason    string `json:"reason"`
}

func NewLineFailureDTOs(failures []LineFailure) []LineFailureDTO {
	out := make([]LineFailureDTO, len(failures))
	for i, f := range failures {
		out[i] = LineFailureDTO{
			ProductID: f.ProductID,
			Quantity:  f.Quantity,
			Available: f.Available,
			Reason:    string(f.Reason),
		}
	}
	return out
}

type OrderDTO struct {
	ID              int64            `json:"id"`
	CustomerID      int64            `json:"customerId"`
	CustomerName    string           `json:"customerName,omitempty"`
	CarrierID       *int64           `json:"carrierId"`
	CarrierName     *string          `json:"carrierName"`
	Status          string           `json:"status"`
	EffectiveStatus string           `json:"effectiveStatus"`
	Cancelled       bool             `json:"cancelled"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	ShippingFee     decimal.Decimal  `json:"shippingFee"`
	Discount        decimal.Decimal  `json:"discount"`
	TotalAmount     decimal.Decimal  `json:"totalAmount"`
	ShippingAddress string           `json:"shippingAddress"`
	Notes           string           `json:"notes"`
	OrderDate       string           `json:"orderDate"`
	UpdatedAt       string           `json:"updatedAt"`
	Details         []OrderDetailDTO `json:"details,omitempty"`
}

type OrderDetailDTO struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

func NewOrderDTO(o domain.Order) OrderDTO {
	out := OrderDTO{
		ID:              o.ID,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		CarrierID:       o.CarrierID,
		CarrierName:     o.CarrierName,
		Status:          string(o.Status),
		EffectiveStatus: string(o.EffectiveStatus()),
		Cancelled:       o.IsCancelled(),
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		Discount:        o.Discount,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		OrderDate:       o.OrderDate.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       o.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	for _, d := range o.Details {
		out.Details = append(out.Details, OrderDetailDTO{
			ProductID:   d.ProductID,
			ProductName: d.ProductName,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
			Subtotal:    d.Subtotal,
		})
	}
	return out
}

type OrderListResponse struct {
	Orders []OrderDTO `json:"orders"`
	Meta   PageMeta   `json:"meta"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type AssignCarrierRequest struct {
	CarrierID int64 `json:"carrierId" validate:"required,gt=0"`
}

type StatisticsResponse struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	TotalOrders       int             `json:"totalOrders"`
	CancelledOrders   int             `json:"cancelledOrders"`
	FulfilledOrders   int             `json:"fulfilledOrders"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	CountByStatus     map[string]int  `json:"countByStatus"`
}
