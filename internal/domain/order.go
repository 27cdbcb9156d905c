package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusPreparing OrderStatus = "Preparing"
	OrderStatusShipping  OrderStatus = "Shipping"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCompleted OrderStatus = "Completed"

	// OrderStatusCancelled is never written to Orders.status; the column's
	// CHECK constraint rejects it. It is derived from the notes marker.
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// CancelledMarker tags Orders.notes of a cancelled order.
const CancelledMarker = "[CANCELLED]"

var statusFlow = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusShipping,
	OrderStatusDelivered,
	OrderStatusCompleted,
}

// PersistedStatuses lists the values admitted by the Orders.status CHECK constraint.
func PersistedStatuses() []OrderStatus {
	out := make([]OrderStatus, len(statusFlow))
	copy(out, statusFlow)
	return out
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, st := range statusFlow {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	if strings.EqualFold(string(OrderStatusCancelled), s) {
		return OrderStatusCancelled, true
	}
	return "", false
}

func (s OrderStatus) position() int {
	for i, st := range statusFlow {
		if st == s {
			return i
		}
	}
	return -1
}

func (s OrderStatus) IsPersistable() bool {
	return s.position() >= 0
}

// Next returns the status that follows s, if any.
func (s OrderStatus) Next() (OrderStatus, bool) {
	pos := s.position()
	if pos < 0 || pos == len(statusFlow)-1 {
		return "", false
	}
	return statusFlow[pos+1], true
}

// CanTransitionTo allows exactly one step forward along the status flow.
func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	next, ok := s.Next()
	return ok && next == to
}

func (s OrderStatus) IsCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// AcceptsCarrier reports whether a carrier may still be (re)assigned.
func (s OrderStatus) AcceptsCarrier() bool {
	return s.IsPersistable() && s != OrderStatusDelivered && s != OrderStatusCompleted
}

// CountsAsRevenue reports whether an order in status s has been fulfilled.
func (s OrderStatus) CountsAsRevenue() bool {
	return s == OrderStatusDelivered || s == OrderStatusCompleted
}

type Order struct {
	ID              int64
	CustomerID      int64
	CustomerName    string
	CarrierID       *int64
	CarrierName     *string
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	Discount        decimal.Decimal
	TotalAmount     decimal.Decimal
	Status          OrderStatus
	ShippingAddress string
	Notes           string
	OrderDate       time.Time
	UpdatedAt       time.Time
	Details         []OrderDetail
}

func (o Order) IsCancelled() bool {
	return strings.Contains(o.Notes, CancelledMarker)
}

// EffectiveStatus is Status, or Cancelled when the notes carry the marker.
func (o Order) EffectiveStatus() OrderStatus {
	if o.IsCancelled() {
		return OrderStatusCancelled
	}
	return o.Status
}

// CancellationNote prepends the marker and reason to the existing notes.
func CancellationNote(reason, existing string) string {
	note := CancelledMarker
	if r := strings.TrimSpace(reason); r != "" {
		note += " " + r
	}
	if e := strings.TrimSpace(existing); e != "" {
		note += "\n" + e
	}
	return note
}

type OrderDetail struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// NewOrderDetail snapshots the unit price and extended price at purchase time.
func NewOrderDetail(productID int64, productName string, quantity int, unitPrice decimal.Decimal) OrderDetail {
	return OrderDetail{
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
	}
}

// Conflict reasons raised by order lifecycle operations.
const (
	OrderCancelledReason = "ORDER_CANCELLED"
	OrderClosedReason    = "ORDER_CLOSED"
	InvalidTransition    = "INVALID_TRANSITION"
	NotCancellableReason = "NOT_CANCELLABLE"
)

// OrderFilter narrows an order listing. Zero values mean no constraint;
// Status Cancelled selects by the notes marker.
type OrderFilter struct {
	CustomerID int64
	CarrierID  int64
	Status     OrderStatus
	Limit      int
	Offset     int
}
