package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	ID            int64
	CustomerID    int64
	ProductID     int64
	ProductName   string
	UnitPrice     decimal.Decimal
	Quantity      int
	Stock         int
	ProductActive bool
	AddedAt       time.Time
}

func (l CartLine) ExtendedPrice() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PricingPolicy holds the flat shipping fee and the spend thresholds above
// which shipping is waived and a percentage discount applies.
type PricingPolicy struct {
	ShippingFee           decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	DiscountThreshold     decimal.Decimal
	DiscountRate          decimal.Decimal
}

type CartSummary struct {
	LineCount   int
	ItemCount   int
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

func (p PricingPolicy) Quote(lines []CartLine) CartSummary {
	subtotal := decimal.Zero
	items := 0
	for _, l := range lines {
		subtotal = subtotal.Add(l.ExtendedPrice())
		items += l.Quantity
	}

	summary := p.QuoteSubtotal(subtotal, len(lines) == 0)
	summary.LineCount = len(lines)
	summary.ItemCount = items
	return summary
}

// QuoteSubtotal prices an already computed subtotal. An empty cart is not
// charged shipping.
func (p PricingPolicy) QuoteSubtotal(subtotal decimal.Decimal, empty bool) CartSummary {
	subtotal = subtotal.Round(2)

	shipping := p.ShippingFee
	if empty || subtotal.GreaterThan(p.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if subtotal.GreaterThan(p.DiscountThreshold) {
		discount = subtotal.Mul(p.DiscountRate).Round(2)
	}

	return CartSummary{
		Subtotal:    subtotal,
		ShippingFee: shipping,
		Discount:    discount,
		Total:       subtotal.Add(shipping).Sub(discount),
	}
}
