package domain

import "github.com/shopspring/decimal"

type OrderStatistics struct {
	TotalOrders       int
	CancelledOrders   int
	FulfilledOrders   int
	Revenue           decimal.Decimal
	AverageOrderValue decimal.Decimal
	CountByStatus     map[OrderStatus]int
}

// Summarize aggregates orders. Orders carrying the cancellation marker are
// only counted in CancelledOrders, whatever their Status column says.
func Summarize(orders []Order) OrderStatistics {
	stats := OrderStatistics{
		Revenue:           decimal.Zero,
		AverageOrderValue: decimal.Zero,
		CountByStatus:     make(map[OrderStatus]int, len(statusFlow)),
	}

	for _, o := range orders {
		if o.IsCancelled() {
			stats.CancelledOrders++
			continue
		}

		stats.TotalOrders++
		stats.CountByStatus[o.Status]++

		if o.Status.CountsAsRevenue() {
			stats.FulfilledOrders++
			stats.Revenue = stats.Revenue.Add(o.TotalAmount)
		}
	}

	if stats.FulfilledOrders > 0 {
		stats.AverageOrderValue = stats.Revenue.Div(decimal.NewFromInt(int64(stats.FulfilledOrders))).Round(2)
	}

	return stats
}
