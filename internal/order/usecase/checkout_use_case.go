package usecase

import (
	"context"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/mysql"
)

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, customerID int64, items []dto.CheckoutItem, shippingAddress, notes string) (*dto.CheckoutResult, error)
}

type CartReader interface {
	ListLines(ctx context.Context, customerID int64) ([]domain.CartLine, error)
}

type CustomerReader interface {
	FindByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// DefaultRetryBackoff is the pause before the second attempt; each later
// attempt waits one more step.
const DefaultRetryBackoff = 100 * time.Millisecond

type CheckoutUseCase struct {
	cart             CartReader
	customers        CustomerReader
	placer           OrderPlacer
	logger           *zap.Logger
	maxRetryAttempts int
	retryBackoff     time.Duration
}

func NewCheckoutUseCase(
	cart CartReader,
	customers CustomerReader,
	placer OrderPlacer,
	logger *zap.Logger,
	maxRetryAttempts int,
	retryBackoff time.Duration,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		cart:             cart,
		customers:        customers,
		placer:           placer,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		retryBackoff:     retryBackoff,
	}
}

// Checkout places an order for everything in the customer's cart. An empty
// shipping address falls back to the customer's profile address.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, customerID int64, shippingAddress, notes string) (*dto.CheckoutResult, error) {
	uc.logger.Info("checkout started", zap.Int64("customerId", customerID))

	lines, err := uc.cart.ListLines(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperrors.NewValidationError("cart is empty", apperrors.ValidationDetail{
			Field:   "cart",
			Message: "add at least one product before checking out",
		})
	}

	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		customer, err := uc.customers.FindByID(ctx, customerID)
		if err != nil {
			return nil, err
		}
		address = strings.TrimSpace(customer.Address)
	}
	if address == "" {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "shippingAddress",
			Message: "shippingAddress is required when the profile has no address",
		})
	}

	items := make([]dto.CheckoutItem, len(lines))
	for i, l := range lines {
		items[i] = dto.CheckoutItem{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	// Ascending productId lock order keeps concurrent checkouts from deadlocking each other.
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	result, err := uc.placeWithRetry(ctx, customerID, items, address, strings.TrimSpace(notes))
	if err != nil {
		return nil, err
	}

	switch result.Status {
	case dto.CheckoutPlaced:
		metrics.OrdersPlaced.Inc()
	case dto.CheckoutRejected:
		for _, f := range result.Failures {
			metrics.CheckoutRejections.WithLabelValues(string(f.Reason)).Inc()
		}
	}
	return result, nil
}

func (uc *CheckoutUseCase) placeWithRetry(
	ctx context.Context,
	customerID int64,
	items []dto.CheckoutItem,
	address, notes string,
) (*dto.CheckoutResult, error) {
	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		result, err := uc.placer.PlaceOrder(ctx, customerID, items, address, notes)
		if err == nil {
			return result, nil
		}
		if !mysql.IsDeadlock(err) {
			return nil, err
		}
		if attempt == uc.maxRetryAttempts {
			break
		}

		metrics.CheckoutRetries.Inc()
		uc.logger.Warn("deadlock detected, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", uc.maxRetryAttempts),
			zap.Int64("customerId", customerID),
		)
		if err := sleep(ctx, uc.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	return nil, apperrors.NewDeadlockError("checkout could not complete, please retry")
}

// backoff grows linearly with the attempt number, with ±20% jitter.
func (uc *CheckoutUseCase) backoff(attempt int) time.Duration {
	base := time.Duration(attempt) * uc.retryBackoff
	return time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
