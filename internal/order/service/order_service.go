package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/metrics"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
	List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status domain.OrderStatus) error
	UpdateNotes(ctx context.Context, tx *sql.Tx, id int64, notes string) error
	SetCarrier(ctx context.Context, tx *sql.Tx, id, carrierID int64) error
}

type DetailRepository interface {
	ListByOrder(ctx context.Context, orderID int64) ([]domain.OrderDetail, error)
	ListByOrderTx(ctx context.Context, tx *sql.Tx, orderID int64) ([]domain.OrderDetail, error)
}

type StockRestorer interface {
	IncrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) error
}

type CarrierLocker interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Carrier, error)
}

// OrderService runs the order lifecycle after checkout. Every mutation locks
// the order row and re-validates inside its transaction.
type OrderService struct {
	db       TransactionManager
	orders   OrderRepository
	details  DetailRepository
	stock    StockRestorer
	carriers CarrierLocker
	logger   *zap.Logger
}

func NewOrderService(
	db TransactionManager,
	orders OrderRepository,
	details DetailRepository,
	stock StockRestorer,
	carriers CarrierLocker,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		db:       db,
		orders:   orders,
		details:  details,
		stock:    stock,
		carriers: carriers,
		logger:   logger,
	}
}

func (s *OrderService) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Details, err = s.details.ListByOrder(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

// GetForCustomer returns the order only if customerID placed it.
func (s *OrderService) GetForCustomer(ctx context.Context, customerID, id int64) (*domain.Order, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != customerID {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("order %d belongs to another customer", id))
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error) {
	return s.orders.List(ctx, f)
}

// UpdateStatus moves an order exactly one step along the status flow.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, to domain.OrderStatus) (*domain.Order, error) {
	return s.transition(ctx, id, to, func(o *domain.Order) error { return nil })
}

// UpdateStatusAsCarrier lets the assigned carrier mark an order as shipping
// or delivered.
func (s *OrderService) UpdateStatusAsCarrier(ctx context.Context, carrierID, id int64, to domain.OrderStatus) (*domain.Order, error) {
	return s.transition(ctx, id, to, func(o *domain.Order) error {
		if o.CarrierID == nil || *o.CarrierID != carrierID {
			return apperrors.NewForbiddenError(fmt.Sprintf("order %d is not assigned to this carrier", id))
		}
		if to != domain.OrderStatusShipping && to != domain.OrderStatusDelivered {
			return apperrors.NewForbiddenError(fmt.Sprintf("carriers cannot set status %s", to))
		}
		return nil
	})
}

func (s *OrderService) transition(ctx context.Context, id int64, to domain.OrderStatus, authorize func(o *domain.Order) error) (*domain.Order, error) {
	if to == domain.OrderStatusCancelled {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: "use the cancel operation to cancel an order",
		})
	}
	if !to.IsPersistable() {
		return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("unknown order status %q", to),
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := s.orders.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(o); err != nil {
		return nil, err
	}
	if o.IsCancelled() {
		return nil, apperrors.NewConflictErrorWithReason(domain.OrderCancelledReason, fmt.Sprintf("order %d is cancelled", id))
	}
	if !o.Status.CanTransitionTo(to) {
		return nil, apperrors.NewConflictErrorWithReason(domain.InvalidTransition,
			fmt.Sprintf("order %d cannot move from %s to %s", id, o.Status, to))
	}

	if err := s.orders.UpdateStatus(ctx, tx, id, to); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.OrderStatusChanges.WithLabelValues(string(to)).Inc()
	s.logger.Info("order status changed", zap.Int64("orderId", id), zap.String("from", string(o.Status)), zap.String("to", string(to)))
	return s.Get(ctx, id)
}

// Cancel tags the order as cancelled and puts its items back in stock.
func (s *OrderService) Cancel(ctx context.Context, id int64, reason string) (*domain.Order, error) {
	return s.cancel(ctx, id, reason, 0)
}

// CancelForCustomer cancels an order the customer placed.
func (s *OrderService) CancelForCustomer(ctx context.Context, customerID, id int64, reason string) (*domain.Order, error) {
	return s.cancel(ctx, id, reason, customerID)
}

func (s *OrderService) cancel(ctx context.Context, id int64, reason string, ownerID int64) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := s.orders.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if ownerID != 0 && o.CustomerID != ownerID {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("order %d belongs to another customer", id))
	}
	if o.IsCancelled() {
		return nil, apperrors.NewConflictErrorWithReason(domain.OrderCancelledReason, fmt.Sprintf("order %d is already cancelled", id))
	}
	if !o.Status.IsCancellable() {
		return nil, apperrors.NewConflictErrorWithReason(domain.NotCancellableReason,
			fmt.Sprintf("order %d is %s and can no longer be cancelled", id, o.Status))
	}

	if err := s.orders.UpdateNotes(ctx, tx, id, domain.CancellationNote(reason, o.Notes)); err != nil {
		return nil, err
	}

	details, err := s.details.ListByOrderTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	for _, d := range details {
		if err := s.stock.IncrementStock(ctx, tx, d.ProductID, d.Quantity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.OrdersCancelled.Inc()
	s.logger.Info("order cancelled",
		zap.Int64("orderId", id),
		zap.Bool("byCustomer", ownerID != 0),
		zap.Int("restoredLines", len(details)),
	)
	return s.Get(ctx, id)
}

// AssignCarrier hands an open order to a carrier that is on duty.
func (s *OrderService) AssignCarrier(ctx context.Context, id, carrierID int64) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	o, err := s.orders.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if o.IsCancelled() {
		return nil, apperrors.NewConflictErrorWithReason(domain.OrderCancelledReason, fmt.Sprintf("order %d is cancelled", id))
	}
	if !o.Status.AcceptsCarrier() {
		return nil, apperrors.NewConflictErrorWithReason(domain.OrderClosedReason,
			fmt.Sprintf("order %d is %s and cannot be reassigned", id, o.Status))
	}

	carrier, err := s.carriers.FindByIDTx(ctx, tx, carrierID)
	if err != nil {
		return nil, err
	}
	if reason := carrier.AssignmentBlocker(); reason != "" {
		return nil, apperrors.NewConflictErrorWithReason(reason,
			fmt.Sprintf("carrier %d cannot take orders: %s", carrierID, strings.ToLower(reason)))
	}

	if err := s.orders.SetCarrier(ctx, tx, id, carrierID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("carrier assigned", zap.Int64("orderId", id), zap.Int64("carrierId", carrierID))
	return s.Get(ctx, id)
}

// Statistics summarizes orders placed on the calendar days from through to,
// both inclusive.
func (s *OrderService) Statistics(ctx context.Context, from, to time.Time) (domain.OrderStatistics, error) {
	if to.Before(from) {
		return domain.OrderStatistics{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "to",
			Message: "to must not be before from",
		})
	}

	orders, err := s.orders.ListBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return domain.OrderStatistics{}, err
	}
	return domain.Summarize(orders), nil
}
