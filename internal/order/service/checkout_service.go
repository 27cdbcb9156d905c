package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Product, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) error
	IncrementStock(ctx context.Context, tx *sql.Tx, id int64, qty int) error
}

type OrderWriter interface {
	Insert(ctx context.Context, tx *sql.Tx, o domain.Order) (int64, error)
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error)
}

type DetailWriter interface {
	Insert(ctx context.Context, tx *sql.Tx, d domain.OrderDetail) (int64, error)
}

type CartLineRemover interface {
	RemoveOrderedTx(ctx context.Context, tx *sql.Tx, customerID, productID int64, qty int) error
}

// CheckoutService turns a cart into an order inside one transaction.
type CheckoutService struct {
	db        TransactionManager
	products  ProductRepository
	orders    OrderWriter
	details   DetailWriter
	cart      CartLineRemover
	policy    domain.PricingPolicy
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewCheckoutService(
	db TransactionManager,
	products ProductRepository,
	orders OrderWriter,
	details DetailWriter,
	cart CartLineRemover,
	policy domain.PricingPolicy,
	logger *zap.Logger,
	txTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		db:        db,
		products:  products,
		orders:    orders,
		details:   details,
		cart:      cart,
		policy:    policy,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// PlaceOrder locks every product in items order, which callers sort by
// productId, and re-checks it. A single failing line rejects the whole
// checkout and nothing is written. Only the ordered quantities leave the
// cart, so lines added after the cart was read survive the checkout.
func (s *CheckoutService) PlaceOrder(
	ctx context.Context,
	customerID int64,
	items []dto.CheckoutItem,
	shippingAddress string,
	notes string,
) (*dto.CheckoutResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback after Commit is a no-op.
	defer tx.Rollback()

	lines := make([]domain.OrderDetail, 0, len(items))
	failures := []dto.LineFailure{}
	subtotal := decimal.Zero

	for _, item := range items {
		product, failure, err := s.lockProduct(txCtx, tx, item)
		if err != nil {
			s.logger.Error("checkout error", zap.Int64("customerId", customerID), zap.Int64("productId", item.ProductID), zap.Error(err))
			return nil, err
		}
		if failure != nil {
			failures = append(failures, *failure)
			s.logger.Warn("checkout line rejected",
				zap.Int64("customerId", customerID),
				zap.Int64("productId", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.String("reason", string(failure.Reason)),
			)
			continue
		}

		line := domain.NewOrderDetail(product.ID, product.Name, item.Quantity, product.Price)
		lines = append(lines, line)
		subtotal = subtotal.Add(line.Subtotal)
	}

	if len(failures) > 0 {
		s.logger.Warn("checkout rolled back", zap.Int64("customerId", customerID), zap.Int("failureCount", len(failures)))
		return &dto.CheckoutResult{Status: dto.CheckoutRejected, Failures: failures}, nil
	}

	quote := s.policy.QuoteSubtotal(subtotal, false)
	order := domain.Order{
		CustomerID:      customerID,
		Subtotal:        quote.Subtotal,
		ShippingFee:     quote.ShippingFee,
		Discount:        quote.Discount,
		TotalAmount:     quote.Total,
		Status:          domain.OrderStatusPending,
		ShippingAddress: shippingAddress,
		Notes:           notes,
	}

	order.ID, err = s.orders.Insert(txCtx, tx, order)
	if err != nil {
		s.logger.Error("failed to insert order", zap.Int64("customerId", customerID), zap.Error(err))
		return nil, err
	}

	for i := range lines {
		lines[i].OrderID = order.ID
		if lines[i].ID, err = s.details.Insert(txCtx, tx, lines[i]); err != nil {
			s.logger.Error("failed to insert order detail", zap.Int64("orderId", order.ID), zap.Error(err))
			return nil, err
		}
		if err := s.products.DecrementStock(txCtx, tx, lines[i].ProductID, lines[i].Quantity); err != nil {
			s.logger.Error("failed to decrement stock", zap.Int64("orderId", order.ID), zap.Int64("productId", lines[i].ProductID), zap.Error(err))
			return nil, err
		}
		if err := s.cart.RemoveOrderedTx(txCtx, tx, customerID, lines[i].ProductID, lines[i].Quantity); err != nil {
			s.logger.Error("failed to remove cart line", zap.Int64("customerId", customerID), zap.Int64("productId", lines[i].ProductID), zap.Error(err))
			return nil, err
		}
	}

	placed, err := s.orders.FindByIDTx(txCtx, tx, order.ID)
	if err != nil {
		s.logger.Error("failed to read back order", zap.Int64("orderId", order.ID), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.Int64("orderId", order.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order placed",
		zap.Int64("orderId", order.ID),
		zap.Int64("customerId", customerID),
		zap.Int("lineCount", len(lines)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	placed.Details = lines
	return &dto.CheckoutResult{Status: dto.CheckoutPlaced, Order: placed}, nil
}

func (s *CheckoutService) lockProduct(ctx context.Context, tx *sql.Tx, item dto.CheckoutItem) (*domain.Product, *dto.LineFailure, error) {
	product, err := s.products.FindByIDForUpdate(ctx, tx, item.ProductID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, &dto.LineFailure{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Reason:    domain.ReasonProductNotFound,
			}, nil
		}
		return nil, nil, err
	}

	if reason := product.CheckQuantity(item.Quantity); reason != "" {
		return nil, &dto.LineFailure{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Available: product.Stock,
			Reason:    reason,
		}, nil
	}
	return product, nil, nil
}
