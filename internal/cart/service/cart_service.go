package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type CartRepository interface {
	ListLines(ctx context.Context, customerID int64) ([]domain.CartLine, error)
	LineQuantity(ctx context.Context, customerID, productID int64) (int, error)
	AddQuantity(ctx context.Context, customerID, productID int64, qty int) error
	SetQuantity(ctx context.Context, customerID, productID int64, qty int) error
	RemoveLine(ctx context.Context, customerID, productID int64) error
	Clear(ctx context.Context, customerID int64) error
}

type ProductReader interface {
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Cart is a customer's lines priced with the active policy.
type Cart struct {
	Lines   []domain.CartLine
	Summary domain.CartSummary
}

type CartService struct {
	cart     CartRepository
	products ProductReader
	policy   domain.PricingPolicy
	logger   *zap.Logger
}

func NewCartService(cart CartRepository, products ProductReader, policy domain.PricingPolicy, logger *zap.Logger) *CartService {
	return &CartService{
		cart:     cart,
		products: products,
		policy:   policy,
		logger:   logger,
	}
}

func (s *CartService) GetCart(ctx context.Context, customerID int64) (*Cart, error) {
	lines, err := s.cart.ListLines(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return &Cart{Lines: lines, Summary: s.policy.Quote(lines)}, nil
}

// AddItem puts qty more units of the product in the cart. The guard runs on
// the resulting line quantity against current stock; checkout re-checks it
// under a row lock.
func (s *CartService) AddItem(ctx context.Context, customerID, productID int64, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, invalidQuantity()
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	existing, err := s.cart.LineQuantity(ctx, customerID, productID)
	if err != nil {
		return nil, err
	}
	if err := guard(*product, existing+qty); err != nil {
		return nil, err
	}

	if err := s.cart.AddQuantity(ctx, customerID, productID, qty); err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added",
		zap.Int64("customerId", customerID),
		zap.Int64("productId", productID),
		zap.Int("quantity", existing+qty),
	)
	return s.GetCart(ctx, customerID)
}

// UpdateQuantity replaces the line quantity.
func (s *CartService) UpdateQuantity(ctx context.Context, customerID, productID int64, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, invalidQuantity()
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := guard(*product, qty); err != nil {
		return nil, err
	}

	if err := s.cart.SetQuantity(ctx, customerID, productID, qty); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, customerID)
}

func (s *CartService) RemoveItem(ctx context.Context, customerID, productID int64) (*Cart, error) {
	if err := s.cart.RemoveLine(ctx, customerID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, customerID)
}

func (s *CartService) Clear(ctx context.Context, customerID int64) error {
	return s.cart.Clear(ctx, customerID)
}

func invalidQuantity() error {
	return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
		Field:   "quantity",
		Message: "quantity must be greater than zero",
	})
}

func guard(p domain.Product, qty int) error {
	switch reason := p.CheckQuantity(qty); reason {
	case "":
		return nil
	case domain.ReasonInvalidQuantity:
		return invalidQuantity()
	case domain.ReasonProductInactive:
		return apperrors.NewConflictErrorWithReason(string(reason), fmt.Sprintf("product %d is not for sale", p.ID))
	default:
		return apperrors.NewConflictErrorWithReason(string(reason),
			fmt.Sprintf("only %d of %q in stock, %d requested", p.Stock, p.Name, qty))
	}
}
