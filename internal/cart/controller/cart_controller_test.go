package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/cart/service"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/server/httpx"
)

type mockCartService struct {
	GetCartFunc        func(ctx context.Context, customerID int64) (*service.Cart, error)
	AddItemFunc        func(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error)
	UpdateQuantityFunc func(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error)
	RemoveItemFunc     func(ctx context.Context, customerID, productID int64) (*service.Cart, error)
	ClearFunc          func(ctx context.Context, customerID int64) error
}

func (m *mockCartService) GetCart(ctx context.Context, customerID int64) (*service.Cart, error) {
	return m.GetCartFunc(ctx, customerID)
}

func (m *mockCartService) AddItem(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error) {
	return m.AddItemFunc(ctx, customerID, productID, qty)
}

func (m *mockCartService) UpdateQuantity(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error) {
	return m.UpdateQuantityFunc(ctx, customerID, productID, qty)
}

func (m *mockCartService) RemoveItem(ctx context.Context, customerID, productID int64) (*service.Cart, error) {
	return m.RemoveItemFunc(ctx, customerID, productID)
}

func (m *mockCartService) Clear(ctx context.Context, customerID int64) error {
	return m.ClearFunc(ctx, customerID)
}

func asCustomer(profileID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := httpx.Principal{AccountID: 50, AccountType: domain.AccountTypeCustomer, ProfileID: profileID}
			next.ServeHTTP(w, r.WithContext(httpx.WithPrincipal(r.Context(), p)))
		})
	}
}

func newRouter(c *Controller) chi.Router {
	r := chi.NewRouter()
	r.Use(asCustomer(8))
	r.Get("/cart", c.Get)
	r.Delete("/cart", c.Clear)
	r.Post("/cart/items", c.AddItem)
	r.Put("/cart/items/{productId}", c.UpdateItem)
	r.Delete("/cart/items/{productId}", c.RemoveItem)
	return r
}

func TestGet_ReturnsPricedCart(t *testing.T) {
	svc := &mockCartService{
		GetCartFunc: func(ctx context.Context, customerID int64) (*service.Cart, error) {
			assert.Equal(t, int64(8), customerID)
			line := domain.CartLine{ProductID: 3, ProductName: "Lamp", UnitPrice: decimal.NewFromInt(40), Quantity: 2, Stock: 1, ProductActive: true}
			return &service.Cart{
				Lines:   []domain.CartLine{line},
				Summary: domain.CartSummary{LineCount: 1, ItemCount: 2, Subtotal: decimal.NewFromInt(80), Total: decimal.NewFromInt(80)},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(NewController(svc, zap.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 1)
	assert.False(t, resp.Lines[0].Available)
	assert.Equal(t, "80", resp.Lines[0].ExtendedPrice.String())
	assert.Equal(t, 2, resp.Summary.ItemCount)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	svc := &mockCartService{
		AddItemFunc: func(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error) {
			assert.Equal(t, int64(3), productID)
			assert.Equal(t, 5, qty)
			return nil, apperrors.NewConflictErrorWithReason(string(domain.ReasonInsufficientStock), "only 4 in stock")
		},
	}

	rec := httptest.NewRecorder()
	newRouter(NewController(svc, zap.NewNop())).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":3,"quantity":5}`)))
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Code)
}

func TestAddItem_RejectsZeroQuantity(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter(NewController(&mockCartService{}, zap.NewNop())).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(`{"productId":3,"quantity":0}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateItem_UsesPathProduct(t *testing.T) {
	svc := &mockCartService{
		UpdateQuantityFunc: func(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error) {
			assert.Equal(t, int64(11), productID)
			assert.Equal(t, 2, qty)
			return &service.Cart{Lines: []domain.CartLine{}}, nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(NewController(svc, zap.NewNop())).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPut, "/cart/items/11", strings.NewReader(`{"quantity":2}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRemoveItem_NotInCart(t *testing.T) {
	svc := &mockCartService{
		RemoveItemFunc: func(ctx context.Context, customerID, productID int64) (*service.Cart, error) {
			return nil, apperrors.NewNotFoundError("product 11 is not in the cart")
		},
	}

	rec := httptest.NewRecorder()
	newRouter(NewController(svc, zap.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart/items/11", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClear_NoContent(t *testing.T) {
	svc := &mockCartService{
		ClearFunc: func(ctx context.Context, customerID int64) error {
			return nil
		},
	}

	rec := httptest.NewRecorder()
	newRouter(NewController(svc, zap.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/cart", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
