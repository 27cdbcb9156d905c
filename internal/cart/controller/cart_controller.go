package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/cart/service"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/server/httpx"
)

type CartService interface {
	GetCart(ctx context.Context, customerID int64) (*service.Cart, error)
	AddItem(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error)
	UpdateQuantity(ctx context.Context, customerID, productID int64, qty int) (*service.Cart, error)
	RemoveItem(ctx context.Context, customerID, productID int64) (*service.Cart, error)
	Clear(ctx context.Context, customerID int64) error
}

// Controller serves the signed-in customer's cart. Every handler expects a
// customer principal on the context.
type Controller struct {
	service CartService
	logger  *zap.Logger
}

func NewController(service CartService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	customerID, ok := c.customer(w, r)
	if !ok {
		return
	}
	cart, err := c.service.GetCart(r.Context(), customerID)
	c.writeCart(w, r, http.StatusOK, cart, err)
}

func (c *Controller) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := c.customer(w, r)
	if !ok {
		return
	}
	var req dto.AddCartItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	cart, err := c.service.AddItem(r.Context(), customerID, req.ProductID, req.Quantity)
	c.writeCart(w, r, http.StatusOK, cart, err)
}

func (c *Controller) UpdateItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := c.customer(w, r)
	if !ok {
		return
	}
	productID, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.UpdateCartItemRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	cart, err := c.service.UpdateQuantity(r.Context(), customerID, productID, req.Quantity)
	c.writeCart(w, r, http.StatusOK, cart, err)
}

func (c *Controller) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID, ok := c.customer(w, r)
	if !ok {
		return
	}
	productID, err := httpx.URLParamID(r, "productId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	cart, err := c.service.RemoveItem(r.Context(), customerID, productID)
	c.writeCart(w, r, http.StatusOK, cart, err)
}

func (c *Controller) Clear(w http.ResponseWriter, r *http.Request) {
	customerID, ok := c.customer(w, r)
	if !ok {
		return
	}
	if err := c.service.Clear(r.Context(), customerID); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) customer(w http.ResponseWriter, r *http.Request) (int64, bool) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
		return 0, false
	}
	return principal.ProfileID, true
}

func (c *Controller) writeCart(w http.ResponseWriter, r *http.Request, status int, cart *service.Cart, err error) {
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, status, dto.NewCartResponse(cart.Lines, cart.Summary))
}
