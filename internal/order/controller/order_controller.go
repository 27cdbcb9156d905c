package controller

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/server/httpx"
)

type CheckoutUseCase interface {
	Checkout(ctx context.Context, customerID int64, shippingAddress, notes string) (*dto.CheckoutResult, error)
}

type OrderService interface {
	Get(ctx context.Context, id int64) (*domain.Order, error)
	GetForCustomer(ctx context.Context, customerID, id int64) (*domain.Order, error)
	List(ctx context.Context, f domain.OrderFilter) ([]domain.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, to domain.OrderStatus) (*domain.Order, error)
	UpdateStatusAsCarrier(ctx context.Context, carrierID, id int64, to domain.OrderStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id int64, reason string) (*domain.Order, error)
	CancelForCustomer(ctx context.Context, customerID, id int64, reason string) (*domain.Order, error)
	AssignCarrier(ctx context.Context, id, carrierID int64) (*domain.Order, error)
	Statistics(ctx context.Context, from, to time.Time) (domain.OrderStatistics, error)
}

// DefaultStatisticsWindow is the span reported when the request omits from.
const DefaultStatisticsWindow = 30 * 24 * time.Hour

type Controller struct {
	checkout CheckoutUseCase
	orders   OrderService
	logger   *zap.Logger
	now      func() time.Time
}

func NewController(checkout CheckoutUseCase, orders OrderService, logger *zap.Logger) *Controller {
	return &Controller{
		checkout: checkout,
		orders:   orders,
		logger:   logger,
		now:      time.Now,
	}
}

// Checkout answers 201 with the new order, or 422 with one failure per
// rejected cart line.
func (c *Controller) Checkout(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	var req dto.CheckoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	result, err := c.checkout.Checkout(r.Context(), principal.ProfileID, req.ShippingAddress, req.Notes)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	if result.Status == dto.CheckoutRejected {
		httpx.WriteErrorResponse(w, r, c.logger, dto.ErrorResponse{
			Status:   http.StatusUnprocessableEntity,
			Code:     "CHECKOUT_REJECTED",
			Message:  fmt.Sprintf("%d cart line(s) cannot be fulfilled", len(result.Failures)),
			Failures: dto.NewLineFailureDTOs(result.Failures),
		})
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewOrderDTO(*result.Order))
}

func (c *Controller) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	c.list(w, r, domain.OrderFilter{CustomerID: principal.ProfileID})
}

func (c *Controller) GetMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	id, err := httpx.URLParamID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	order, err := c.orders.GetForCustomer(r.Context(), principal.ProfileID, id)
	c.writeOrder(w, r, order, err)
}

func (c *Controller) CancelMine(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	id, reason, ok := c.cancelInput(w, r)
	if !ok {
		return
	}

	order, err := c.orders.CancelForCustomer(r.Context(), principal.ProfileID, id, reason)
	c.writeOrder(w, r, order, err)
}

// ListAssigned lists the signed-in carrier's orders.
func (c *Controller) ListAssigned(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	c.list(w, r, domain.OrderFilter{CarrierID: principal.ProfileID})
}

func (c *Controller) UpdateAssignedStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := c.principal(w, r)
	if !ok {
		return
	}
	id, to, ok := c.statusInput(w, r)
	if !ok {
		return
	}

	order, err := c.orders.UpdateStatusAsCarrier(r.Context(), principal.ProfileID, id, to)
	c.writeOrder(w, r, order, err)
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	c.list(w, r, domain.OrderFilter{})
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	order, err := c.orders.Get(r.Context(), id)
	c.writeOrder(w, r, order, err)
}

func (c *Controller) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, to, ok := c.statusInput(w, r)
	if !ok {
		return
	}
	order, err := c.orders.UpdateStatus(r.Context(), id, to)
	c.writeOrder(w, r, order, err)
}

func (c *Controller) AssignCarrier(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.AssignCarrierRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	order, err := c.orders.AssignCarrier(r.Context(), id, req.CarrierID)
	c.writeOrder(w, r, order, err)
}

func (c *Controller) Cancel(w http.ResponseWriter, r *http.Request) {
	id, reason, ok := c.cancelInput(w, r)
	if !ok {
		return
	}
	order, err := c.orders.Cancel(r.Context(), id, reason)
	c.writeOrder(w, r, order, err)
}

// Statistics reports on [from, to], whole days. to defaults to today and
// from to DefaultStatisticsWindow before to.
func (c *Controller) Statistics(w http.ResponseWriter, r *http.Request) {
	to, ok, err := httpx.QueryDate(r, "to")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if !ok {
		now := c.now().UTC()
		to = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	from, ok, err := httpx.QueryDate(r, "from")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if !ok {
		from = to.Add(-DefaultStatisticsWindow)
	}

	stats, err := c.orders.Statistics(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	byStatus := make(map[string]int, len(stats.CountByStatus))
	for st, n := range stats.CountByStatus {
		byStatus[string(st)] = n
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.StatisticsResponse{
		From:              from.Format(time.DateOnly),
		To:                to.Format(time.DateOnly),
		TotalOrders:       stats.TotalOrders,
		CancelledOrders:   stats.CancelledOrders,
		FulfilledOrders:   stats.FulfilledOrders,
		Revenue:           stats.Revenue,
		AverageOrderValue: stats.AverageOrderValue,
		CountByStatus:     byStatus,
	})
}

func (c *Controller) list(w http.ResponseWriter, r *http.Request, f domain.OrderFilter) {
	page, err := httpx.Pagination(r)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		st, ok := domain.ParseOrderStatus(raw)
		if !ok {
			httpx.WriteError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "status",
				Message: fmt.Sprintf("unknown order status %q", raw),
			}))
			return
		}
		f.Status = st
	}
	f.Limit, f.Offset = page.Limit, page.Offset()

	orders, total, err := c.orders.List(r.Context(), f)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp := dto.OrderListResponse{
		Orders: make([]dto.OrderDTO, len(orders)),
		Meta:   dto.NewPageMeta(page.Page, page.Limit, total),
	}
	for i, o := range orders {
		resp.Orders[i] = dto.NewOrderDTO(o)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) statusInput(w http.ResponseWriter, r *http.Request) (int64, domain.OrderStatus, bool) {
	id, err := httpx.URLParamID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return 0, "", false
	}
	var req dto.UpdateStatusRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return 0, "", false
	}
	to, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("unknown order status %q", req.Status),
		}))
		return 0, "", false
	}
	return id, to, true
}

func (c *Controller) cancelInput(w http.ResponseWriter, r *http.Request) (int64, string, bool) {
	id, err := httpx.URLParamID(r, "orderId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return 0, "", false
	}
	var req dto.CancelOrderRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(w, r, &req); err != nil {
			httpx.WriteError(w, r, c.logger, err)
			return 0, "", false
		}
	}
	return id, req.Reason, true
}

func (c *Controller) principal(w http.ResponseWriter, r *http.Request) (httpx.Principal, bool) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
	}
	return principal, ok
}

func (c *Controller) writeOrder(w http.ResponseWriter, r *http.Request, order *domain.Order, err error) {
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewOrderDTO(*order))
}
