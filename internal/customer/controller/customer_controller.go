package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	accountservice "storefront/internal/account/service"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/server/httpx"
)

type CustomerService interface {
	Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, int64, error)
	Get(ctx context.Context, id int64) (*domain.Customer, error)
	Create(ctx context.Context, creds accountservice.Credentials, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Deactivate(ctx context.Context, id int64) error
}

type Controller struct {
	service CustomerService
	logger  *zap.Logger
}

func NewController(service CustomerService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	page, err := httpx.Pagination(r)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	customers, total, err := c.service.Search(r.Context(), strings.TrimSpace(r.URL.Query().Get("q")), page.Limit, page.Offset())
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	resp := dto.CustomerListResponse{
		Customers: make([]dto.CustomerDTO, len(customers)),
		Meta:      dto.NewPageMeta(page.Page, page.Limit, total),
	}
	for i, cu := range customers {
		resp.Customers[i] = dto.NewCustomerDTO(cu)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, resp)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "customerId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	c.writeCustomer(w, r, id)
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	customer, err := c.service.Create(r.Context(),
		accountservice.Credentials{Username: req.Username, Password: req.Password},
		customerFromRequest(0, req),
	)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewCustomerDTO(*customer))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "customerId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	c.update(w, r, id)
}

func (c *Controller) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "customerId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.Deactivate(r.Context(), id); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMe returns the signed-in customer's own profile.
func (c *Controller) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	c.writeCustomer(w, r, principal.ProfileID)
}

func (c *Controller) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	c.update(w, r, principal.ProfileID)
}

func (c *Controller) writeCustomer(w http.ResponseWriter, r *http.Request, id int64) {
	customer, err := c.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewCustomerDTO(*customer))
}

func (c *Controller) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req dto.CustomerRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	customer, err := c.service.Update(r.Context(), customerFromRequest(id, req))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewCustomerDTO(*customer))
}

func customerFromRequest(id int64, req dto.CustomerRequest) domain.Customer {
	return domain.Customer{
		ID:       id,
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}
}
