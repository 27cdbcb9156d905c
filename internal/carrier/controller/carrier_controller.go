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

type CarrierService interface {
	List(ctx context.Context) ([]domain.Carrier, error)
	ListAvailable(ctx context.Context) ([]domain.Carrier, error)
	Get(ctx context.Context, id int64) (*domain.Carrier, error)
	Create(ctx context.Context, creds accountservice.Credentials, c domain.Carrier) (*domain.Carrier, error)
	Update(ctx context.Context, c domain.Carrier) (*domain.Carrier, error)
	SetAvailability(ctx context.Context, id int64, available bool) error
	Deactivate(ctx context.Context, id int64) error
}

type Controller struct {
	service CarrierService
	logger  *zap.Logger
}

func NewController(service CarrierService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

// List serves the admin roster; ?available=true narrows it to carriers that
// can be assigned an order.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	list := c.service.List
	if r.URL.Query().Get("available") == "true" {
		list = c.service.ListAvailable
	}

	carriers, err := list(r.Context())
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	out := make([]dto.CarrierDTO, len(carriers))
	for i, ca := range carriers {
		out[i] = dto.NewCarrierDTO(ca)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, out)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "carrierId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	c.writeCarrier(w, r, id)
}

func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CarrierRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	carrier, err := c.service.Create(r.Context(),
		accountservice.Credentials{Username: req.Username, Password: req.Password},
		carrierFromRequest(0, req),
	)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewCarrierDTO(*carrier))
}

func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "carrierId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.CarrierRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	carrier, err := c.service.Update(r.Context(), carrierFromRequest(id, req))
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewCarrierDTO(*carrier))
}

func (c *Controller) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "carrierId")
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

func (c *Controller) SetAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "carrierId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	c.setAvailability(w, r, id)
}

func (c *Controller) GetMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	c.writeCarrier(w, r, principal.ProfileID)
}

// SetMyAvailability lets a signed-in carrier go on or off duty.
func (c *Controller) SetMyAvailability(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	c.setAvailability(w, r, principal.ProfileID)
}

func (c *Controller) setAvailability(w http.ResponseWriter, r *http.Request, id int64) {
	var req dto.AvailabilityRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	if err := c.service.SetAvailability(r.Context(), id, *req.IsAvailable); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) writeCarrier(w http.ResponseWriter, r *http.Request, id int64) {
	carrier, err := c.service.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewCarrierDTO(*carrier))
}

func carrierFromRequest(id int64, req dto.CarrierRequest) domain.Carrier {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	return domain.Carrier{
		ID:            id,
		FullName:      strings.TrimSpace(req.FullName),
		Phone:         req.Phone,
		VehicleNumber: req.VehicleNumber,
		IsAvailable:   available,
	}
}
