package controller

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/account/service"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/server/httpx"
)

type AccountService interface {
	Login(ctx context.Context, username, password string) (*service.Session, error)
	RegisterCustomer(ctx context.Context, creds service.Credentials, c domain.Customer) (*domain.Customer, error)
	ChangePassword(ctx context.Context, accountID int64, oldPassword, newPassword string) error
	SetActive(ctx context.Context, accountID int64, active bool) error
	ListAdmins(ctx context.Context) ([]domain.Admin, error)
	GetAdmin(ctx context.Context, id int64) (*domain.Admin, error)
	CreateAdmin(ctx context.Context, creds service.Credentials, ad domain.Admin) (*domain.Admin, error)
	UpdateAdmin(ctx context.Context, ad domain.Admin) (*domain.Admin, error)
	DeactivateAdmin(ctx context.Context, adminID, callerAccountID int64) error
}

type Controller struct {
	service AccountService
	logger  *zap.Logger
}

func NewController(service AccountService, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	session, err := c.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.LoginResponse{
		Token:       session.Token,
		ExpiresAt:   session.ExpiresAt,
		AccountID:   session.AccountID,
		AccountType: string(session.AccountType),
		ProfileID:   session.ProfileID,
	})
}

func (c *Controller) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	customer, err := c.service.RegisterCustomer(r.Context(),
		service.Credentials{Username: req.Username, Password: req.Password},
		domain.Customer{FullName: req.FullName, Email: req.Email, Phone: req.Phone, Address: req.Address},
	)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewCustomerDTO(*customer))
}

func (c *Controller) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal, ok := httpx.PrincipalFrom(r.Context())
	if !ok {
		httpx.WriteError(w, r, c.logger, apperrors.NewUnauthorizedError("authentication required"))
		return
	}
	var req dto.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	if err := c.service.ChangePassword(r.Context(), principal.AccountID, req.OldPassword, req.NewPassword); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) SetActive(w http.ResponseWriter, r *http.Request) {
	accountID, err := httpx.URLParamID(r, "accountId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.SetActiveRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	if principal, ok := httpx.PrincipalFrom(r.Context()); ok && principal.AccountID == accountID && !*req.IsActive {
		httpx.WriteError(w, r, c.logger, apperrors.NewConflictErrorWithReason("SELF_DEACTIVATION", "admins cannot deactivate their own account"))
		return
	}

	if err := c.service.SetActive(r.Context(), accountID, *req.IsActive); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := c.service.ListAdmins(r.Context())
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	out := make([]dto.AdminDTO, len(admins))
	for i, ad := range admins {
		out[i] = dto.NewAdminDTO(ad)
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, out)
}

func (c *Controller) GetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "adminId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	ad, err := c.service.GetAdmin(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewAdminDTO(*ad))
}

func (c *Controller) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	ad, err := c.service.CreateAdmin(r.Context(),
		service.Credentials{Username: req.Username, Password: req.Password},
		domain.Admin{FullName: req.FullName, Email: req.Email, Phone: req.Phone},
	)
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusCreated, dto.NewAdminDTO(*ad))
}

func (c *Controller) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "adminId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	var req dto.AdminRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}

	ad, err := c.service.UpdateAdmin(r.Context(), domain.Admin{ID: id, FullName: req.FullName, Email: req.Email, Phone: req.Phone})
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	httpx.WriteJSON(w, c.logger, http.StatusOK, dto.NewAdminDTO(*ad))
}

func (c *Controller) DeactivateAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamID(r, "adminId")
	if err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	principal, _ := httpx.PrincipalFrom(r.Context())

	if err := c.service.DeactivateAdmin(r.Context(), id, principal.AccountID); err != nil {
		httpx.WriteError(w, r, c.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
