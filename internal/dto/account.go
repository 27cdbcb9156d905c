package dto

import (
	"time"

	"storefront/internal/domain"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginResponse struct {
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	AccountID   int64     `json:"accountId"`
	AccountType string    `json:"accountType"`
	ProfileID   int64     `json:"profileId"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	FullName string `json:"fullName" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=150"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=255"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=128"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

type AdminRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=100"`
	Password string `json:"password" validate:"omitempty,min=6,max=128"`
	FullName string `json:"fullName" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=150"`
	Phone    string `json:"phone" validate:"max=30"`
}

type AdminDTO struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"accountId"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	IsActive  bool   `json:"isActive"`
}

func NewAdminDTO(a domain.Admin) AdminDTO {
	return AdminDTO{
		ID:        a.ID,
		AccountID: a.AccountID,
		Username:  a.Username,
		FullName:  a.FullName,
		Email:     a.Email,
		Phone:     a.Phone,
		IsActive:  a.IsActive,
	}
}

type CustomerRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=100"`
	Password string `json:"password" validate:"omitempty,min=6,max=128"`
	FullName string `json:"fullName" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=150"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"max=255"`
}

type CustomerDTO struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"accountId"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	IsActive  bool   `json:"isActive"`
}

func NewCustomerDTO(c domain.Customer) CustomerDTO {
	return CustomerDTO{
		ID:        c.ID,
		AccountID: c.AccountID,
		Username:  c.Username,
		FullName:  c.FullName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		IsActive:  c.IsActive,
	}
}

type CustomerListResponse struct {
	Customers []CustomerDTO `json:"customers"`
	Meta      PageMeta      `json:"meta"`
}

type CarrierRequest struct {
	Username      string `json:"username" validate:"omitempty,min=3,max=100"`
	Password      string `json:"password" validate:"omitempty,min=6,max=128"`
	FullName      string `json:"fullName" validate:"required,max=150"`
	Phone         string `json:"phone" validate:"max=30"`
	VehicleNumber string `json:"vehicleNumber" validate:"max=30"`
	IsAvailable   *bool  `json:"isAvailable"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" validate:"required"`
}

type CarrierDTO struct {
	ID            int64  `json:"id"`
	AccountID     int64  `json:"accountId"`
	Username      string `json:"username"`
	FullName      string `json:"fullName"`
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicleNumber"`
	IsAvailable   bool   `json:"isAvailable"`
	IsActive      bool   `json:"isActive"`
}

func NewCarrierDTO(c domain.Carrier) CarrierDTO {
	return CarrierDTO{
		ID:            c.ID,
		AccountID:     c.AccountID,
		Username:      c.Username,
		FullName:      c.FullName,
		Phone:         c.Phone,
		VehicleNumber: c.VehicleNumber,
		IsAvailable:   c.IsAvailable,
		IsActive:      c.AccountActive,
	}
}
